package system

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	coresys "github.com/isorpg/fxengine/internal/core/system"
	"github.com/isorpg/fxengine/internal/data"
	"github.com/isorpg/fxengine/internal/fx"
	"github.com/isorpg/fxengine/internal/render"
	"github.com/isorpg/fxengine/internal/world"
)

var (
	actorStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	partyStyle = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	deadStyle  = tcell.StyleDefault.Foreground(tcell.ColorMaroon)
	solidStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	itemStyle  = tcell.StyleDefault.Foreground(tcell.ColorOlive)
)

// RenderSystem repaints the window when anything changed: the map objects
// first, then effects, then floating text on top. Phase 4 (Output).
type RenderSystem struct {
	win    *render.Window
	fx     *fx.Manager
	world  *world.State
	shapes *data.ShapeTable
}

func NewRenderSystem(win *render.Window, m *fx.Manager, ws *world.State, shapes *data.ShapeTable) *RenderSystem {
	return &RenderSystem{win: win, fx: m, world: ws, shapes: shapes}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *RenderSystem) Update(_ time.Duration) {
	if !s.win.Dirty() && !s.win.Painted() {
		return
	}
	s.win.DrainDirty()
	s.win.Clear()
	s.world.EachOnMap(s.paintObject)
	s.fx.Paint()
	s.fx.PaintText()
	s.win.Show()
}

func (s *RenderSystem) paintObject(id world.ObjectID, o *world.Object) {
	ch, style := s.glyph(id, o)
	x, y := s.win.TileToScreen(o.Tile)
	s.win.PutGlyph(x, y, ch, style)
}

// glyph picks the character drawn for a map object.
func (s *RenderSystem) glyph(id world.ObjectID, o *world.Object) (rune, tcell.Style) {
	if a, ok := s.world.Actor(id); ok {
		switch {
		case a.Dead:
			return '%', deadStyle
		case a.Party:
			return '@', partyStyle
		}
		return '&', actorStyle
	}
	info := s.shapes.Get(o.Shape)
	switch {
	case info == nil:
		return '?', itemStyle
	case info.Container:
		return '=', itemStyle
	case info.Solid:
		return '#', solidStyle
	}
	r, _ := utf8.DecodeRuneInString(o.Name)
	if r == utf8.RuneError || !unicode.IsPrint(r) {
		return '?', itemStyle
	}
	return unicode.ToLower(r), itemStyle
}
