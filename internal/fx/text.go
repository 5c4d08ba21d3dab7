package fx

import (
	"strings"

	"github.com/isorpg/fxengine/internal/geom"
	"github.com/isorpg/fxengine/internal/render"
	"github.com/isorpg/fxengine/internal/world"
)

// textLifetime is the number of std-delay ticks a text stays up.
const textLifetime = 10

// Text is a message floating over an object or a tile. It keeps running
// while the game is paused.
type Text struct {
	msg    string
	glyphs []byte
	anchor world.ObjectID
	tile   geom.Tile
	pos    geom.Rect
	width  int
	height int
	ticks  int
}

func newText(msg string, anchor world.ObjectID, tile geom.Tile) *Text {
	// Conversation quotes are stored as '@'.
	if strings.HasPrefix(msg, "@") {
		msg = `"` + msg[1:]
	}
	if strings.HasSuffix(msg, "@") {
		msg = msg[:len(msg)-1] + `"`
	}
	return &Text{msg: msg, glyphs: render.EncodeGlyphs(msg), anchor: anchor, tile: tile}
}

func (t *Text) Always() bool              { return true }
func (t *Text) Message() string           { return t.msg }
func (t *Text) Anchor() world.ObjectID    { return t.anchor }
func (t *Text) Rect() geom.Rect           { return t.pos }
func (t *Text) Size() (width, height int) { return t.width, t.height }

func (t *Text) start(m *Manager, now Ticks) {
	t.width = 8 + render.TextWidth(t.glyphs)
	t.height = 8 + m.win.TextHeight()
	t.pos = t.figurePos(m)
	t.addDirty(m)
	m.queue.Add(now, t, 0)
}

// figurePos returns the screen rectangle of the anchor, or of the tile for
// unanchored text. Anchors held in containers keep the last position.
func (t *Text) figurePos(m *Manager) geom.Rect {
	at := t.tile
	if !t.anchor.IsZero() {
		if !m.world.Alive(t.anchor) {
			return t.pos
		}
		at = m.world.Tile(t.anchor)
		if !at.Valid() {
			return t.pos
		}
	}
	tile := m.win.TileSize()
	x, y := m.win.TileToScreen(at)
	return geom.Rect{X: x - tile + 1, Y: y - tile + 1, W: tile, H: tile}
}

func (t *Text) addDirty(m *Manager) {
	tile := m.win.TileSize()
	r := geom.Rect{X: t.pos.X - tile, Y: t.pos.Y - tile, W: t.width + 2*tile, H: t.height + 2*tile}
	m.win.AddDirty(m.win.ClipToWin(r))
}

func (t *Text) HandleEvent(m *Manager, now Ticks, _ uintptr) {
	t.ticks++
	if t.ticks == textLifetime {
		t.addDirty(m)
		m.RemoveText(t)
		return
	}
	m.queue.Add(now+Ticks(m.stdDelay), t, 0)
	t.UpdateDirty(m)
}

// UpdateDirty repaints the old and new areas when the anchor moved.
func (t *Text) UpdateDirty(m *Manager) {
	npos := t.figurePos(m)
	if npos == t.pos {
		return
	}
	t.addDirty(m)
	t.pos = npos
	t.addDirty(m)
}

func (t *Text) Paint(m *Manager) {
	m.win.PaintText(t.glyphs, t.pos.X, t.pos.Y)
}
