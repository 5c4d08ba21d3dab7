package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/isorpg/fxengine/internal/data"
	"github.com/isorpg/fxengine/internal/geom"
	"go.uber.org/zap"
)

// liftPixels is the screen offset of one lift of elevation, applied to both
// axes by the isometric projection.
const liftPixels = 4

// textPad is the margin between a text box edge and its glyphs.
const textPad = 4

// Cell is one character cell of the frame buffer. A cell covers one tile.
type Cell struct {
	Ch    rune
	Style tcell.Style
}

// Canvas presents a finished frame.
type Canvas interface {
	Present(cells []Cell, cols, rows int)
	Close()
}

var (
	groundStyle = tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	textStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
)

// Window is the game view: a pixel-addressed screen of Width x Height
// pixels drawn into a tile-sized cell buffer. Effects paint into it through
// pixel coordinates; the canvas shows it once per frame.
type Window struct {
	width, height int
	tile          int
	cols, rows    int
	scroll        geom.Tile

	sprites *data.SpriteTable
	dirty   *DirtyTracker
	palette *Palette
	canvas  Canvas
	log     *zap.Logger

	cells   []Cell
	scratch []Cell
	out     []Cell
	frames  uint64
	painted bool
}

// NewWindow creates a view of width x height pixels. canvas may be nil for
// headless runs.
func NewWindow(width, height, tile int, sprites *data.SpriteTable, palette *Palette, canvas Canvas, log *zap.Logger) *Window {
	cols := (width + tile - 1) / tile
	rows := (height + tile - 1) / tile
	w := &Window{
		width:   width,
		height:  height,
		tile:    tile,
		cols:    cols,
		rows:    rows,
		sprites: sprites,
		dirty:   NewDirtyTracker(),
		palette: palette,
		canvas:  canvas,
		log:     log,
		cells:   make([]Cell, cols*rows),
		scratch: make([]Cell, cols*rows),
		out:     make([]Cell, cols*rows),
	}
	w.Clear()
	return w
}

func (w *Window) Size() (int, int)  { return w.width, w.height }
func (w *Window) TileSize() int     { return w.tile }
func (w *Window) Cols() int         { return w.cols }
func (w *Window) Rows() int         { return w.rows }
func (w *Window) Palette() *Palette { return w.palette }

// Scroll returns the world tile shown at the top-left corner.
func (w *Window) Scroll() geom.Tile               { return w.scroll }
func (w *Window) SetScroll(t geom.Tile)           { w.scroll = t; w.SetAllDirty() }
func (w *Window) Bounds() geom.Rect               { return geom.Rect{W: w.width, H: w.height} }
func (w *Window) AddDirty(r geom.Rect)            { w.dirty.Add(r.Intersect(w.Bounds())) }
func (w *Window) SetAllDirty()                    { w.dirty.SetAll() }
func (w *Window) Dirty() bool                     { return w.dirty.Dirty() }
func (w *Window) DrainDirty() geom.Rect           { return w.dirty.Drain(w.Bounds()) }
func (w *Window) ClipToWin(r geom.Rect) geom.Rect { return r.Intersect(w.Bounds()) }

// SetPainted records that something was drawn outside the dirty tracker, so
// the next frame must be presented.
func (w *Window) SetPainted() { w.painted = true }

// Frames returns the number of frames shown.
func (w *Window) Frames() uint64 { return w.frames }

// TileToScreen returns the pixel of a tile's lower-right corner, lifted by
// its elevation.
func (w *Window) TileToScreen(t geom.Tile) (int, int) {
	x := (t.X-w.scroll.X+1)*w.tile - 1 - t.Z*liftPixels
	y := (t.Y-w.scroll.Y+1)*w.tile - 1 - t.Z*liftPixels
	return x, y
}

// ShapeRect returns the screen rectangle of a sprite whose hotspot is at x,y.
func (w *Window) ShapeRect(sprite, x, y int) geom.Rect {
	info := w.sprites.Get(sprite)
	if info == nil {
		return geom.Rect{X: x - w.tile + 1, Y: y - w.tile + 1, W: w.tile, H: w.tile}
	}
	return geom.Rect{
		X: x - info.XLeft,
		Y: y - info.YAbove,
		W: info.XLeft + info.XRight + 1,
		H: info.YAbove + info.YBelow + 1,
	}
}

// Clear fills the buffer with bare ground.
func (w *Window) Clear() {
	for i := range w.cells {
		w.cells[i] = Cell{Ch: '.', Style: groundStyle}
	}
}

func (w *Window) cellAt(px, py int) (int, bool) {
	if px < 0 || py < 0 || px >= w.width || py >= w.height {
		return 0, false
	}
	return (py/w.tile)*w.cols + px/w.tile, true
}

// PutGlyph draws one character at the cell covering pixel px,py.
func (w *Window) PutGlyph(px, py int, ch rune, style tcell.Style) {
	if i, ok := w.cellAt(px, py); ok {
		w.cells[i] = Cell{Ch: ch, Style: style}
	}
}

// PaintSprite draws a sprite frame with its hotspot at x,y. Multi-rune
// glyph strings cycle through their runes as the frame advances.
func (w *Window) PaintSprite(sprite, frame, x, y int) {
	info := w.sprites.Get(sprite)
	if info == nil {
		return
	}
	runes := []rune(info.Glyph)
	if len(runes) == 0 {
		return
	}
	ch := runes[((frame%len(runes))+len(runes))%len(runes)]
	style := tcell.StyleDefault
	if info.Color != "" {
		style = style.Foreground(tcell.GetColor(info.Color))
	}
	r := w.ClipToWin(w.ShapeRect(sprite, x, y))
	if r.Empty() {
		return
	}
	for py := r.Y; py < r.Y+r.H; py += w.tile {
		for px := r.X; px < r.X+r.W; px += w.tile {
			w.PutGlyph(px, py, ch, style)
		}
	}
}

// TextHeight is the font height in pixels.
func (w *Window) TextHeight() int { return FontHeight }

// PaintText draws glyph bytes inside a text box whose top-left is x,y.
func (w *Window) PaintText(glyphs []byte, x, y int) {
	py := y + textPad
	for i, g := range glyphs {
		w.PutGlyph(x+textPad+i*FontWidth, py, GlyphRune(g), textStyle)
	}
}

// Copy moves the pixel block at sx,sy of size cw x ch to dx,dy. The buffer
// has tile resolution, so the shift is rounded to half-cell steps.
func (w *Window) Copy(sx, sy, cw, ch, dx, dy int) {
	half := max(w.tile/2, 1)
	ox := (dx - sx) / half
	oy := (dy - sy) / half
	if ox == 0 && oy == 0 {
		return
	}
	copy(w.scratch, w.cells)
	for row := 0; row < w.rows; row++ {
		for col := 0; col < w.cols; col++ {
			scol, srow := col-ox, row-oy
			if scol < 0 || srow < 0 || scol >= w.cols || srow >= w.rows {
				continue
			}
			w.cells[row*w.cols+col] = w.scratch[srow*w.cols+scol]
		}
	}
	w.painted = true
}

// Show presents the buffer through the palette.
func (w *Window) Show() {
	w.frames++
	w.painted = false
	if w.canvas == nil {
		return
	}
	for i, c := range w.cells {
		w.out[i] = Cell{Ch: c.Ch, Style: w.palette.Tint(c.Style)}
	}
	w.canvas.Present(w.out, w.cols, w.rows)
}

// Painted reports whether the frame changed since the last Show.
func (w *Window) Painted() bool { return w.painted }

// CellAt returns the buffered cell at col,row.
func (w *Window) CellAt(col, row int) Cell {
	if col < 0 || row < 0 || col >= w.cols || row >= w.rows {
		return Cell{}
	}
	return w.cells[row*w.cols+col]
}
