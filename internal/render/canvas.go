package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Key is a player command read from the terminal.
type Key int

const (
	KeyQuit Key = iota
	KeyPause
	KeyRedraw
)

// TermCanvas presents frames on a tcell terminal screen, one cell per tile.
type TermCanvas struct {
	screen tcell.Screen
	keys   chan Key
}

// NewTermCanvas opens the terminal.
func NewTermCanvas() (*TermCanvas, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	return newTermCanvas(screen), nil
}

func newTermCanvas(screen tcell.Screen) *TermCanvas {
	screen.HideCursor()
	screen.Clear()
	return &TermCanvas{screen: screen, keys: make(chan Key, 8)}
}

// Present copies the cells to the terminal, clipped to its size.
func (c *TermCanvas) Present(cells []Cell, cols, rows int) {
	sw, sh := c.screen.Size()
	for row := 0; row < rows && row < sh; row++ {
		for col := 0; col < cols && col < sw; col++ {
			cell := cells[row*cols+col]
			c.screen.SetContent(col, row, cell.Ch, nil, cell.Style)
		}
	}
	c.screen.Show()
}

// Keys returns player commands. Listen must be running.
func (c *TermCanvas) Keys() <-chan Key { return c.keys }

// Listen polls terminal events until the screen is finalized.
func (c *TermCanvas) Listen() {
	for {
		ev := c.screen.PollEvent()
		if ev == nil {
			close(c.keys)
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if k, ok := translateKey(ev); ok {
				select {
				case c.keys <- k:
				default:
				}
			}
		case *tcell.EventResize:
			c.screen.Sync()
			select {
			case c.keys <- KeyRedraw:
			default:
			}
		}
	}
}

func translateKey(ev *tcell.EventKey) (Key, bool) {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return KeyQuit, true
	}
	if ev.Key() != tcell.KeyRune {
		return 0, false
	}
	switch ev.Rune() {
	case 'q':
		return KeyQuit, true
	case 'p', ' ':
		return KeyPause, true
	case 'r':
		return KeyRedraw, true
	}
	return 0, false
}

func (c *TermCanvas) Close() { c.screen.Fini() }
