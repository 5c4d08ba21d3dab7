package fx

import (
	"github.com/isorpg/fxengine/internal/geom"
	"github.com/isorpg/fxengine/internal/tqueue"
)

// Ticks is the engine clock in milliseconds.
type Ticks = tqueue.Ticks

// Effect is a scheduled visual or audio phenomenon. The set of variants is
// closed: start and release are unexported, so only this package defines
// effects.
type Effect interface {
	tqueue.Handler[*Manager]
	// Paint draws the effect into the window.
	Paint(m *Manager)
	// Kind names the variant for logs and the journal.
	Kind() string

	// start schedules the first event. Called once by AddEffect.
	start(m *Manager, now Ticks)
	// release undoes global side effects (palette, sounds) on removal.
	release(m *Manager)
}

// Weather is implemented by every weather variant.
type Weather interface {
	Effect
	// Code is the weather number reported by Manager.Weather, or -1.
	Code() int
	// OutOfRange reports whether observer is at least dist tiles from the
	// egg that started the weather. Weather without an egg is never out of
	// range.
	OutOfRange(observer geom.Tile, dist int) bool
}

// base supplies no-op defaults.
type base struct{}

func (base) Paint(*Manager)   {}
func (base) release(*Manager) {}
