package system

import (
	"time"

	"github.com/isorpg/fxengine/internal/core/event"
	coresys "github.com/isorpg/fxengine/internal/core/system"
)

// EventSystem delivers the events emitted during the previous frame.
// Phase 1 (PreUpdate).
type EventSystem struct {
	bus       *event.Bus
	delivered uint64
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.delivered += uint64(s.bus.DispatchAll())
}

// Delivered returns the number of events delivered so far.
func (s *EventSystem) Delivered() uint64 { return s.delivered }
