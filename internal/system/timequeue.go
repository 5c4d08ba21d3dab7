package system

import (
	"time"

	coresys "github.com/isorpg/fxengine/internal/core/system"
	"github.com/isorpg/fxengine/internal/fx"
)

// TimeQueueSystem advances the engine clock by the frame time and fires
// every due effect event. Phase 2 (Update).
type TimeQueueSystem struct {
	fx      *fx.Manager
	elapsed time.Duration
}

func NewTimeQueueSystem(m *fx.Manager) *TimeQueueSystem {
	return &TimeQueueSystem{fx: m}
}

func (s *TimeQueueSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *TimeQueueSystem) Update(dt time.Duration) {
	s.elapsed += dt
	s.fx.Advance(fx.Ticks(s.elapsed.Milliseconds()))
}

// Now returns the clock in engine ticks.
func (s *TimeQueueSystem) Now() fx.Ticks { return fx.Ticks(s.elapsed.Milliseconds()) }
