package system

import (
	"time"

	"github.com/isorpg/fxengine/internal/core/ecs"
	coresys "github.com/isorpg/fxengine/internal/core/system"
)

// CleanupSystem flushes the deferred object destruction queue at frame end.
// Breakable objects destroyed by missiles are removed here. Phase 6 (Cleanup).
type CleanupSystem struct {
	world *ecs.World
}

func NewCleanupSystem(world *ecs.World) *CleanupSystem {
	return &CleanupSystem{world: world}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.world.FlushDestroyQueue()
}
