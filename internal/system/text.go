package system

import (
	"time"

	coresys "github.com/isorpg/fxengine/internal/core/system"
	"github.com/isorpg/fxengine/internal/fx"
)

// TextSystem re-evaluates floating text whose anchor moved this frame.
// Phase 3 (PostUpdate).
type TextSystem struct {
	fx *fx.Manager
}

func NewTextSystem(m *fx.Manager) *TextSystem {
	return &TextSystem{fx: m}
}

func (s *TextSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *TextSystem) Update(_ time.Duration) {
	s.fx.UpdateDirtyText()
}
