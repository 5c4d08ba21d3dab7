package system

import (
	"time"

	coresys "github.com/isorpg/fxengine/internal/core/system"
	"github.com/isorpg/fxengine/internal/fx"
	"github.com/isorpg/fxengine/internal/render"
	"go.uber.org/zap"
)

// InputSystem drains terminal keys: quit, pause toggle and forced redraw.
// Phase 0 (Input).
type InputSystem struct {
	keys <-chan render.Key
	fx   *fx.Manager
	win  *render.Window
	quit func()
	log  *zap.Logger
}

func NewInputSystem(keys <-chan render.Key, m *fx.Manager, win *render.Window, quit func(), log *zap.Logger) *InputSystem {
	return &InputSystem{keys: keys, fx: m, win: win, quit: quit, log: log}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	for {
		select {
		case k, ok := <-s.keys:
			if !ok {
				s.keys = nil
				return
			}
			s.handle(k)
		default:
			return
		}
	}
}

func (s *InputSystem) handle(k render.Key) {
	switch k {
	case render.KeyQuit:
		s.log.Info("quit requested")
		s.quit()
	case render.KeyPause:
		if s.fx.Paused() {
			s.fx.Resume()
			s.log.Info("resumed")
		} else {
			s.fx.Pause()
			s.log.Info("paused")
		}
	case render.KeyRedraw:
		s.win.SetAllDirty()
	}
}
