package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput      Phase = iota // 0: terminal keys, pause toggles
	PhasePreUpdate               // 1: deliver last frame's events
	PhaseUpdate                  // 2: pump the time queue (effects run here)
	PhasePostUpdate              // 3: text dirt re-evaluation
	PhaseOutput                  // 4: repaint dirty regions, show
	PhasePersist                 // 5: journal flush
	PhaseCleanup                 // 6: destroy queued objects
)

var phaseNames = [...]string{"input", "pre-update", "update", "post-update", "output", "persist", "cleanup"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is the interface every frame system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
