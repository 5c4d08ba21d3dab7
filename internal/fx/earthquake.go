package fx

import "github.com/isorpg/fxengine/internal/audio/sfx"

const quakeCadence = 100

// Earthquake shakes the screen len times, 100 ms apart.
type Earthquake struct {
	base
	len   int
	steps int
}

func NewEarthquake(length int) *Earthquake {
	return &Earthquake{len: length}
}

func (q *Earthquake) Kind() string { return "earthquake" }

// Steps returns how many shakes were shown.
func (q *Earthquake) Steps() int { return q.steps }

func (q *Earthquake) start(m *Manager, now Ticks) {
	m.queue.Add(now, q, 0)
}

func (q *Earthquake) HandleEvent(m *Manager, now Ticks, udata uintptr) {
	if !m.quakeSound {
		m.quakeSound = true
		m.audio.Play(sfx.Earthquake, m.world.Tile(m.world.MainActor()), sfx.MaxVolume, false)
	}
	w, h := m.win.Size()
	sx, sy := 0, 0
	dx := m.randn(9) - 4
	dy := m.randn(9) - 4
	if dx > 0 {
		w -= dx
	} else {
		w += dx
		sx -= dx
		dx = 0
	}
	if dy > 0 {
		h -= dy
	} else {
		h += dy
		sy -= dy
		dy = 0
	}
	m.win.Copy(sx, sy, w, h, dx, dy)
	m.win.SetPainted()
	m.win.Show()
	m.win.Copy(dx, dy, w, h, sx, sy)
	q.steps++
	if q.steps < q.len {
		m.queue.Add(now+quakeCadence, q, udata)
		return
	}
	m.RemoveEffect(q)
}

// release re-arms the sound once the last running quake is gone.
func (q *Earthquake) release(m *Manager) {
	for _, e := range m.effects {
		if _, ok := e.(*Earthquake); ok {
			return
		}
	}
	m.quakeSound = false
}
