package fx

import (
	"github.com/isorpg/fxengine/internal/geom"
	"github.com/isorpg/fxengine/internal/world"
)

const (
	fireFieldShape = 895
	dustShape      = 224
	endlessTicks   = 10000
)

// dustFrames are the dust frames laid on the N, E, S and W neighbours.
var dustFrames = [4]int{2, 4, 1, 3}

// FireField places a burning field with dust around it and removes the
// field when its lifetime runs out.
type FireField struct {
	base
	at        geom.Tile
	lifespan  int
	endless   bool
	field     world.ObjectID
	remaining int
}

// NewFireField burns at t for lifespan+rand(lifespan)+10 std-delay ticks.
func NewFireField(t geom.Tile, lifespan int, endless bool) *FireField {
	return &FireField{at: t, lifespan: lifespan, endless: endless}
}

func (f *FireField) Kind() string { return "fire_field" }

func (f *FireField) Field() world.ObjectID { return f.field }
func (f *FireField) Remaining() int        { return f.remaining }

func (f *FireField) start(m *Manager, now Ticks) {
	f.field = m.world.Create(fireFieldShape, 0)
	m.world.SetFlag(f.field, world.FlagTemporary)
	m.world.Move(f.field, f.at)
	if f.endless || f.lifespan <= 0 {
		f.remaining = endlessTicks
	} else {
		f.remaining = m.randn(f.lifespan) + f.lifespan + 10
	}
	for dir := 0; dir < 4; dir++ {
		dust := m.world.Create(dustShape, dustFrames[dir])
		m.world.SetFlag(dust, world.FlagTemporary)
		m.world.Move(dust, f.at.Neighbor(dir*2))
	}
	dust := m.world.Create(dustShape, 5)
	m.world.SetFlag(dust, world.FlagTemporary)
	m.world.Move(dust, f.at)
	m.queue.Add(now+Ticks(3000+m.randn(2000)), f, 0)
}

func (f *FireField) HandleEvent(m *Manager, now Ticks, udata uintptr) {
	f.remaining--
	if f.remaining < 0 {
		if m.world.Alive(f.field) {
			m.world.Remove(f.field)
		}
		m.RemoveEffect(f)
		return
	}
	m.queue.Add(now+Ticks(m.stdDelay), f, udata)
}
