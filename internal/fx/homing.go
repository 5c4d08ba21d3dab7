package fx

import (
	"github.com/isorpg/fxengine/internal/audio/sfx"
	"github.com/isorpg/fxengine/internal/data"
	"github.com/isorpg/fxengine/internal/geom"
	"github.com/isorpg/fxengine/internal/world"
)

const (
	homingLifetime   = 20 * 1000
	homingCadence    = 100
	homingScanRadius = 30
	homingDamageGap  = 1000
)

// Homing is a death vortex or energy mist: it drifts toward a hostile actor,
// retargets when its victim dies and hurts non-party actors around it once
// a second while it has a target.
type Homing struct {
	base
	weapon   int
	attacker world.ObjectID
	target   world.ObjectID
	pos      geom.Tile
	dest     geom.Tile

	sprite     int
	frame      int
	frames     int
	sfx        int
	channel    sfx.Channel
	stop       Ticks
	nextDamage Ticks
	damageTick int
}

// NewHoming starts at pos. Without a target the effect drifts toward dest
// and scans for one.
func NewHoming(weapon int, attacker, target world.ObjectID, pos, dest geom.Tile) *Homing {
	return &Homing{
		weapon:   weapon,
		attacker: attacker,
		target:   target,
		pos:      pos,
		dest:     dest,
		sprite:   defaultExplosionSprite,
		sfx:      sfx.Explosion,
		channel:  sfx.NoChannel,
	}
}

func (h *Homing) Kind() string { return "homing" }

func (h *Homing) Pos() geom.Tile         { return h.pos }
func (h *Homing) Target() world.ObjectID { return h.target }

// DamageTicks counts the damage pulses dealt so far.
func (h *Homing) DamageTicks() int { return h.damageTick }

func (h *Homing) start(m *Manager, now Ticks) {
	if info := m.shapes.Get(h.weapon); info != nil {
		h.sprite = info.ExplosionSprite
		if info.ExplosionSfx > 0 {
			h.sfx = info.ExplosionSfx
		}
	}
	if s := m.sprites.Get(h.sprite); s != nil {
		h.frames = s.Frames
	}
	if _, ok := m.world.ActorInfo(h.target); !ok {
		h.target = 0
	}
	h.stop = now + homingLifetime
	m.queue.Add(now, h, 0)
	h.channel = m.audio.Play(h.sfx, h.pos, sfx.MaxVolume, true)
}

// tracking reports whether the current target is a living actor.
func (h *Homing) tracking(m *Manager) bool {
	info, ok := m.world.ActorInfo(h.target)
	return ok && !info.Dead
}

func (h *Homing) addDirty(m *Manager) int {
	x, y := m.win.TileToScreen(h.pos)
	tile := m.win.TileSize()
	m.win.AddDirty(m.win.ClipToWin(m.win.ShapeRect(h.sprite, x, y).Enlarge(tile / 2)))
	if s := m.sprites.Get(h.sprite); s != nil {
		return s.Width
	}
	return tile
}

// stepToward moves one tile per axis toward t when more than one tile away.
func (h *Homing) stepToward(t geom.Tile) {
	dx, dy, dz := t.X-h.pos.X, t.Y-h.pos.Y, t.Z-h.pos.Z
	if dx*dx+dy*dy+dz*dz > 1 {
		h.pos.X += geom.Sign(dx)
		h.pos.Y += geom.Sign(dy)
		h.pos.Z += geom.Sign(dz)
	}
}

// rescan locks the nearest hostile actor outside the party.
func (h *Homing) rescan(m *Manager) {
	var nearest world.ObjectID
	best := 100000
	for _, id := range m.world.NearbyActors(h.pos, homingScanRadius) {
		info, ok := m.world.ActorInfo(id)
		if !ok || info.Party || info.Dead || info.Alignment < data.AlignEvil {
			continue
		}
		if d := m.world.Tile(id).DistSq(h.pos); d < best {
			best = d
			nearest = id
		}
	}
	h.target = nearest
}

func (h *Homing) HandleEvent(m *Manager, now Ticks, udata uintptr) {
	width := h.addDirty(m)

	if h.tracking(m) {
		t := m.world.Tile(h.target)
		t.Z += m.world.Height(h.target) / 2
		h.stepToward(t)
	} else {
		if h.dest.Valid() {
			h.stepToward(h.dest)
		}
		h.rescan(m)
	}

	if h.tracking(m) && now > h.nextDamage {
		h.nextDamage = now + homingDamageGap
		h.damageTick++
		att := h.attacker
		if !m.world.Alive(att) {
			att = 0
		}
		for _, id := range m.world.NearbyActors(h.pos, width/(2*m.win.TileSize())) {
			if info, ok := m.world.ActorInfo(id); ok && !info.Party {
				m.world.Attacked(id, att, h.weapon, h.weapon, true)
			}
		}
	}
	if h.frames > 0 {
		h.frame = (h.frame + 1) % h.frames
	}

	h.addDirty(m)
	if now < h.stop {
		m.queue.Add(now+homingCadence, h, udata)
		if h.channel != sfx.NoChannel {
			h.channel = m.audio.Update(h.channel, h.pos)
		}
		return
	}
	m.win.SetAllDirty()
	m.RemoveEffect(h)
}

func (h *Homing) release(m *Manager) {
	if h.channel != sfx.NoChannel {
		m.audio.Stop(h.channel)
		h.channel = sfx.NoChannel
	}
}

func (h *Homing) Paint(m *Manager) {
	x, y := m.win.TileToScreen(h.pos)
	m.win.PaintSprite(h.sprite, h.frame, x, y)
}
