package fx

import (
	"github.com/isorpg/fxengine/internal/audio/sfx"
	"github.com/isorpg/fxengine/internal/core/event"
	"github.com/isorpg/fxengine/internal/geom"
	"github.com/isorpg/fxengine/internal/world"
)

// DefaultExplosionShape is the shape (a powder keg) whose explosion is used
// when neither a weapon nor a projectile is given.
const DefaultExplosionShape = 704

// defaultExplosionSprite is shown when the shape table has no entry for the
// exploding shape.
const defaultExplosionSprite = 5

// Sprites plays a sprite animation at a tile or following an object.
type Sprites struct {
	base
	self Effect // outer effect when embedded

	sprite int
	frame  int
	frames int
	pos    geom.Tile
	item   world.ObjectID
	xoff   int
	yoff   int
	dx, dy int
	delay  int
	reps   int
}

// NewSprites animates sprite at pos. dx,dy are added to the pixel offset
// every frame. reps < 0 runs through the frames once; otherwise the frames
// loop reps times.
func NewSprites(sprite int, pos geom.Tile, dx, dy, delay, frame, reps int) *Sprites {
	return &Sprites{sprite: sprite, pos: pos, dx: dx, dy: dy, delay: delay, frame: frame, reps: reps}
}

// NewSpritesOn animates sprite on item, following it as it moves.
func NewSpritesOn(sprite int, item world.ObjectID, xoff, yoff, dx, dy, frame, reps int) *Sprites {
	return &Sprites{sprite: sprite, item: item, pos: geom.InvalidTile,
		xoff: xoff, yoff: yoff, dx: dx, dy: dy, frame: frame, reps: reps}
}

func (s *Sprites) Kind() string { return "sprites" }

func (s *Sprites) me() Effect {
	if s.self != nil {
		return s.self
	}
	return s
}

func (s *Sprites) start(m *Manager, now Ticks) {
	if info := m.sprites.Get(s.sprite); info != nil {
		s.frames = info.Frames
	}
	if !s.item.IsZero() {
		s.pos = m.world.Tile(s.item)
	}
	m.queue.Add(now+Ticks(max(s.delay, 0)), s.me(), 0)
}

// Frame returns the frame shown next.
func (s *Sprites) Frame() int { return s.frame }

func (s *Sprites) screenPos(m *Manager) (int, int) {
	x, y := m.win.TileToScreen(s.pos)
	return x + s.xoff, y + s.yoff
}

func (s *Sprites) addDirty(m *Manager, frame int) {
	if !s.pos.Valid() || frame < 0 {
		return
	}
	x, y := s.screenPos(m)
	tile := m.win.TileSize()
	m.win.AddDirty(m.win.ClipToWin(m.win.ShapeRect(s.sprite, x, y).Enlarge(3 * tile / 2)))
}

func (s *Sprites) HandleEvent(m *Manager, now Ticks, udata uintptr) {
	if s.reps == 0 || (s.reps < 0 && s.frame == s.frames) {
		m.win.SetAllDirty()
		m.RemoveEffect(s.me())
		return
	}
	s.addDirty(m, s.frame)
	m.win.SetPainted()
	if m.world.Alive(s.item) {
		s.pos = m.world.Tile(s.item)
	}
	s.xoff += s.dx
	s.yoff += s.dy
	s.frame++
	if s.reps > 0 {
		s.reps--
		if s.frames > 0 {
			s.frame %= s.frames
		}
	}
	s.addDirty(m, s.frame)
	m.queue.Add(now+Ticks(m.stdDelay), s.me(), udata)
}

func (s *Sprites) Paint(m *Manager) {
	if s.frame >= s.frames || !s.pos.Valid() {
		return
	}
	x, y := s.screenPos(m)
	m.win.PaintSprite(s.sprite, s.frame, x, y)
}

// Explosion is a sprite animation that damages everything around it a
// quarter of the way through.
type Explosion struct {
	Sprites
	exploder   world.ObjectID
	attacker   world.ObjectID
	weapon     int
	projectile int
	sfx        int
	detonated  bool
}

// NewExplosion blows up at pos. exploder is the object destroyed by the
// blast (a powder keg) or zero; weapon and projectile pick the explosion
// art and damage, with -1 for none.
func NewExplosion(pos geom.Tile, exploder world.ObjectID, delay, weapon, projectile int, attacker world.ObjectID) *Explosion {
	e := &Explosion{
		Sprites:    Sprites{pos: pos, delay: delay, reps: -1},
		exploder:   exploder,
		attacker:   attacker,
		weapon:     weapon,
		projectile: projectile,
		sfx:        sfx.Explosion,
	}
	e.self = e
	return e
}

func (e *Explosion) Kind() string { return "explosion" }

func (e *Explosion) start(m *Manager, now Ticks) {
	shape := DefaultExplosionShape
	switch {
	case e.projectile >= 0:
		shape = e.projectile
	case e.weapon >= 0:
		shape = e.weapon
	}
	e.sprite = defaultExplosionSprite
	if info := m.shapes.Get(shape); info != nil {
		e.sprite = info.ExplosionSprite
		if info.ExplosionSfx > 0 {
			e.sfx = info.ExplosionSfx
		}
	}
	if e.weapon < 0 {
		e.weapon = DefaultExplosionShape
		if e.projectile >= 0 {
			e.weapon = e.projectile
		}
	}
	if m.world.Alive(e.exploder) {
		if info := m.shapes.Get(m.world.Shape(e.exploder)); info != nil && info.Explosive {
			m.world.SetQuality(e.exploder, 1) // detonating
		}
	}
	if _, ok := m.world.ActorInfo(e.attacker); !ok {
		e.attacker = m.world.MainActor()
	}
	e.Sprites.start(m, now)
}

// Detonated reports whether the blast damage has been dealt.
func (e *Explosion) Detonated() bool { return e.detonated }

func (e *Explosion) HandleEvent(m *Manager, now Ticks, udata uintptr) {
	if e.frame == 0 {
		m.audio.Play(e.sfx, e.pos, sfx.MaxVolume, false)
	}
	if e.frame == e.frames/4 && !e.detonated {
		e.detonate(m, now)
	}
	e.Sprites.HandleEvent(m, now, udata)
}

func (e *Explosion) detonate(m *Manager, now Ticks) {
	e.detonated = true
	if m.world.Alive(e.exploder) && m.world.Tile(e.exploder).Valid() {
		m.win.SetAllDirty()
		m.world.Remove(e.exploder)
		e.exploder = 0
	}
	width := 0
	if info := m.sprites.Get(e.sprite); info != nil {
		width = info.Width
	}
	attacker := e.attacker
	if !m.world.Alive(attacker) {
		attacker = 0
	}
	victims := 0
	for _, id := range m.world.Nearby(e.pos, width/(2*m.win.TileSize())) {
		// Earlier victims can take others down with them.
		if !m.world.Alive(id) {
			continue
		}
		m.world.Attacked(id, attacker, e.weapon, e.projectile, true)
		victims++
	}
	emit(m, event.Exploded{Shape: e.weapon, Tile: e.pos, Victims: victims, At: uint64(now)})
}
