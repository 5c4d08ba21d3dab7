package fx

import (
	"github.com/isorpg/fxengine/internal/audio/sfx"
	"github.com/isorpg/fxengine/internal/core/event"
	"github.com/isorpg/fxengine/internal/data"
	"github.com/isorpg/fxengine/internal/geom"
	"github.com/isorpg/fxengine/internal/pathfind"
	"github.com/isorpg/fxengine/internal/world"
)

// ProjectileState is the flight phase of a projectile.
type ProjectileState int

const (
	Initializing ProjectileState = iota
	InFlight
	Exploding
	Hit
	Dropped
	Returning
	Expired
)

func (s ProjectileState) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case InFlight:
		return "in-flight"
	case Exploding:
		return "exploding"
	case Hit:
		return "hit"
	case Dropped:
		return "dropped"
	case Returning:
		return "returning"
	}
	return "expired"
}

const (
	defaultMissileSpeed = 4
	hitRange            = 3  // tiles from the target's center
	returnRange         = 50 // boomerangs come back within this many tiles
	dropSearch          = 3
)

// ProjectileSpec describes a missile. Attacker and Target win over From and
// To when they are alive.
type ProjectileSpec struct {
	Attacker   world.ObjectID
	Target     world.ObjectID
	From       geom.Tile
	To         geom.Tile
	Weapon     int // launching weapon shape
	Projectile int // ammo shape, -1 for none
	Sprite     int // sprite shown in flight, -1 for none
	AttackPts  int
	Speed      int // tiles per step, 0 for the weapon's speed
	ReturnPath bool
}

// Projectile flies along a straight path and resolves a hit, explosion,
// drop or boomerang return when the path ends.
type Projectile struct {
	base
	spec ProjectileSpec

	attacker   world.ObjectID
	target     world.ObjectID
	weapon     int
	projectile int
	sprite     int
	frame      int
	frames     int
	pos        geom.Tile
	path       pathfind.Path
	speed      int
	attval     int
	returnPath bool
	noBlocking bool
	autohit    bool
	skipRender bool
	state      ProjectileState
}

func NewProjectile(spec ProjectileSpec) *Projectile {
	return &Projectile{
		spec:       spec,
		attacker:   spec.Attacker,
		target:     spec.Target,
		weapon:     spec.Weapon,
		projectile: spec.Projectile,
		sprite:     spec.Sprite,
		speed:      spec.Speed,
		attval:     spec.AttackPts,
		returnPath: spec.ReturnPath,
		skipRender: spec.Sprite < 0,
		path:       pathfind.NewStraight(),
	}
}

func (p *Projectile) Kind() string { return "projectile" }

func (p *Projectile) State() ProjectileState { return p.state }
func (p *Projectile) Pos() geom.Tile         { return p.pos }
func (p *Projectile) Target() world.ObjectID { return p.target }
func (p *Projectile) Speed() int             { return p.speed }
func (p *Projectile) Frame() int             { return p.frame }
func (p *Projectile) Visible() bool          { return !p.skipRender }

func (p *Projectile) start(m *Manager, now Ticks) {
	src, dst := p.spec.From, p.spec.To
	if m.world.Alive(p.attacker) {
		src = m.world.Tile(p.attacker)
	}
	if m.world.Alive(p.target) {
		dst = m.world.Tile(p.target)
	}

	winfo := m.shapes.Weapon(p.weapon)
	if winfo != nil {
		p.noBlocking = winfo.NoBlocking
		if p.speed <= 0 && winfo.MissileSpeed > 0 {
			p.speed = winfo.MissileSpeed
		}
		p.autohit = winfo.AutoHit
	}
	if p.speed <= 0 {
		p.speed = defaultMissileSpeed
	}
	ainfo := m.shapes.AmmoFor(p.projectile)
	if ainfo != nil {
		p.noBlocking = p.noBlocking || ainfo.NoBlocking
		p.autohit = p.autohit || ainfo.AutoHit
	}

	targetAlive := m.world.Alive(p.target)
	if m.world.Alive(p.attacker) {
		aim := dst
		if targetAlive {
			aim = m.world.Tile(p.target)
		}
		p.pos = m.world.MissileTile(p.attacker, m.world.Direction(p.attacker, aim))
	} else {
		p.pos = src
	}
	if targetAlive {
		dst = m.world.CenterTile(p.target)
	} else {
		dst.Z = p.pos.Z
	}

	if explodes(winfo, ainfo) && ainfo != nil && ainfo.Homing {
		p.path.NewPath(p.pos, p.pos)
	} else {
		p.path.NewPath(p.pos, dst)
		if m.world.Alive(p.attacker) {
			// Get out of the shooter's volume.
			vol := m.world.Block(p.attacker)
			for {
				t, _, ok := p.path.NextStep()
				if !ok {
					break
				}
				p.pos = t
				if !vol.HasPoint(t) {
					break
				}
			}
		}
	}
	p.SetSpriteShape(m, p.sprite)
	p.state = InFlight
	m.queue.Add(now, p, uintptr(m.stdDelay/2))
}

func explodes(w *data.WeaponInfo, a *data.AmmoInfo) bool {
	return (w != nil && w.Explodes) || (a != nil && a.Explodes)
}

func returns(w *data.WeaponInfo, a *data.AmmoInfo) bool {
	return (w != nil && w.Returns) || (a != nil && a.Returns)
}

// SetSpriteShape changes the sprite and recomputes the direction frame.
// Sprites with 24 or more frames show 8 + the 16-way heading of the path;
// single-frame sprites of explosive shapes show frame 0; anything else is
// not drawn.
func (p *Projectile) SetSpriteShape(m *Manager, sprite int) {
	p.sprite = sprite
	if sprite < 0 {
		p.skipRender = true
		p.frame = 0
		return
	}
	p.frames = 0
	if info := m.sprites.Get(sprite); info != nil {
		p.frames = info.Frames
	}
	shape := m.shapes.Get(p.projectile)
	switch {
	case p.frames >= 24:
		p.frame = 8 + geom.Dir16(p.path.Src(), p.path.Dest())
		p.skipRender = false
	case p.frames == 1 && shape != nil && shape.Explosive:
		p.frame = 0
		p.skipRender = false
	default:
		p.skipRender = true
	}
	p.addDirty(m)
}

func (p *Projectile) addDirty(m *Manager) {
	if p.skipRender {
		return
	}
	x, y := m.win.TileToScreen(p.pos)
	tile := m.win.TileSize()
	m.win.AddDirty(m.win.ClipToWin(m.win.ShapeRect(p.sprite, x, y).Enlarge(tile / 2)))
}

// findTarget returns the blocking object at t. Missiles on a floor level
// probe one lift up.
func findTarget(m *Manager, t geom.Tile) world.ObjectID {
	if t.Z%5 == 0 {
		t.Z++
	}
	return m.world.FindBlocking(t)
}

func (p *Projectile) HandleEvent(m *Manager, now Ticks, udata uintptr) {
	delay := Ticks(m.stdDelay / 2)
	p.addDirty(m)
	winfo := m.shapes.Weapon(p.weapon)
	if winfo != nil && winfo.Rotation != 0 {
		nf := p.frame + winfo.Rotation
		if nf > 23 {
			nf = ((nf - 8) % 16) + 8
		}
		p.frame = nf
	}
	tgt := p.target
	if !m.world.Alive(tgt) {
		tgt = 0
	}
	finished := false
	for i := 0; i < p.speed; i++ {
		t, _, ok := p.path.NextStep()
		if ok {
			p.pos = t
		}
		if !ok {
			finished = true
		} else if tgt.IsZero() && !p.noBlocking {
			if tgt = findTarget(m, p.pos); !tgt.IsZero() {
				finished = true
			}
		}
		if finished {
			p.target = tgt
			break
		}
	}
	if !finished {
		p.addDirty(m)
		m.queue.Add(now+delay, p, udata)
		return
	}
	p.finish(m, now, winfo, tgt)
	p.addDirty(m)
	p.skipRender = true
	m.RemoveEffect(p)
}

// finish runs exactly one terminal branch, in priority order: boomerang
// coming home, explosion, then hit or usecode followed by return or drop.
func (p *Projectile) finish(m *Manager, now Ticks, winfo *data.WeaponInfo, tgt world.ObjectID) {
	ainfo := m.shapes.AmmoFor(p.projectile)
	att := p.attacker
	if !m.world.Alive(att) {
		att = 0
	}

	if p.returnPath {
		obj := m.world.Create(p.objectShape(), 0)
		if tgt.IsZero() || !m.world.AddToContainer(tgt, obj) {
			m.world.SetFlag(obj, world.FlagOkayToTake|world.FlagTemporary)
			m.world.Move(obj, p.pos)
		}
		p.state = Dropped
		return
	}

	if explodes(winfo, ainfo) {
		var offset geom.Tile
		if !tgt.IsZero() {
			offset.Z = m.world.Height(tgt) / 2
		}
		if ainfo != nil && ainfo.Homing {
			m.AddEffect(NewHoming(p.weapon, att, tgt, p.pos, p.pos.Add(offset)))
		} else {
			m.AddEffect(NewExplosion(p.pos.Add(offset), 0, 0, p.weapon, p.projectile, att))
		}
		p.target = 0
		p.state = Exploding
		return
	}

	hit := false
	if !tgt.IsZero() && tgt != att && m.world.CenterTile(tgt).Within(p.pos, hitRange) {
		hit = p.autohit || m.world.TryToHit(tgt, att, p.attval)
		if hit {
			snd := sfx.Hit
			if winfo != nil && winfo.HitSfx > 0 {
				snd = winfo.HitSfx
			}
			m.audio.Play(snd, p.pos, sfx.MaxVolume, false)
			m.world.Attacked(tgt, att, p.weapon, p.projectile, false)
			emit(m, event.ProjectileHit{Attacker: att, Target: tgt, Weapon: p.weapon,
				Ammo: p.projectile, Tile: p.pos, At: uint64(now)})
		}
	} else if winfo != nil && winfo.Usecode != "" {
		m.usecode.CallUsecode(winfo.Usecode, "weapon")
	}
	if !hit {
		emit(m, event.ProjectileMissed{Attacker: att, Weapon: p.weapon, Tile: p.pos, At: uint64(now)})
	}
	p.state = Expired
	if hit {
		p.state = Hit
	}

	if returns(winfo, ainfo) && !att.IsZero() && m.world.Tile(att).Within(p.pos, returnRange) {
		back := NewProjectile(ProjectileSpec{
			From:       p.pos,
			Target:     att,
			Weapon:     p.weapon,
			Projectile: p.projectile,
			Sprite:     p.sprite,
			AttackPts:  p.attval,
			Speed:      p.speed,
			ReturnPath: true,
		})
		m.AddEffect(back)
		p.state = Returning
		return
	}

	if p.shouldDrop(winfo, ainfo, hit) {
		p.dropAmmo(m, now, att)
	}
}

// shouldDrop applies the ammo drop policy. Ammo without a weapon always
// drops; otherwise only consumed ammo or thrown weapons drop, always for
// DropAlways and on a miss for DropNormal.
func (p *Projectile) shouldDrop(winfo *data.WeaponInfo, ainfo *data.AmmoInfo, hit bool) bool {
	if winfo == nil {
		return true
	}
	if ainfo == nil {
		return false
	}
	consumed := winfo.Ammo >= 0 || winfo.Ammo == data.AmmoThrown
	return consumed && (ainfo.Drop == data.DropAlways || (!hit && ainfo.Drop != data.DropNever))
}

// objectShape is the world shape the missile turns back into.
func (p *Projectile) objectShape() int {
	if p.projectile >= 0 {
		return p.projectile
	}
	return p.weapon
}

func (p *Projectile) dropAmmo(m *Manager, now Ticks, att world.ObjectID) {
	spot := m.world.FindSpot(p.pos, dropSearch)
	if !spot.Valid() {
		return
	}
	obj := m.world.Create(p.objectShape(), 0)
	if att.IsZero() || m.world.HasFlag(att, world.FlagTemporary) {
		m.world.SetFlag(obj, world.FlagTemporary)
	}
	m.world.SetFlag(obj, world.FlagOkayToTake)
	m.world.Move(obj, spot)
	if p.state != Hit {
		p.state = Dropped
	}
	emit(m, event.AmmoDropped{Ammo: p.objectShape(), Object: obj, Tile: spot, At: uint64(now)})
}

func (p *Projectile) Paint(m *Manager) {
	if p.skipRender {
		return
	}
	x, y := m.win.TileToScreen(p.pos)
	m.win.PaintSprite(p.sprite, p.frame, x, y)
}
