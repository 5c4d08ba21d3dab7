package fx

import (
	"testing"

	"github.com/isorpg/fxengine/internal/audio/sfx"
	"github.com/isorpg/fxengine/internal/core/event"
	"github.com/isorpg/fxengine/internal/data"
	"github.com/isorpg/fxengine/internal/geom"
	"github.com/isorpg/fxengine/internal/world"
)

// fire adds a projectile and runs the clock until it has finished.
func (h *harness) fire(spec ProjectileSpec) *Projectile {
	h.t.Helper()
	p := NewProjectile(spec)
	h.m.AddEffect(p)
	for i := 0; i < 200 && h.registered(p); i++ {
		h.run(h.now + 10)
	}
	if h.registered(p) {
		h.t.Fatal("projectile never finished")
	}
	return p
}

// findShape returns the first object of shape within radius of at.
func (h *harness) findShape(shape int, at geom.Tile, radius int) world.ObjectID {
	for _, id := range h.world.Nearby(at, radius) {
		if h.world.Shape(id) == shape {
			return id
		}
	}
	return 0
}

func TestProjectileStopsAtBlocker(t *testing.T) {
	h := newHarness(t, rules{})
	wall := h.spawn(shapeWall, geom.Tile{X: 6, Y: 0, Z: 0})

	p := h.fire(ProjectileSpec{
		From:       geom.Tile{X: 0, Y: 0, Z: 1},
		To:         geom.Tile{X: 10, Y: 0, Z: 1},
		Weapon:     shapeBow,
		Projectile: shapeArrow,
		Sprite:     1,
		Speed:      4,
	})
	if p.Pos() != (geom.Tile{X: 6, Y: 0, Z: 1}) {
		t.Fatalf("stopped at %+v", p.Pos())
	}
	if p.Target() != wall {
		t.Fatalf("target = %v, want the wall", p.Target())
	}
	if p.State() != Hit {
		t.Fatalf("state = %s", p.State())
	}
}

func TestProjectileNoBlockingFliesThrough(t *testing.T) {
	h := newHarness(t, rules{})
	h.spawn(shapeWall, geom.Tile{X: 3, Y: 0, Z: 0})
	p := h.fire(ProjectileSpec{
		From:       geom.Tile{X: 0, Y: 0, Z: 1},
		To:         geom.Tile{X: 8, Y: 0, Z: 1},
		Weapon:     shapeMindBlast,
		Projectile: -1,
		Sprite:     -1,
	})
	if p.Pos() != (geom.Tile{X: 8, Y: 0, Z: 1}) {
		t.Fatalf("stopped at %+v", p.Pos())
	}
	if len(h.uc.calls) != 1 || h.uc.calls[0] != "mind_blast" {
		t.Fatalf("usecode calls = %v", h.uc.calls)
	}
}

func TestProjectileDefaultSpeed(t *testing.T) {
	h := newHarness(t, rules{})
	bow := NewProjectile(ProjectileSpec{From: geom.Tile{}, To: geom.Tile{X: 20}, Weapon: shapeBow, Projectile: shapeArrow, Sprite: -1})
	wand := NewProjectile(ProjectileSpec{From: geom.Tile{}, To: geom.Tile{X: 20}, Weapon: shapeFireWand, Projectile: -1, Sprite: -1})
	fast := NewProjectile(ProjectileSpec{From: geom.Tile{}, To: geom.Tile{X: 20}, Weapon: shapeBow, Projectile: shapeArrow, Sprite: -1, Speed: 7})
	for _, p := range []*Projectile{bow, wand, fast} {
		h.m.AddEffect(p)
	}
	if bow.Speed() != 4 || wand.Speed() != defaultMissileSpeed || fast.Speed() != 7 {
		t.Fatalf("speeds = %d %d %d", bow.Speed(), wand.Speed(), fast.Speed())
	}
}

func TestProjectileHitAndMiss(t *testing.T) {
	cases := []struct {
		name       string
		hit        bool
		weapon     int
		projectile int
		wantState  ProjectileState
		wantHP     int
		wantDrop   int // shape left on the ground, 0 for none
	}{
		{"arrow hits", true, shapeBow, shapeArrow, Hit, 7, 0},
		{"arrow misses and drops", false, shapeBow, shapeArrow, Dropped, 10, shapeArrow},
		{"javelin always drops", true, shapeJavelin, shapeJavelin, Hit, 7, shapeJavelin},
		{"bolt never drops", false, shapeBow, shapeBolt, Expired, 10, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, rules{hit: tc.hit, damage: 3})
			var hits, misses, drops int
			event.Subscribe(h.bus, func(event.ProjectileHit) { hits++ })
			event.Subscribe(h.bus, func(event.ProjectileMissed) { misses++ })
			event.Subscribe(h.bus, func(event.AmmoDropped) { drops++ })

			archer := h.actor(geom.Tile{X: 0, Y: 0}, world.Actor{HP: 10, Party: true})
			target := h.actor(geom.Tile{X: 8, Y: 0}, world.Actor{HP: 10, Alignment: data.AlignEvil})

			p := h.fire(ProjectileSpec{
				Attacker:   archer,
				Target:     target,
				Weapon:     tc.weapon,
				Projectile: tc.projectile,
				Sprite:     1,
			})
			h.bus.SwapBuffers()
			h.bus.DispatchAll()

			if p.State() != tc.wantState {
				t.Fatalf("state = %s, want %s", p.State(), tc.wantState)
			}
			if a, _ := h.world.Actor(target); a.HP != tc.wantHP {
				t.Fatalf("target HP = %d, want %d", a.HP, tc.wantHP)
			}
			if tc.hit && (hits != 1 || h.audio.count(sfx.Hit) != 1) {
				t.Fatalf("hits = %d, hit sounds = %d", hits, h.audio.count(sfx.Hit))
			}
			if !tc.hit && misses != 1 {
				t.Fatalf("misses = %d", misses)
			}

			dropped := world.ObjectID(0)
			if tc.wantDrop != 0 {
				dropped = h.findShape(tc.wantDrop, geom.Tile{X: 8, Y: 0}, 3)
			}
			if tc.wantDrop == 0 {
				if drops != 0 {
					t.Fatalf("unexpected drop")
				}
				return
			}
			if dropped.IsZero() || drops != 1 {
				t.Fatalf("no %d dropped near the target", tc.wantDrop)
			}
			if !h.world.HasFlag(dropped, world.FlagOkayToTake) || h.world.HasFlag(dropped, world.FlagTemporary) {
				t.Fatal("dropped ammo has wrong flags")
			}
			if h.world.IsBlocked(h.world.Tile(dropped)) {
				t.Fatal("ammo dropped on a blocked tile")
			}
		})
	}
}

func TestDropFromTemporaryShooterIsTemporary(t *testing.T) {
	h := newHarness(t, rules{})
	archer := h.actor(geom.Tile{X: 0, Y: 0}, world.Actor{HP: 10})
	h.world.SetFlag(archer, world.FlagTemporary)
	target := h.actor(geom.Tile{X: 6, Y: 0}, world.Actor{HP: 10})
	h.fire(ProjectileSpec{Attacker: archer, Target: target, Weapon: shapeBow, Projectile: shapeArrow, Sprite: -1})

	arrow := h.findShape(shapeArrow, geom.Tile{X: 6, Y: 0}, 3)
	if arrow.IsZero() || !h.world.HasFlag(arrow, world.FlagTemporary) {
		t.Fatal("ammo of a temporary shooter must be temporary")
	}
}

func TestShouldDrop(t *testing.T) {
	bow := &data.WeaponInfo{Ammo: shapeArrow}
	thrown := &data.WeaponInfo{Ammo: data.AmmoThrown}
	wand := &data.WeaponInfo{Ammo: data.AmmoCharges}
	normal := &data.AmmoInfo{Drop: data.DropNormal}
	always := &data.AmmoInfo{Drop: data.DropAlways}
	never := &data.AmmoInfo{Drop: data.DropNever}

	cases := []struct {
		name string
		w    *data.WeaponInfo
		a    *data.AmmoInfo
		hit  bool
		want bool
	}{
		{"no weapon", nil, nil, true, true},
		{"no ammo info", bow, nil, false, false},
		{"normal hit", bow, normal, true, false},
		{"normal miss", bow, normal, false, true},
		{"always hit", thrown, always, true, true},
		{"never miss", bow, never, false, false},
		{"charges are not ammo", wand, always, false, false},
	}
	var p Projectile
	for _, tc := range cases {
		if got := p.shouldDrop(tc.w, tc.a, tc.hit); got != tc.want {
			t.Errorf("%s: shouldDrop = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestBoomerangReturnsToThrower(t *testing.T) {
	h := newHarness(t, rules{hit: true})
	thrower := h.actor(geom.Tile{X: 0, Y: 0}, world.Actor{HP: 10, Party: true})
	h.world.MakeContainer(thrower)
	target := h.actor(geom.Tile{X: 8, Y: 0}, world.Actor{HP: 10})

	p := h.fire(ProjectileSpec{
		Attacker:   thrower,
		Target:     target,
		Weapon:     shapeBoomerang,
		Projectile: -1,
		Sprite:     -1,
	})
	if p.State() != Returning {
		t.Fatalf("state = %s", p.State())
	}
	var back *Projectile
	for _, e := range h.m.Effects() {
		if q, ok := e.(*Projectile); ok {
			back = q
		}
	}
	if back == nil {
		t.Fatal("no return projectile")
	}
	h.run(h.now + 1000)
	if h.registered(back) || back.State() != Dropped {
		t.Fatalf("return path state = %s", back.State())
	}
	contents := h.world.Contents(thrower)
	if len(contents) != 1 || h.world.Shape(contents[0]) != shapeBoomerang {
		t.Fatalf("thrower holds %v", contents)
	}
}

func TestExplodingProjectileSpawnsExplosion(t *testing.T) {
	h := newHarness(t, rules{blast: 4})
	mage := h.actor(geom.Tile{X: 0, Y: 0}, world.Actor{HP: 10, Party: true})
	target := h.actor(geom.Tile{X: 8, Y: 0}, world.Actor{HP: 10})

	p := h.fire(ProjectileSpec{Attacker: mage, Target: target, Weapon: shapeFireWand, Projectile: -1, Sprite: -1})
	if p.State() != Exploding {
		t.Fatalf("state = %s", p.State())
	}
	if countKind(h.m, "explosion") != 1 {
		t.Fatalf("explosions = %d", countKind(h.m, "explosion"))
	}
	h.run(h.now + 2000)
	if a, _ := h.world.Actor(target); a.HP != 6 {
		t.Fatalf("target HP = %d, want one blast", a.HP)
	}
	if h.m.Len() != 0 {
		t.Fatalf("%d effects left", h.m.Len())
	}
}

func TestHomingAmmoSpawnsHoming(t *testing.T) {
	h := newHarness(t, rules{})
	mage := h.actor(geom.Tile{X: 0, Y: 0}, world.Actor{HP: 10, Party: true})
	target := h.actor(geom.Tile{X: 8, Y: 0}, world.Actor{HP: 10, Alignment: data.AlignEvil})

	p := h.fire(ProjectileSpec{Attacker: mage, Target: target, Weapon: shapeVortex, Projectile: shapeVortex, Sprite: -1})
	if p.State() != Exploding {
		t.Fatalf("state = %s", p.State())
	}
	var hm *Homing
	for _, e := range h.m.Effects() {
		if x, ok := e.(*Homing); ok {
			hm = x
		}
	}
	if hm == nil || hm.Target() != target {
		t.Fatal("homing effect missing or not aimed at the target")
	}
}

func TestProjectileDirectionFrame(t *testing.T) {
	h := newHarness(t, rules{})
	east := NewProjectile(ProjectileSpec{From: geom.Tile{}, To: geom.Tile{X: 10}, Weapon: shapeBow, Projectile: shapeArrow, Sprite: 1})
	spark := NewProjectile(ProjectileSpec{From: geom.Tile{}, To: geom.Tile{X: 10}, Weapon: shapeBow, Projectile: shapeArrow, Sprite: 7})
	keg := NewProjectile(ProjectileSpec{From: geom.Tile{}, To: geom.Tile{X: 10}, Projectile: DefaultExplosionShape, Sprite: 7})
	for _, p := range []*Projectile{east, spark, keg} {
		h.m.AddEffect(p)
	}
	if !east.Visible() || east.Frame() != 12 {
		t.Fatalf("east: visible %v frame %d", east.Visible(), east.Frame())
	}
	if spark.Visible() {
		t.Fatal("single-frame sprite of a plain shape must not render")
	}
	if !keg.Visible() || keg.Frame() != 0 {
		t.Fatal("single-frame sprite of an explosive shape must render frame 0")
	}
}

func TestBoomerangRotation(t *testing.T) {
	h := newHarness(t, rules{})
	p := NewProjectile(ProjectileSpec{From: geom.Tile{}, To: geom.Tile{X: 40}, Weapon: shapeBoomerang, Projectile: -1, Sprite: 1})
	h.m.AddEffect(p)
	seen := map[int]bool{}
	for i := 0; i < 10; i++ {
		h.run(h.now + 50)
		f := p.Frame()
		if f < 8 || f > 23 {
			t.Fatalf("frame %d out of the rotation range", f)
		}
		seen[f] = true
	}
	if len(seen) < 5 {
		t.Fatalf("boomerang barely rotated: %v", seen)
	}
}
