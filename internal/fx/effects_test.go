package fx

import (
	"testing"

	"github.com/isorpg/fxengine/internal/audio/sfx"
	"github.com/isorpg/fxengine/internal/core/event"
	"github.com/isorpg/fxengine/internal/data"
	"github.com/isorpg/fxengine/internal/geom"
	"github.com/isorpg/fxengine/internal/world"
)

func TestSpritesRunOnce(t *testing.T) {
	h := newHarness(t, rules{})
	s := NewSprites(5, geom.Tile{X: 4, Y: 4}, 0, 0, 0, 0, -1)
	h.m.AddEffect(s)
	h.run(750)
	if !h.registered(s) || s.Frame() != 8 {
		t.Fatalf("frame = %d after 8 events", s.Frame())
	}
	h.run(850)
	if h.registered(s) {
		t.Fatal("animation did not end")
	}
	if h.win.allDirty == 0 {
		t.Fatal("end of animation did not repaint")
	}
}

func TestSpritesRepeat(t *testing.T) {
	h := newHarness(t, rules{})
	s := NewSprites(7, geom.Tile{X: 4, Y: 4}, 0, 0, 0, 0, 3)
	h.m.AddEffect(s)
	h.run(250)
	if !h.registered(s) {
		t.Fatal("looping sprite ended early")
	}
	h.run(350)
	if h.registered(s) {
		t.Fatal("looping sprite ran past its repetitions")
	}
}

func TestSpritesFollowItem(t *testing.T) {
	h := newHarness(t, rules{})
	cart := h.spawn(shapeChest, geom.Tile{X: 2, Y: 2})
	s := NewSpritesOn(5, cart, 0, 0, 0, 0, 0, -1)
	h.m.AddEffect(s)
	h.world.Move(cart, geom.Tile{X: 6, Y: 3})
	h.run(10)
	h.m.Paint()
	x, y := h.win.TileToScreen(geom.Tile{X: 6, Y: 3})
	if len(h.win.paints) != 1 || h.win.paints[0].x != x || h.win.paints[0].y != y {
		t.Fatalf("paints = %+v, want at %d,%d", h.win.paints, x, y)
	}
}

func TestExplosionDamagesOnce(t *testing.T) {
	h := newHarness(t, rules{blast: 4})
	hero := h.actor(geom.Tile{X: 30, Y: 30}, world.Actor{HP: 10, Party: true})
	h.world.SetMainActor(hero)
	keg := h.spawn(DefaultExplosionShape, geom.Tile{X: 10, Y: 10})
	near := h.actor(geom.Tile{X: 11, Y: 10}, world.Actor{HP: 10})
	far := h.actor(geom.Tile{X: 20, Y: 10}, world.Actor{HP: 10})

	var blasts []event.Exploded
	event.Subscribe(h.bus, func(e event.Exploded) { blasts = append(blasts, e) })

	e := NewExplosion(geom.Tile{X: 10, Y: 10}, keg, 0, -1, -1, 0)
	h.m.AddEffect(e)
	if o, _ := h.world.Get(keg); o.Quality != 1 {
		t.Fatal("keg not marked as detonating")
	}
	h.run(2000)
	h.bus.SwapBuffers()
	h.bus.DispatchAll()

	if !e.Detonated() || h.registered(e) {
		t.Fatal("explosion did not finish")
	}
	if h.world.Alive(keg) {
		t.Fatal("exploder survived")
	}
	if a, _ := h.world.Actor(near); a.HP != 6 {
		t.Fatalf("near HP = %d, want 6", a.HP)
	}
	if a, _ := h.world.Actor(far); a.HP != 10 {
		t.Fatalf("far HP = %d", a.HP)
	}
	if h.audio.count(sfx.Explosion) != 1 {
		t.Fatalf("explosion sounds = %d", h.audio.count(sfx.Explosion))
	}
	if len(blasts) != 1 || blasts[0].Victims != 1 || blasts[0].Shape != DefaultExplosionShape {
		t.Fatalf("events = %+v", blasts)
	}
}

func TestExplosionUsesProjectileArt(t *testing.T) {
	h := newHarness(t, rules{})
	e := NewExplosion(geom.Tile{X: 3, Y: 3}, 0, 0, -1, shapeVortex, 0)
	h.m.AddEffect(e)
	h.run(10)
	if e.sprite != 6 || e.weapon != shapeVortex {
		t.Fatalf("sprite %d weapon %d", e.sprite, e.weapon)
	}
	if h.audio.count(70) != 1 {
		t.Fatal("shape explosion sound not played")
	}
}

func homingOf(m *Manager) *Homing {
	for _, e := range m.Effects() {
		if h, ok := e.(*Homing); ok {
			return h
		}
	}
	return nil
}

func TestHomingIdleUntilHostileInRange(t *testing.T) {
	h := newHarness(t, rules{blast: 1})
	friend := h.actor(geom.Tile{X: 12, Y: 10}, world.Actor{HP: 10, Alignment: data.AlignGood})
	h.actor(geom.Tile{X: 8, Y: 10}, world.Actor{HP: 10, Party: true, Alignment: data.AlignChaotic})
	hm := NewHoming(shapeVortex, 0, 0, geom.Tile{X: 10, Y: 10}, geom.Tile{X: 10, Y: 10})
	h.m.AddEffect(hm)

	h.run(3000)
	if !hm.Target().IsZero() || hm.DamageTicks() != 0 {
		t.Fatalf("idle vortex acquired %v and dealt %d pulses", hm.Target(), hm.DamageTicks())
	}
	if a, _ := h.world.Actor(friend); a.HP != 10 {
		t.Fatal("idle vortex dealt damage")
	}

	foe := h.actor(geom.Tile{X: 45, Y: 10}, world.Actor{HP: 10, Alignment: data.AlignEvil})
	h.run(4000)
	if !hm.Target().IsZero() {
		t.Fatal("acquired a foe outside the scan radius")
	}
	h.world.Move(foe, geom.Tile{X: 30, Y: 10})
	h.run(5000)
	if hm.Target() != foe {
		t.Fatalf("target = %v, want foe", hm.Target())
	}
	if hm.Pos().X <= 10 || hm.DamageTicks() == 0 {
		t.Fatalf("pos %+v pulses %d", hm.Pos(), hm.DamageTicks())
	}
}

func TestHomingDamagePerSecond(t *testing.T) {
	h := newHarness(t, rules{blast: 1})
	foe := h.actor(geom.Tile{X: 10, Y: 10}, world.Actor{HP: 100, Alignment: data.AlignEvil})
	hm := NewHoming(shapeVortex, 0, foe, geom.Tile{X: 10, Y: 10}, geom.InvalidTile)
	h.m.AddEffect(hm)
	h.run(3000)
	if hm.DamageTicks() != 3 {
		t.Fatalf("pulses = %d, want 3", hm.DamageTicks())
	}
	if a, _ := h.world.Actor(foe); a.HP != 97 {
		t.Fatalf("HP = %d", a.HP)
	}
}

func TestHomingRetargetsWhenVictimDies(t *testing.T) {
	h := newHarness(t, rules{})
	a := h.actor(geom.Tile{X: 12, Y: 10}, world.Actor{HP: 10, Alignment: data.AlignEvil})
	b := h.actor(geom.Tile{X: 20, Y: 10}, world.Actor{HP: 10, Alignment: data.AlignChaotic})
	hm := NewHoming(shapeVortex, 0, a, geom.Tile{X: 10, Y: 10}, geom.InvalidTile)
	h.m.AddEffect(hm)
	h.run(200)
	h.world.Kill(a)
	h.run(400)
	if hm.Target() != b {
		t.Fatalf("target = %v, want b", hm.Target())
	}
}

func TestHomingLifetime(t *testing.T) {
	h := newHarness(t, rules{})
	hm := NewHoming(shapeVortex, 0, 0, geom.Tile{X: 1, Y: 1}, geom.InvalidTile)
	h.m.AddEffect(hm)
	if len(h.audio.looping) != 1 {
		t.Fatal("vortex sound not looping")
	}
	h.run(19900)
	if !h.registered(hm) {
		t.Fatal("vortex ended early")
	}
	h.run(20200)
	if h.registered(hm) || len(h.audio.looping) != 0 {
		t.Fatal("vortex outlived its lifetime")
	}
}

func TestEarthquake(t *testing.T) {
	h := newHarness(t, rules{})
	q1 := NewEarthquake(5)
	q2 := NewEarthquake(3)
	h.m.AddEffect(q1)
	h.m.AddEffect(q2)
	h.run(1000)
	if q1.Steps() != 5 || q2.Steps() != 3 {
		t.Fatalf("steps = %d, %d", q1.Steps(), q2.Steps())
	}
	if len(h.win.copies) != 16 || h.win.shows != 8 {
		t.Fatalf("copies %d shows %d", len(h.win.copies), h.win.shows)
	}
	if h.m.Len() != 0 {
		t.Fatal("earthquakes not removed")
	}
	if n := h.audio.count(sfx.Earthquake); n != 1 {
		t.Fatalf("quake sound played %d times", n)
	}
	for _, c := range h.win.copies {
		if c[2] < 320-4 || c[3] < 200-4 {
			t.Fatalf("shake copied %v", c)
		}
	}

	h.m.Earthquake(1)
	h.run(1100)
	if n := h.audio.count(sfx.Earthquake); n != 2 {
		t.Fatalf("a later quake played no sound (%d)", n)
	}
}

func TestFireField(t *testing.T) {
	h := newHarness(t, rules{})
	at := geom.Tile{X: 5, Y: 5}
	f := NewFireField(at, 5, false)
	h.m.AddEffect(f)

	if !h.world.Alive(f.Field()) || h.world.Tile(f.Field()) != at {
		t.Fatal("field not placed")
	}
	if r := f.Remaining(); r < 15 || r > 19 {
		t.Fatalf("remaining = %d", r)
	}
	dust := 0
	for _, id := range h.world.Nearby(at, 1) {
		if h.world.Shape(id) == dustShape {
			dust++
			if !h.world.HasFlag(id, world.FlagTemporary) {
				t.Fatal("dust not temporary")
			}
		}
	}
	if dust != 5 {
		t.Fatalf("dust objects = %d", dust)
	}

	h.run(2900)
	if !h.world.Alive(f.Field()) {
		t.Fatal("field burnt out before its first tick")
	}
	h.run(8000)
	if h.world.Alive(f.Field()) || h.registered(f) {
		t.Fatal("field outlived its lifespan")
	}
}

func TestFireFieldEndless(t *testing.T) {
	h := newHarness(t, rules{})
	f := NewFireField(geom.Tile{X: 1, Y: 1}, 5, true)
	h.m.AddEffect(f)
	if f.Remaining() != endlessTicks {
		t.Fatalf("remaining = %d", f.Remaining())
	}
}
