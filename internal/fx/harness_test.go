package fx

import (
	"testing"

	"github.com/isorpg/fxengine/internal/audio/sfx"
	"github.com/isorpg/fxengine/internal/core/event"
	"github.com/isorpg/fxengine/internal/data"
	"github.com/isorpg/fxengine/internal/geom"
	"github.com/isorpg/fxengine/internal/scripting"
	"github.com/isorpg/fxengine/internal/world"
	"go.uber.org/zap"
)

// Shapes used across the tests.
const (
	shapeWall      = 100
	shapeChest     = 200
	shapeMan       = 300
	shapeBow       = 500
	shapeArrow     = 510
	shapeBoomerang = 520
	shapeFireWand  = 530
	shapeVortex    = 540
	shapeMindBlast = 550
	shapeJavelin   = 560
	shapeBolt      = 570
)

type rules struct {
	hit    bool
	damage int
	blast  int
}

func (r rules) CalcMissileHit(scripting.MissileContext) bool   { return r.hit }
func (r rules) CalcMissileDamage(scripting.MissileContext) int { return r.damage }
func (r rules) ExplosionDamage(int) int                        { return r.blast }

type paintOp struct {
	sprite, frame, x, y int
}

type fakeWindow struct {
	w, h, tile int
	scroll     geom.Tile
	dirty      []geom.Rect
	allDirty   int
	painted    int
	shows      int
	copies     [][6]int
	paints     []paintOp
	texts      []string
	sprites    *data.SpriteTable
}

func (f *fakeWindow) Size() (int, int)  { return f.w, f.h }
func (f *fakeWindow) TileSize() int     { return f.tile }
func (f *fakeWindow) Scroll() geom.Tile { return f.scroll }
func (f *fakeWindow) TileToScreen(t geom.Tile) (int, int) {
	return (t.X-f.scroll.X+1)*f.tile - 1 - 4*t.Z, (t.Y-f.scroll.Y+1)*f.tile - 1 - 4*t.Z
}
func (f *fakeWindow) ShapeRect(sprite, x, y int) geom.Rect {
	if s := f.sprites.Get(sprite); s != nil {
		return geom.Rect{X: x - s.XLeft, Y: y - s.YAbove, W: s.XLeft + s.XRight + 1, H: s.YAbove + s.YBelow + 1}
	}
	return geom.Rect{X: x, Y: y, W: f.tile, H: f.tile}
}
func (f *fakeWindow) ClipToWin(r geom.Rect) geom.Rect {
	return r.Intersect(geom.Rect{W: f.w, H: f.h})
}
func (f *fakeWindow) AddDirty(r geom.Rect) { f.dirty = append(f.dirty, r) }
func (f *fakeWindow) SetAllDirty()         { f.allDirty++ }
func (f *fakeWindow) SetPainted()          { f.painted++ }
func (f *fakeWindow) PaintSprite(sprite, frame, x, y int) {
	f.paints = append(f.paints, paintOp{sprite, frame, x, y})
}
func (f *fakeWindow) PaintText(glyphs []byte, x, y int) { f.texts = append(f.texts, string(glyphs)) }
func (f *fakeWindow) TextHeight() int                   { return 8 }
func (f *fakeWindow) Copy(sx, sy, w, h, dx, dy int) {
	f.copies = append(f.copies, [6]int{sx, sy, w, h, dx, dy})
}
func (f *fakeWindow) Show() { f.shows++ }

type fakeAudio struct {
	played  []int
	looping map[sfx.Channel]bool
	next    sfx.Channel
	updates int
}

func (a *fakeAudio) Play(id int, _ geom.Tile, _ int, loop bool) sfx.Channel {
	a.played = append(a.played, id)
	a.next++
	if loop {
		a.looping[a.next] = true
	}
	return a.next
}
func (a *fakeAudio) Update(ch sfx.Channel, _ geom.Tile) sfx.Channel { a.updates++; return ch }
func (a *fakeAudio) Stop(ch sfx.Channel)                            { delete(a.looping, ch) }

func (a *fakeAudio) count(id int) int {
	n := 0
	for _, s := range a.played {
		if s == id {
			n++
		}
	}
	return n
}

type fakePalette struct {
	flashes  int
	restores int
	flashing bool
	overcast bool
	fog      bool
}

func (p *fakePalette) Lightning()         { p.flashes++; p.flashing = true }
func (p *fakePalette) Restore()           { p.restores++; p.flashing = false }
func (p *fakePalette) SetOvercast(v bool) { p.overcast = v }
func (p *fakePalette) SetFog(v bool)      { p.fog = v }

type fakeUsecode struct{ calls []string }

func (u *fakeUsecode) CallUsecode(fn, _ string) bool {
	u.calls = append(u.calls, fn)
	return true
}

type harness struct {
	t     *testing.T
	m     *Manager
	world *world.State
	win   *fakeWindow
	audio *fakeAudio
	pal   *fakePalette
	uc    *fakeUsecode
	bus   *event.Bus
	now   Ticks
}

func testShapes() *data.ShapeTable {
	return data.NewShapeTable(
		data.ShapeInfo{Shape: shapeWall, Name: "wall", Solid: true, Height: 5},
		data.ShapeInfo{Shape: shapeChest, Name: "chest", Container: true},
		data.ShapeInfo{Shape: shapeMan, Name: "man", Height: 4},
		data.ShapeInfo{Shape: DefaultExplosionShape, Name: "powder keg", Explosive: true, Solid: true,
			ExplosionSprite: 5, ExplosionSfx: sfx.Explosion},
		data.ShapeInfo{Shape: shapeBow, Name: "bow",
			Weapon: &data.WeaponInfo{Ammo: shapeArrow, Projectile: 1, MissileSpeed: 4}},
		data.ShapeInfo{Shape: shapeArrow, Name: "arrow", Ammo: &data.AmmoInfo{Drop: data.DropNormal}},
		data.ShapeInfo{Shape: shapeBoomerang, Name: "boomerang",
			Weapon: &data.WeaponInfo{Ammo: data.AmmoThrown, Returns: true, Rotation: 2}},
		data.ShapeInfo{Shape: shapeFireWand, Name: "fire wand", ExplosionSprite: 5,
			Weapon: &data.WeaponInfo{Ammo: data.AmmoCharges, Explodes: true, AutoHit: true}},
		data.ShapeInfo{Shape: shapeVortex, Name: "death vortex", ExplosionSprite: 6, ExplosionSfx: 70,
			Weapon: &data.WeaponInfo{Ammo: shapeVortex},
			Ammo:   &data.AmmoInfo{Explodes: true, Homing: true, Drop: data.DropNever}},
		data.ShapeInfo{Shape: shapeMindBlast, Name: "mind blast",
			Weapon: &data.WeaponInfo{Ammo: data.AmmoNone, Usecode: "mind_blast", NoBlocking: true}},
		data.ShapeInfo{Shape: shapeJavelin, Name: "javelin",
			Weapon: &data.WeaponInfo{Ammo: data.AmmoThrown},
			Ammo:   &data.AmmoInfo{Drop: data.DropAlways}},
		data.ShapeInfo{Shape: shapeBolt, Name: "bolt", Ammo: &data.AmmoInfo{Drop: data.DropNever}},
	)
}

func testSprites() *data.SpriteTable {
	return data.NewSpriteTable(
		data.SpriteInfo{ID: 0, Name: "weather", Frames: 28, Width: 2, Height: 2},
		data.SpriteInfo{ID: 1, Name: "arrow", Frames: 24, Width: 8, Height: 8},
		data.SpriteInfo{ID: 2, Name: "cloud", Frames: 4, Width: 48, Height: 24},
		data.SpriteInfo{ID: 5, Name: "explosion", Frames: 8, Width: 40, Height: 40},
		data.SpriteInfo{ID: 6, Name: "vortex", Frames: 6, Width: 32, Height: 32},
		data.SpriteInfo{ID: 7, Name: "spark", Frames: 1, Width: 8, Height: 8},
	)
}

func newHarness(t *testing.T, r rules) *harness {
	t.Helper()
	shapes := testShapes()
	sprites := testSprites()
	st := world.NewState(shapes, r, zap.NewNop())
	h := &harness{
		t:     t,
		world: st,
		win:   &fakeWindow{w: 320, h: 200, tile: 8, sprites: sprites},
		audio: &fakeAudio{looping: map[sfx.Channel]bool{}},
		pal:   &fakePalette{},
		uc:    &fakeUsecode{},
		bus:   event.NewBus(),
	}
	h.m = NewManager(Deps{
		World:   st,
		Window:  h.win,
		Sprites: sprites,
		Shapes:  shapes,
		Audio:   h.audio,
		Palette: h.pal,
		Usecode: h.uc,
		Bus:     h.bus,
		Log:     zap.NewNop(),
	}, Options{StdDelay: 100, TicksPerMinute: 25, Seed: 7})
	return h
}

// run advances the clock in steps of 10 ms up to and including until.
func (h *harness) run(until Ticks) {
	for h.now < until {
		h.now += 10
		h.m.Advance(h.now)
	}
}

// spawn creates an object on the map.
func (h *harness) spawn(shape int, at geom.Tile) world.ObjectID {
	id := h.world.Create(shape, 0)
	h.world.Move(id, at)
	return id
}

// actor creates an actor on the map.
func (h *harness) actor(at geom.Tile, a world.Actor) world.ObjectID {
	id := h.spawn(shapeMan, at)
	h.world.MakeActor(id, a)
	return id
}

func (h *harness) registered(e Effect) bool {
	for _, x := range h.m.Effects() {
		if x == e {
			return true
		}
	}
	return false
}

func countKind(m *Manager, kind string) int {
	n := 0
	for _, e := range m.Effects() {
		if e.Kind() == kind {
			n++
		}
	}
	return n
}
