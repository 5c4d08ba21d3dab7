package fx

import (
	"github.com/isorpg/fxengine/internal/audio/sfx"
	"github.com/isorpg/fxengine/internal/data"
	"github.com/isorpg/fxengine/internal/geom"
	"github.com/isorpg/fxengine/internal/world"
)

// World is the object model effects act on. Every method tolerates stale
// handles: lookups of dead objects return zero values or InvalidTile.
type World interface {
	Alive(id world.ObjectID) bool
	Tile(id world.ObjectID) geom.Tile
	CenterTile(id world.ObjectID) geom.Tile
	Height(id world.ObjectID) int
	Block(id world.ObjectID) geom.Box
	Shape(id world.ObjectID) int
	MissileTile(id world.ObjectID, dir int) geom.Tile
	Direction(id world.ObjectID, t geom.Tile) int

	FindBlocking(t geom.Tile) world.ObjectID
	FindSpot(t geom.Tile, radius int) geom.Tile
	Nearby(center geom.Tile, radius int) []world.ObjectID
	NearbyActors(center geom.Tile, radius int) []world.ObjectID
	ActorInfo(id world.ObjectID) (world.ActorInfo, bool)

	TryToHit(target, attacker world.ObjectID, attval int) bool
	Attacked(target, attacker world.ObjectID, weapon, ammo int, explosion bool) int

	Create(shape, frame int) world.ObjectID
	Move(id world.ObjectID, t geom.Tile)
	Remove(id world.ObjectID)
	AddToContainer(container, obj world.ObjectID) bool
	SetFlag(id world.ObjectID, f world.Flag)
	HasFlag(id world.ObjectID, f world.Flag) bool
	SetQuality(id world.ObjectID, q int)

	MainActor() world.ObjectID
	Inside() bool
	InDungeon() bool
}

// Window is the game view effects paint into. Coordinates are pixels.
type Window interface {
	Size() (w, h int)
	TileSize() int
	Scroll() geom.Tile
	TileToScreen(t geom.Tile) (x, y int)
	ShapeRect(sprite, x, y int) geom.Rect
	ClipToWin(r geom.Rect) geom.Rect
	AddDirty(r geom.Rect)
	SetAllDirty()
	SetPainted()
	PaintSprite(sprite, frame, x, y int)
	PaintText(glyphs []byte, x, y int)
	TextHeight() int
	Copy(sx, sy, w, h, dx, dy int)
	Show()
}

// SpriteMetrics gives sprite metrics.
type SpriteMetrics interface {
	Get(id int) *data.SpriteInfo
}

// Shapes gives the static info of object shapes.
type Shapes interface {
	Get(shape int) *data.ShapeInfo
	Weapon(shape int) *data.WeaponInfo
	AmmoFor(shape int) *data.AmmoInfo
}

// Audio plays positional sound effects.
type Audio interface {
	Play(id int, pos geom.Tile, volume int, loop bool) sfx.Channel
	Update(ch sfx.Channel, pos geom.Tile) sfx.Channel
	Stop(ch sfx.Channel)
}

// Palette switches the screen palette for weather.
type Palette interface {
	Lightning()
	Restore()
	SetOvercast(bool)
	SetFog(bool)
}

// Usecode runs script hooks attached to weapons.
type Usecode interface {
	CallUsecode(fn string, event string) bool
}

type nopAudio struct{}

func (nopAudio) Play(int, geom.Tile, int, bool) sfx.Channel { return sfx.NoChannel }
func (nopAudio) Update(sfx.Channel, geom.Tile) sfx.Channel  { return sfx.NoChannel }
func (nopAudio) Stop(sfx.Channel)                           {}

type nopPalette struct{}

func (nopPalette) Lightning()       {}
func (nopPalette) Restore()         {}
func (nopPalette) SetOvercast(bool) {}
func (nopPalette) SetFog(bool)      {}

type nopUsecode struct{}

func (nopUsecode) CallUsecode(string, string) bool { return false }
