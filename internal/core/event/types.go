package event

import (
	"github.com/isorpg/fxengine/internal/core/ecs"
	"github.com/isorpg/fxengine/internal/geom"
)

// Effect lifecycle and combat outcome events. Effects emit them from inside
// time queue handlers; the journal and the scenario summary consume them.

type EffectAdded struct {
	Kind    string
	Weather int
	At      uint64
}

type EffectRemoved struct {
	Kind string
	At   uint64
}

type ProjectileHit struct {
	Attacker ecs.EntityID
	Target   ecs.EntityID
	Weapon   int
	Ammo     int
	Tile     geom.Tile
	At       uint64
}

type ProjectileMissed struct {
	Attacker ecs.EntityID
	Weapon   int
	Tile     geom.Tile
	At       uint64
}

type Exploded struct {
	Shape   int
	Tile    geom.Tile
	Victims int
	At      uint64
}

type AmmoDropped struct {
	Ammo   int
	Object ecs.EntityID
	Tile   geom.Tile
	At     uint64
}

type WeatherChanged struct {
	Code int
	At   uint64
}
