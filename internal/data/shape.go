package data

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DropType controls whether spent ammo is left on the ground.
type DropType int

const (
	DropNormal DropType = iota // drop only on a miss
	DropNever
	DropAlways
)

func (d DropType) String() string {
	switch d {
	case DropNever:
		return "never"
	case DropAlways:
		return "always"
	}
	return "normal"
}

func parseDropType(s string) (DropType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return DropNormal, true
	case "never":
		return DropNever, true
	case "always":
		return DropAlways, true
	}
	return DropNormal, false
}

// Ammo consumption codes carried by WeaponInfo.Ammo besides real ammo shapes.
const (
	AmmoNone    = -1 // weapon uses no ammunition
	AmmoCharges = -2 // consumes charges (wands)
	AmmoThrown  = -3 // the weapon itself is thrown
)

// WeaponInfo describes a missile weapon.
type WeaponInfo struct {
	Ammo         int    `yaml:"ammo"`          // ammo shape consumed, or one of the Ammo* codes
	Projectile   int    `yaml:"projectile"`    // sprite shown in flight, -1 for none
	MissileSpeed int    `yaml:"missile_speed"` // tiles per half-frame, 0 = default
	Rotation     int    `yaml:"rotation"`      // frames advanced per tick
	Damage       int    `yaml:"damage"`
	HitSfx       int    `yaml:"hit_sfx"`
	Returns      bool   `yaml:"returns"`
	NoBlocking   bool   `yaml:"no_blocking"`
	AutoHit      bool   `yaml:"autohit"`
	Explodes     bool   `yaml:"explodes"`
	Usecode      string `yaml:"usecode"` // lua function run when nothing is hit
}

// AmmoInfo describes a projectile shape.
type AmmoInfo struct {
	Family     int      `yaml:"family"`
	Damage     int      `yaml:"damage"`
	DropName   string   `yaml:"drop_type"`
	Drop       DropType `yaml:"-"`
	Returns    bool     `yaml:"returns"`
	NoBlocking bool     `yaml:"no_blocking"`
	AutoHit    bool     `yaml:"autohit"`
	Explodes   bool     `yaml:"explodes"`
	Homing     bool     `yaml:"homing"`
}

// ShapeInfo is the static description of one object shape.
type ShapeInfo struct {
	Shape           int         `yaml:"shape"`
	Name            string      `yaml:"name"`
	XTiles          int         `yaml:"xtiles"`
	YTiles          int         `yaml:"ytiles"`
	Height          int         `yaml:"height"` // 3D height in lifts
	Solid           bool        `yaml:"solid"`
	Explosive       bool        `yaml:"explosive"`
	Container       bool        `yaml:"container"`
	HP              int         `yaml:"hp"` // breakable objects, 0 = indestructible
	ExplosionSprite int         `yaml:"explosion_sprite"`
	ExplosionSfx    int         `yaml:"explosion_sfx"`
	Weapon          *WeaponInfo `yaml:"weapon"`
	Ammo            *AmmoInfo   `yaml:"ammo"`
}

// ShapeTable provides lookup of shape info by shape number.
type ShapeTable struct {
	shapes map[int]*ShapeInfo
}

// LoadShapeTable loads shapes.yaml. Unknown drop types are logged and
// treated as normal; missing footprints default to one tile.
func LoadShapeTable(path string, log *zap.Logger) (*ShapeTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shape list: %w", err)
	}
	var entries []ShapeInfo
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse shape list: %w", err)
	}
	t := &ShapeTable{
		shapes: make(map[int]*ShapeInfo, len(entries)),
	}
	for i := range entries {
		e := &entries[i]
		if e.XTiles <= 0 {
			e.XTiles = 1
		}
		if e.YTiles <= 0 {
			e.YTiles = 1
		}
		if e.Height <= 0 {
			e.Height = 1
		}
		if e.Ammo != nil {
			dt, ok := parseDropType(e.Ammo.DropName)
			if !ok {
				log.Warn("unknown ammo drop type, using normal",
					zap.Int("shape", e.Shape), zap.String("drop_type", e.Ammo.DropName))
			}
			e.Ammo.Drop = dt
		}
		if _, dup := t.shapes[e.Shape]; dup {
			log.Warn("duplicate shape entry, last one wins", zap.Int("shape", e.Shape))
		}
		t.shapes[e.Shape] = e
	}
	return t, nil
}

// NewShapeTable builds a table from in-memory entries (tests, tools).
func NewShapeTable(entries ...ShapeInfo) *ShapeTable {
	t := &ShapeTable{shapes: make(map[int]*ShapeInfo, len(entries))}
	for i := range entries {
		e := entries[i]
		if e.XTiles <= 0 {
			e.XTiles = 1
		}
		if e.YTiles <= 0 {
			e.YTiles = 1
		}
		if e.Height <= 0 {
			e.Height = 1
		}
		t.shapes[e.Shape] = &e
	}
	return t
}

// Get returns the shape info, or nil if the shape is unknown.
func (t *ShapeTable) Get(shape int) *ShapeInfo {
	return t.shapes[shape]
}

// Weapon returns the weapon info of a shape, or nil.
func (t *ShapeTable) Weapon(shape int) *WeaponInfo {
	if s := t.shapes[shape]; s != nil {
		return s.Weapon
	}
	return nil
}

// AmmoFor returns the ammo info of a shape, or nil.
func (t *ShapeTable) AmmoFor(shape int) *AmmoInfo {
	if s := t.shapes[shape]; s != nil {
		return s.Ammo
	}
	return nil
}

// Count returns the total number of shapes loaded.
func (t *ShapeTable) Count() int {
	return len(t.shapes)
}
