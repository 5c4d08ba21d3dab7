package data

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Actor alignments. Homing spells chase anything at Evil or above.
const (
	AlignNeutral = iota
	AlignGood
	AlignEvil
	AlignChaotic
)

var alignNames = map[string]int{
	"neutral": AlignNeutral,
	"good":    AlignGood,
	"evil":    AlignEvil,
	"chaotic": AlignChaotic,
}

// ActorSpec marks a scenario object as an actor.
type ActorSpec struct {
	HP        int    `yaml:"hp"`
	Party     bool   `yaml:"party"`
	Alignment string `yaml:"alignment"`
	Dex       int    `yaml:"dex"`
	Str       int    `yaml:"str"`
	Combat    int    `yaml:"combat"`
	Armor     int    `yaml:"armor"`
}

// Align returns the numeric alignment (neutral when unset).
func (a *ActorSpec) Align() int {
	return alignNames[strings.ToLower(a.Alignment)]
}

// ObjectSpec places one object in the scenario world.
type ObjectSpec struct {
	Name      string     `yaml:"name"`
	Shape     int        `yaml:"shape"`
	Frame     int        `yaml:"frame"`
	At        []int      `yaml:"at"` // x, y[, z]
	In        string     `yaml:"in"` // container object name
	Temporary bool       `yaml:"temporary"`
	Actor     *ActorSpec `yaml:"actor"`
}

// Command schedules one effect at a time offset from scenario start.
type Command struct {
	At       int    `yaml:"at"` // ms
	Effect   string `yaml:"effect"`
	Attacker string `yaml:"attacker"`
	Target   string `yaml:"target"`
	Object   string `yaml:"object"`
	Egg      string `yaml:"egg"`
	Tile     []int  `yaml:"tile"`
	Text     string `yaml:"text"`

	Weapon    *int `yaml:"weapon"`
	Ammo      *int `yaml:"ammo"`
	Sprite    *int `yaml:"sprite"`
	Speed     *int `yaml:"speed"`
	AttackPts int  `yaml:"attack_pts"`

	Duration int  `yaml:"duration"` // game minutes
	Delay    int  `yaml:"delay"`    // ms
	Drops    int  `yaml:"drops"`
	Distance int  `yaml:"distance"`
	Length   int  `yaml:"length"`
	Lifespan int  `yaml:"lifespan"`
	Endless  bool `yaml:"endless"`
	DX       int  `yaml:"dx"`
	DY       int  `yaml:"dy"`
	Reps     *int `yaml:"reps"`
}

// IntOr dereferences p, or returns def when the field was left out.
func IntOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// Scenario is a scripted scene: a small world plus a timeline of effects.
type Scenario struct {
	Name      string       `yaml:"name"`
	MainActor string       `yaml:"main_actor"`
	Inside    bool         `yaml:"inside"`
	Dungeon   bool         `yaml:"dungeon"`
	Scroll    []int        `yaml:"scroll"`
	RunFor    int          `yaml:"run_for"` // ms, 0 = until the last effect ends
	Objects   []ObjectSpec `yaml:"objects"`
	Commands  []Command    `yaml:"commands"`
}

// EffectKinds lists every command name a scenario may use.
var EffectKinds = map[string]bool{
	"sprite": true, "explosion": true, "projectile": true, "homing": true,
	"text": true, "rain": true, "snow": true, "sparkle_drops": true,
	"lightning": true, "storm": true, "snowstorm": true, "sparkle": true,
	"fog": true, "clouds": true, "earthquake": true, "fire_field": true,
	"remove_weather": true, "remove_all": true, "pause": true, "resume": true,
	"kill": true,
}

// LoadScenario loads and validates a scenario file. Commands come back
// sorted by start time, keeping file order for equal times.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	sort.SliceStable(sc.Commands, func(i, j int) bool {
		return sc.Commands[i].At < sc.Commands[j].At
	})
	return &sc, nil
}

func (sc *Scenario) validate() error {
	names := make(map[string]bool, len(sc.Objects))
	for i, o := range sc.Objects {
		if o.Name == "" {
			return fmt.Errorf("object %d has no name", i)
		}
		if names[o.Name] {
			return fmt.Errorf("duplicate object %q", o.Name)
		}
		names[o.Name] = true
		if o.In == "" && len(o.At) < 2 {
			return fmt.Errorf("object %q needs at: [x, y] or in:", o.Name)
		}
		if o.Actor != nil && o.Actor.Alignment != "" {
			if _, ok := alignNames[strings.ToLower(o.Actor.Alignment)]; !ok {
				return fmt.Errorf("object %q: unknown alignment %q", o.Name, o.Actor.Alignment)
			}
		}
	}
	for _, o := range sc.Objects {
		if o.In != "" && !names[o.In] {
			return fmt.Errorf("object %q is in unknown container %q", o.Name, o.In)
		}
	}
	if sc.MainActor != "" && !names[sc.MainActor] {
		return fmt.Errorf("unknown main_actor %q", sc.MainActor)
	}
	for i, c := range sc.Commands {
		if !EffectKinds[c.Effect] {
			return fmt.Errorf("command %d: unknown effect %q", i, c.Effect)
		}
		if c.At < 0 {
			return fmt.Errorf("command %d: negative start time", i)
		}
		for _, ref := range []string{c.Attacker, c.Target, c.Object, c.Egg} {
			if ref != "" && !names[ref] {
				return fmt.Errorf("command %d (%s): unknown object %q", i, c.Effect, ref)
			}
		}
		if c.Tile != nil && len(c.Tile) < 2 {
			return fmt.Errorf("command %d (%s): tile needs x, y", i, c.Effect)
		}
	}
	return nil
}
