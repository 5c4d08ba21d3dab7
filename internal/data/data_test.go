package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadShapeTable(t *testing.T) {
	p := writeFile(t, "shapes.yaml", `
- shape: 597
  name: bow
  weapon:
    ammo: 722
    projectile: 56
    missile_speed: 3
    damage: 4
- shape: 722
  name: arrows
  ammo:
    family: 722
    drop_type: always
- shape: 568
  name: magic bolt
  ammo:
    drop_type: sometimes
- shape: 704
  name: powder keg
  explosive: true
  height: 2
  explosion_sprite: 5
  explosion_sfx: 9
`)
	core, logs := observer.New(zap.WarnLevel)
	tab, err := LoadShapeTable(p, zap.New(core))
	if err != nil {
		t.Fatalf("LoadShapeTable: %v", err)
	}
	if tab.Count() != 4 {
		t.Fatalf("Count = %d", tab.Count())
	}
	if w := tab.Weapon(597); w == nil || w.Ammo != 722 || w.MissileSpeed != 3 {
		t.Fatalf("bow = %+v", w)
	}
	if a := tab.AmmoFor(722); a == nil || a.Drop != DropAlways {
		t.Fatalf("arrows = %+v", a)
	}
	if a := tab.AmmoFor(568); a == nil || a.Drop != DropNormal {
		t.Fatalf("unknown drop type not clamped: %+v", a)
	}
	if logs.FilterMessageSnippet("drop type").Len() != 1 {
		t.Fatalf("expected one drop type warning, got %d logs", logs.Len())
	}
	keg := tab.Get(704)
	if keg == nil || !keg.Explosive || keg.XTiles != 1 || keg.Height != 2 {
		t.Fatalf("keg = %+v", keg)
	}
	if tab.Get(1) != nil || tab.Weapon(722) != nil {
		t.Fatal("lookup of absent info returned data")
	}
}

func TestLoadShapeTableErrors(t *testing.T) {
	if _, err := LoadShapeTable(filepath.Join(t.TempDir(), "none.yaml"), zap.NewNop()); err == nil {
		t.Fatal("expected read error")
	}
	p := writeFile(t, "bad.yaml", "- shape: [oops")
	_, err := LoadShapeTable(p, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "parse shape list") {
		t.Fatalf("err = %v", err)
	}
}

func TestSpriteDefaults(t *testing.T) {
	p := writeFile(t, "sprites.yaml", `
- id: 5
  name: explosion
  frames: 12
  width: 40
  height: 40
- id: 2
  name: cloud
`)
	tab, err := LoadSpriteTable(p)
	if err != nil {
		t.Fatal(err)
	}
	ex := tab.Get(5)
	if ex.XLeft != 39 || ex.YAbove != 39 || ex.Glyph != "*" {
		t.Fatalf("explosion = %+v", ex)
	}
	if tab.Get(2).Frames != 1 {
		t.Fatal("frames not defaulted")
	}
}

func TestLoadScenario(t *testing.T) {
	p := writeFile(t, "scenario.yaml", `
name: ambush
main_actor: hero
objects:
  - name: hero
    shape: 721
    at: [10, 10]
    actor: {hp: 30, party: true}
  - name: orc
    shape: 400
    at: [18, 10]
    actor: {hp: 12, alignment: evil}
  - name: quiver
    shape: 800
    in: hero
commands:
  - at: 500
    effect: storm
    duration: 3
  - at: 0
    effect: projectile
    attacker: hero
    target: orc
    weapon: 597
    ammo: 722
`)
	sc, err := LoadScenario(p)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if sc.Commands[0].Effect != "projectile" || sc.Commands[1].Effect != "storm" {
		t.Fatalf("commands not sorted: %+v", sc.Commands)
	}
	if IntOr(sc.Commands[0].Sprite, -1) != -1 || IntOr(sc.Commands[0].Weapon, -1) != 597 {
		t.Fatal("optional ints wrong")
	}
	if sc.Objects[1].Actor.Align() != AlignEvil {
		t.Fatal("alignment not parsed")
	}
}

func TestScenarioValidation(t *testing.T) {
	cases := map[string]string{
		"unknown effect": "commands:\n  - effect: teleport\n",
		"unknown ref":    "objects:\n  - {name: a, at: [1, 1]}\ncommands:\n  - {effect: explosion, object: b}\n",
		"duplicate":      "objects:\n  - {name: a, at: [1, 1]}\n  - {name: a, at: [2, 2]}\n",
		"no position":    "objects:\n  - {name: a}\n",
		"bad alignment":  "objects:\n  - {name: a, at: [1, 1], actor: {alignment: sneaky}}\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadScenario(writeFile(t, "s.yaml", body)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
