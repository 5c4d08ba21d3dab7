// fxscenario loads a scenario with the engine's data tables and plays it
// headless, then prints a YAML summary of what happened.
//
// Usage:
//
//	go run ./cmd/fxscenario <command> [-config path] [-scenario path] [-ticks n] [-step ms] [-seed n] [-out path]
//
// Commands: check, run
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/isorpg/fxengine/internal/config"
	"github.com/isorpg/fxengine/internal/data"
	"github.com/isorpg/fxengine/internal/engine"
	"github.com/isorpg/fxengine/internal/world"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// summary is the YAML report of one run.
type summary struct {
	Scenario  string         `yaml:"scenario"`
	Seed      int64          `yaml:"seed"`
	Ticks     uint64         `yaml:"ticks"`
	ElapsedMS int            `yaml:"elapsed_ms"`
	Finished  bool           `yaml:"finished"`
	Fired     uint64         `yaml:"events_fired"`
	Added     map[string]int `yaml:"added"`
	Removed   map[string]int `yaml:"removed"`
	Running   []string       `yaml:"still_running,omitempty"`
	Hits      int            `yaml:"hits"`
	Misses    int            `yaml:"misses"`
	Blasts    int            `yaml:"explosions"`
	Victims   int            `yaml:"blast_victims"`
	Drops     int            `yaml:"ammo_dropped"`
	Weather   []int          `yaml:"weather_changes,omitempty"`
	Failed    int            `yaml:"failed_commands"`
	Frames    uint64         `yaml:"frames"`
	Actors    []actorReport  `yaml:"actors"`
}

type actorReport struct {
	Name string `yaml:"name"`
	HP   int    `yaml:"hp"`
	Dead bool   `yaml:"dead,omitempty"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd := os.Args[1]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	cfgPath := fs.String("config", "", "engine config (default: built-in)")
	scenario := fs.String("scenario", "", "scenario file (default: from config)")
	ticks := fs.Int("ticks", 6000, "maximum ticks to run")
	step := fs.Int("step", 10, "milliseconds per tick")
	seed := fs.Int64("seed", 1, "random seed, 0 = clock")
	out := fs.String("out", "", "write the summary here instead of stdout")
	_ = fs.Parse(os.Args[2:])

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *scenario != "" {
		cfg.Data.Scenario = *scenario
	}
	cfg.Engine.Seed = *seed
	cfg.Screen.Headless = true

	switch cmd {
	case "check":
		err = check(cfg)
	case "run":
		err = play(cfg, *ticks, time.Duration(*step)*time.Millisecond, *out)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: fxscenario <check|run> [-config path] [-scenario path] [-ticks n] [-step ms] [-seed n] [-out path]")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	for _, w := range cfg.Validate() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return cfg, nil
}

// check validates the data files without running anything.
func check(cfg *config.Config) error {
	shapes, err := data.LoadShapeTable(cfg.Data.Shapes, zap.NewNop())
	if err != nil {
		return err
	}
	sprites, err := data.LoadSpriteTable(cfg.Data.Sprites)
	if err != nil {
		return err
	}
	sc, err := data.LoadScenario(cfg.Data.Scenario)
	if err != nil {
		return err
	}
	unknown := 0
	for _, o := range sc.Objects {
		if shapes.Get(o.Shape) == nil {
			fmt.Printf("warning: object %q uses shape %d with no shape info\n", o.Name, o.Shape)
			unknown++
		}
	}
	for _, c := range sc.Commands {
		if c.Sprite != nil && sprites.Get(*c.Sprite) == nil {
			fmt.Printf("warning: %s at %d ms uses unknown sprite %d\n", c.Effect, c.At, *c.Sprite)
			unknown++
		}
	}
	fmt.Printf("%s: %d shapes, %d sprites, %d objects, %d commands, %d warnings\n",
		sc.Name, shapes.Count(), sprites.Count(), len(sc.Objects), len(sc.Commands), unknown)
	return nil
}

func play(cfg *config.Config, limit int, step time.Duration, out string) error {
	log, err := zap.NewDevelopment(zap.IncreaseLevel(zap.WarnLevel))
	if err != nil {
		return err
	}
	defer log.Sync()

	eng, err := engine.New(cfg, log, engine.Options{})
	if err != nil {
		return err
	}
	for i := 0; i < limit && !eng.Finished(); i++ {
		eng.Tick(step)
	}
	finished := eng.Finished()
	running := make([]string, 0, eng.FX.Len())
	for _, e := range eng.FX.Effects() {
		running = append(running, e.Kind())
	}
	eng.Close()

	stats := eng.FX.Stats()
	rep := summary{
		Scenario:  eng.Scenario.Name,
		Seed:      eng.Seed,
		Ticks:     eng.Ticks(),
		ElapsedMS: int(eng.Clock.Now()),
		Finished:  finished,
		Fired:     stats.Fired,
		Added:     stats.Added,
		Removed:   stats.Removed,
		Running:   running,
		Hits:      eng.Tally.Hits,
		Misses:    eng.Tally.Misses,
		Blasts:    eng.Tally.Blasts,
		Victims:   eng.Tally.Victims,
		Drops:     eng.Tally.Drops,
		Weather:   eng.Tally.Weather,
		Failed:    eng.Director.Failed(),
		Frames:    eng.Window.Frames(),
	}
	eng.World.EachActor(func(_ world.ObjectID, o *world.Object, a *world.Actor) {
		rep.Actors = append(rep.Actors, actorReport{Name: o.Name, HP: a.HP, Dead: a.Dead})
	})
	raw, err := yaml.Marshal(&rep)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if out == "" {
		_, err = os.Stdout.Write(raw)
		return err
	}
	if err := os.WriteFile(out, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Printf("Wrote summary of %s to %s\n", rep.Scenario, out)
	return nil
}
