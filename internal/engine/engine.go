// Package engine assembles the effects engine from configuration: data
// tables, the scenario world, the Lua rules, the effects manager and the
// per-frame systems. Both commands boot through it.
package engine

import (
	"fmt"
	"time"

	"github.com/isorpg/fxengine/internal/config"
	"github.com/isorpg/fxengine/internal/core/event"
	coresys "github.com/isorpg/fxengine/internal/core/system"
	"github.com/isorpg/fxengine/internal/data"
	"github.com/isorpg/fxengine/internal/fx"
	"github.com/isorpg/fxengine/internal/render"
	"github.com/isorpg/fxengine/internal/scripting"
	"github.com/isorpg/fxengine/internal/system"
	"github.com/isorpg/fxengine/internal/world"
	"go.uber.org/zap"
)

// Options carry the optional outer pieces. Zero values run headless, silent
// and without a journal.
type Options struct {
	Canvas  render.Canvas
	Keys    <-chan render.Key
	Audio   fx.Audio
	Journal system.JournalWriter
	Quit    func()
}

// Engine is a booted scene ready to tick.
type Engine struct {
	Config   *config.Config
	Shapes   *data.ShapeTable
	Sprites  *data.SpriteTable
	Scenario *data.Scenario
	World    *world.State
	Objects  map[string]world.ObjectID
	Window   *render.Window
	Bus      *event.Bus
	FX       *fx.Manager
	Lua      *scripting.Engine

	Runner   *coresys.Runner
	Director *system.DirectorSystem
	Clock    *system.TimeQueueSystem
	Events   *system.EventSystem
	Journal  *system.JournalSystem

	Tally *Tally
	Seed  int64

	ticks uint64
	log   *zap.Logger
}

// New loads everything named by cfg.Data and wires the systems.
func New(cfg *config.Config, log *zap.Logger, opts Options) (*Engine, error) {
	shapes, err := data.LoadShapeTable(cfg.Data.Shapes, log)
	if err != nil {
		return nil, fmt.Errorf("load shapes: %w", err)
	}
	sprites, err := data.LoadSpriteTable(cfg.Data.Sprites)
	if err != nil {
		return nil, fmt.Errorf("load sprites: %w", err)
	}
	sc, err := data.LoadScenario(cfg.Data.Scenario)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}

	seed := cfg.Engine.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	lua, err := scripting.NewEngine(cfg.Data.Scripts, seed, log)
	if err != nil {
		return nil, fmt.Errorf("lua engine: %w", err)
	}

	ws := world.NewState(shapes, lua, log)
	ids, err := ws.Populate(sc)
	if err != nil {
		lua.Close()
		return nil, fmt.Errorf("populate %s: %w", sc.Name, err)
	}

	palette := render.NewPalette()
	win := render.NewWindow(cfg.Screen.Width, cfg.Screen.Height, cfg.Screen.TileSize, sprites, palette, opts.Canvas, log)
	if len(sc.Scroll) >= 2 {
		win.SetScroll(world.TileOf(sc.Scroll))
	}

	bus := event.NewBus()
	m := fx.NewManager(fx.Deps{
		World:   ws,
		Window:  win,
		Sprites: sprites,
		Shapes:  shapes,
		Audio:   opts.Audio,
		Palette: palette,
		Usecode: lua,
		Bus:     bus,
		Log:     log.Named("fx"),
	}, fx.Options{
		StdDelay:       cfg.Engine.StdDelay,
		TicksPerMinute: cfg.Engine.TicksPerMinute,
		Seed:           seed,
	})
	lua.SetHost(m)

	e := &Engine{
		Config:   cfg,
		Shapes:   shapes,
		Sprites:  sprites,
		Scenario: sc,
		World:    ws,
		Objects:  ids,
		Window:   win,
		Bus:      bus,
		FX:       m,
		Lua:      lua,
		Runner:   coresys.NewRunner(),
		Tally:    NewTally(bus),
		Seed:     seed,
		log:      log,
	}

	// Same-phase systems keep registration order: the director issues
	// this frame's commands before the clock fires them.
	if opts.Keys != nil {
		quit := opts.Quit
		if quit == nil {
			quit = func() {}
		}
		e.Runner.Register(system.NewInputSystem(opts.Keys, m, win, quit, log))
	}
	e.Events = system.NewEventSystem(bus)
	e.Runner.Register(e.Events)
	e.Director = system.NewDirectorSystem(m, ws, win, shapes, ids, sc.Commands, log.Named("director"))
	e.Runner.Register(e.Director)
	e.Clock = system.NewTimeQueueSystem(m)
	e.Runner.Register(e.Clock)
	e.Runner.Register(system.NewTextSystem(m))
	e.Runner.Register(system.NewRenderSystem(win, m, ws, shapes))
	if opts.Journal != nil {
		e.Journal = system.NewJournalSystem(bus, opts.Journal, cfg.Journal.FlushInterval, log.Named("journal"))
		e.Runner.Register(e.Journal)
	}
	e.Runner.Register(system.NewCleanupSystem(ws.ECS()))

	win.SetAllDirty()
	return e, nil
}

// Tick runs one frame of dt.
func (e *Engine) Tick(dt time.Duration) {
	e.Runner.Tick(dt)
	e.ticks++
}

func (e *Engine) Ticks() uint64 { return e.ticks }

// Finished reports whether the scenario has played out: its run_for time
// has passed, or, without one, every command was issued and no effect or
// text is left.
func (e *Engine) Finished() bool {
	if e.Scenario.RunFor > 0 {
		return int(e.Clock.Now()) >= e.Scenario.RunFor
	}
	return e.Director.Done() && e.FX.Len() == 0 && len(e.FX.Texts()) == 0
}

// Close delivers the events of the last frame, flushes the journal and
// releases the Lua VM.
func (e *Engine) Close() {
	e.Runner.TickPhase(coresys.PhasePreUpdate, 0)
	if e.Journal != nil {
		e.Journal.Flush()
	}
	e.Lua.Close()
}
