package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/isorpg/fxengine/internal/audio"
	"github.com/isorpg/fxengine/internal/config"
	"github.com/isorpg/fxengine/internal/engine"
	"github.com/isorpg/fxengine/internal/geom"
	"github.com/isorpg/fxengine/internal/persist"
	"github.com/isorpg/fxengine/internal/render"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/width"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(scenario string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              fxengine  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      isometric effects · time queue       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mscenario:\033[0m %s\n\n", scenario)
}

// displayWidth counts terminal columns; wide and fullwidth runes take two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func printSection(title string) {
	lineLen := max(46-displayWidth(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-displayWidth(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/fxengine.toml"
	if p := os.Getenv("FXENGINE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	warns := cfg.Validate()

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	for _, w := range warns {
		log.Warn("config", zap.String("fix", w))
	}

	interactive := !cfg.Screen.Headless
	if interactive {
		// The terminal belongs to the canvas from here on.
		log = log.WithOptions(zap.IncreaseLevel(zapcore.ErrorLevel))
	} else {
		printBanner(cfg.Data.Scenario)
	}

	// 3. Optional effect journal
	opts := engine.Options{}
	var db *persist.DB
	if cfg.Journal.Enabled {
		if !interactive {
			printSection("journal")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err = persist.NewDB(ctx, cfg.Journal, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		if err := persist.RunMigrations(ctx, db); err != nil {
			cancel()
			return fmt.Errorf("migrations: %w", err)
		}
		cancel()
		runID := fmt.Sprintf("run-%d", cfg.Engine.StartTime)
		opts.Journal = persist.NewJournalRepo(db, runID)
		if !interactive {
			printOK("PostgreSQL journal ready (" + runID + ")")
			fmt.Println()
		}
	}

	// 4. Audio
	var mixer *audio.Mixer
	if cfg.Audio.Enabled {
		mixer = audio.NewMixer(cfg.Audio, log.Named("audio"))
		if err := mixer.Start(); err != nil {
			log.Warn("audio device unavailable, running silent", zap.Error(err))
		}
		defer mixer.Close()
		opts.Audio = mixer
	}

	// 5. Screen
	quit := make(chan struct{})
	if interactive {
		canvas, err := render.NewTermCanvas()
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		defer canvas.Close()
		go canvas.Listen()
		opts.Canvas = canvas
		opts.Keys = canvas.Keys()
		var once sync.Once
		opts.Quit = func() { once.Do(func() { close(quit) }) }
	}

	// 6. Boot the scene
	eng, err := engine.New(cfg, log, opts)
	if err != nil {
		return err
	}
	if mixer != nil {
		mixer.SetListener(func() geom.Tile { return eng.World.Tile(eng.World.MainActor()) })
	}

	if !interactive {
		printSection("data")
		printStat("shapes", eng.Shapes.Count())
		printStat("sprites", eng.Sprites.Count())
		printStat("scenario objects", eng.World.Count())
		printStat("scenario commands", len(eng.Scenario.Commands))
		printOK("lua rules loaded")
		fmt.Println()
	}

	// 7. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Engine.TickRate)
	defer ticker.Stop()

	if !interactive {
		printSection("running")
		printReady(fmt.Sprintf("game loop started (tick: %s, seed: %d)", cfg.Engine.TickRate, eng.Seed))
		fmt.Println()
	}

	for {
		select {
		case <-ticker.C:
			eng.Tick(cfg.Engine.TickRate)
			if cfg.Engine.MaxTicks > 0 && eng.Ticks() >= uint64(cfg.Engine.MaxTicks) {
				log.Info("tick limit reached", zap.Uint64("ticks", eng.Ticks()))
				return finish(eng, log)
			}
			if !interactive && eng.Finished() {
				log.Info("scenario finished", zap.Uint64("ticks", eng.Ticks()))
				return finish(eng, log)
			}
		case <-quit:
			return finish(eng, log)
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			return finish(eng, log)
		}
	}
}

// finish drains the last frame and logs the run summary.
func finish(eng *engine.Engine, log *zap.Logger) error {
	eng.Close()
	stats := eng.FX.Stats()
	fields := []zap.Field{
		zap.Uint64("ticks", eng.Ticks()),
		zap.Uint64("fired", stats.Fired),
		zap.Int("hits", eng.Tally.Hits),
		zap.Int("misses", eng.Tally.Misses),
		zap.Int("explosions", eng.Tally.Blasts),
		zap.Int("failed_commands", eng.Director.Failed()),
	}
	if eng.Journal != nil {
		fields = append(fields, zap.Int("journal_written", eng.Journal.Written()), zap.Int("journal_dropped", eng.Journal.Dropped()))
	}
	log.Info("engine stopped", fields...)
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
