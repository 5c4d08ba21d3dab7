package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "fxengine.toml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadOverridesDefaults(t *testing.T) {
	p := writeConfig(t, `
[engine]
tick_rate = "20ms"
std_delay = 80
seed = 7

[screen]
headless = true

[journal]
enabled = true
flush_interval = "500ms"
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.TickRate != 20*time.Millisecond || cfg.Engine.StdDelay != 80 || cfg.Engine.Seed != 7 {
		t.Fatalf("engine = %+v", cfg.Engine)
	}
	if cfg.Engine.TicksPerMinute != 25 {
		t.Fatalf("default ticks_per_minute lost: %d", cfg.Engine.TicksPerMinute)
	}
	if !cfg.Screen.Headless || cfg.Screen.Width != 320 {
		t.Fatalf("screen = %+v", cfg.Screen)
	}
	if !cfg.Journal.Enabled || cfg.Journal.FlushInterval != 500*time.Millisecond {
		t.Fatalf("journal = %+v", cfg.Journal)
	}
	if cfg.Engine.StartTime == 0 {
		t.Fatal("StartTime not stamped")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	p := writeConfig(t, "[engine\nstd_delay = ")
	if _, err := Load(p); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateClamps(t *testing.T) {
	cfg := Default()
	cfg.Engine.StdDelay = 0
	cfg.Screen.TileSize = -1
	cfg.Audio.MasterVolume = 3

	warns := cfg.Validate()
	if len(warns) != 3 {
		t.Fatalf("warnings = %v", warns)
	}
	if cfg.Engine.StdDelay != 100 || cfg.Screen.TileSize != 8 || cfg.Audio.MasterVolume != 0.8 {
		t.Fatalf("not clamped: %+v %+v %+v", cfg.Engine, cfg.Screen, cfg.Audio)
	}
	if again := cfg.Validate(); len(again) != 0 {
		t.Fatalf("second Validate warned: %v", again)
	}
}
