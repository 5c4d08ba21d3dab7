package fx

import (
	"testing"

	"github.com/isorpg/fxengine/internal/audio/sfx"
	"github.com/isorpg/fxengine/internal/geom"
)

type delayed interface{ Delay() int }

func TestStormSpawnsParts(t *testing.T) {
	h := newHarness(t, rules{})
	s := NewStorm(4, 0, geom.InvalidTile)
	h.m.AddEffect(s)

	kinds := map[string]int{}
	for _, c := range s.Children() {
		kinds[c.Kind()]++
		d := c.(delayed).Delay()
		if d <= 0 || d >= h.m.minutes(4) {
			t.Errorf("%s delay %d out of range", c.Kind(), d)
		}
	}
	if len(s.Children()) != 3 || kinds["clouds"] != 1 || kinds["rain"] != 1 || kinds["lightning"] != 1 {
		t.Fatalf("children = %v", kinds)
	}
	if h.m.Len() != 4 || h.m.Weather() != WeatherStorm {
		t.Fatalf("Len %d Weather %d", h.m.Len(), h.m.Weather())
	}

	h.run(30000)
	if h.m.Len() != 0 {
		t.Fatalf("%d effects left after the storm", h.m.Len())
	}
	if h.pal.overcast || h.pal.flashing {
		t.Fatalf("palette left at %+v", h.pal)
	}
}

func TestStormChildrenKeepParentDelay(t *testing.T) {
	h := newHarness(t, rules{})
	s := NewSnowstorm(4, 3000, geom.InvalidTile)
	h.m.AddEffect(s)
	for _, c := range s.Children() {
		if d := c.(delayed).Delay(); d < 3000 {
			t.Errorf("%s starts at %d before its parent", c.Kind(), d)
		}
	}
	if countKind(h.m, "snow") != 1 || countKind(h.m, "clouds") != 1 {
		t.Fatal("snowstorm parts missing")
	}
}

func TestSparkleStormKeepsEgg(t *testing.T) {
	h := newHarness(t, rules{})
	egg := geom.Tile{X: 40, Y: 40}
	s := NewSparkleStorm(2, 0, egg)
	h.m.AddEffect(s)
	d, ok := s.Children()[0].(*Drops)
	if !ok || d.Code() != WeatherSparkle || d.Egg() != egg || d.Count() != MaxDrops/6 {
		t.Fatalf("sparkles = %+v", s.Children()[0])
	}
}

func TestFogPalette(t *testing.T) {
	h := newHarness(t, rules{})
	f := NewFog(2, 0, geom.InvalidTile)
	h.m.AddEffect(f)
	if h.pal.fog {
		t.Fatal("fog set before the first event")
	}
	h.run(10)
	if !h.pal.fog {
		t.Fatal("fog not set")
	}
	h.run(10000)
	if h.pal.fog || h.m.Len() != 0 {
		t.Fatal("fog did not clear")
	}
}

func TestLightningSingleFlash(t *testing.T) {
	h := newHarness(t, rules{})
	a := NewLightning(10, 0, false)
	b := NewLightning(10, 0, false)
	h.m.AddEffect(a)
	h.m.AddEffect(b)

	h.run(10)
	if h.pal.flashes != 1 || a.Flashes()+b.Flashes() != 1 {
		t.Fatalf("flashes %d (%d+%d)", h.pal.flashes, a.Flashes(), b.Flashes())
	}
	if h.audio.count(sfx.Thunder) != 1 {
		t.Fatal("thunder not played once")
	}
	for h.now < 30000 {
		h.run(h.now + 10)
		if a.flashing && b.flashing {
			t.Fatalf("both flashing at %d", h.now)
		}
	}
	if h.m.Len() != 0 || h.pal.flashing {
		t.Fatal("lightning left running")
	}
}

func TestLightningInDungeon(t *testing.T) {
	h := newHarness(t, rules{})
	h.world.SetDungeon(true)
	natural := NewLightning(1, 0, false)
	h.m.AddEffect(natural)
	h.run(3000)
	if natural.Flashes() != 0 {
		t.Fatal("natural lightning flashed underground")
	}
	if h.registered(natural) {
		t.Fatal("natural lightning never ended underground")
	}

	h.m.UsecodeLightning(1)
	h.run(3020)
	if h.pal.flashes == 0 {
		t.Fatal("script lightning did not flash underground")
	}
}

func TestLightningReleaseRestores(t *testing.T) {
	h := newHarness(t, rules{})
	l := NewLightning(5, 0, false)
	h.m.AddEffect(l)
	h.run(10)
	if !h.pal.flashing {
		t.Fatal("no flash")
	}
	h.m.RemoveEffect(l)
	if h.pal.flashing || h.m.flashing {
		t.Fatal("flash left on after removal")
	}
}

func TestGradualRain(t *testing.T) {
	h := newHarness(t, rules{})
	r := NewRain(2, 0, 0, geom.InvalidTile)
	h.m.AddEffect(r)
	peak := 0
	for h.now < 4950 {
		h.run(h.now + 10)
		if r.Count() > MaxDrops {
			t.Fatalf("count %d above capacity", r.Count())
		}
		peak = max(peak, r.Count())
	}
	if peak == 0 {
		t.Fatal("rain never started")
	}
	if r.Count() >= peak {
		t.Fatalf("rain did not thin out: %d of peak %d", r.Count(), peak)
	}
	h.run(5100)
	if h.registered(r) {
		t.Fatal("rain outlived its duration")
	}
}

func TestDropsCapacity(t *testing.T) {
	d := NewDrops(Snowflake, 1, 0, 5000, WeatherNone, geom.InvalidTile)
	if d.Count() != MaxDrops {
		t.Fatalf("Count = %d", d.Count())
	}
}

func TestDropsIndoors(t *testing.T) {
	cases := []struct {
		name string
		kind ParticleKind
		code int
		want bool
	}{
		{"rain", Raindrop, WeatherNone, false},
		{"snow", Snowflake, WeatherSnow, false},
		{"sparkle", SparkleDrop, WeatherSparkle, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, rules{})
			h.world.SetInside(true)
			h.m.AddEffect(NewDrops(tc.kind, 5, 0, 50, tc.code, geom.InvalidTile))
			h.run(100)
			h.m.Paint()
			if got := len(h.win.paints) > 0; got != tc.want {
				t.Fatalf("painted %d drops indoors", len(h.win.paints))
			}
		})
	}
}

func TestDropsAnimateWithinFrames(t *testing.T) {
	h := newHarness(t, rules{})
	d := NewDrops(SparkleDrop, 5, 0, 30, WeatherNone, geom.InvalidTile)
	h.m.AddEffect(d)
	for i := 0; i < 20; i++ {
		h.run(h.now + 100)
		for j := 0; j < d.Count(); j++ {
			if f := d.drops[j].frame; f < SparkleDrop.First || f > SparkleDrop.Last {
				t.Fatalf("particle %d at frame %d", j, f)
			}
		}
	}
}

func TestClouds(t *testing.T) {
	h := newHarness(t, rules{})
	c := NewClouds(2, 0, geom.InvalidTile, WeatherNone)
	h.m.AddEffect(c)
	if !h.pal.overcast {
		t.Fatal("clouds did not darken the sky")
	}
	if c.Count() < 2 || c.Count() > 7 {
		t.Fatalf("count = %d", c.Count())
	}
	for _, w := range c.Wind() {
		if w == [2]int{} {
			t.Fatal("cloud without wind")
		}
	}
	h.run(20)
	h.m.Paint()
	if len(h.win.paints) == 0 {
		t.Fatal("no clouds painted outdoors")
	}
	h.win.paints = nil
	h.world.SetInside(true)
	h.m.Paint()
	if len(h.win.paints) != 0 {
		t.Fatal("clouds painted indoors")
	}

	h.run(6000)
	if h.registered(c) || h.pal.overcast {
		t.Fatal("clouds outlived their duration")
	}
}

func TestClearSkyClouds(t *testing.T) {
	h := newHarness(t, rules{})
	c := NewClouds(2, 0, geom.InvalidTile, WeatherClearSky)
	h.m.AddEffect(c)
	if h.pal.overcast {
		t.Fatal("clear sky turned overcast")
	}
	if c.Count() < 2 || c.Count() > 6 {
		t.Fatalf("count = %d", c.Count())
	}
	if h.m.Weather() != WeatherClearSky {
		t.Fatalf("Weather = %d", h.m.Weather())
	}
}
