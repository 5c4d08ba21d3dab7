package fx

import "github.com/isorpg/fxengine/internal/geom"

// orchestrator is a weather effect that spawns its parts when added and
// afterwards only tracks its own start and stop.
type orchestrator struct {
	weather
	started  bool
	children []Effect
}

// Children returns the effects spawned when the orchestrator was added.
func (o *orchestrator) Children() []Effect { return o.children }

func (o *orchestrator) spawn(m *Manager, e Effect) {
	o.children = append(o.children, e)
	m.AddEffect(e)
}

// step handles the two orchestrator events. It returns true on the first.
func (o *orchestrator) step(m *Manager, self Effect, udata uintptr) bool {
	if !o.started {
		o.started = true
		m.queue.Add(o.stop, self, udata)
		return true
	}
	m.RemoveEffect(self)
	return false
}

// childDelay returns a start delay for a part: the parent's own delay plus
// jitter in [lo, lo+spread).
func (o *orchestrator) childDelay(m *Manager, lo, spread int) int {
	return o.delay + lo + m.randn(spread)
}

// Storm brings clouds, gradual rain and lightning.
type Storm struct{ orchestrator }

func NewStorm(duration, delay int, egg geom.Tile) *Storm {
	return &Storm{orchestrator{weather: newWeather(WeatherStorm, duration, delay, egg)}}
}

func (s *Storm) Kind() string { return "storm" }

func (s *Storm) start(m *Manager, now Ticks) {
	s.begin(m, now, s)
	s.spawn(m, NewClouds(s.duration+1, s.childDelay(m, 20, 500), geom.InvalidTile, WeatherNone))
	rainDelay := s.childDelay(m, 20, 1000)
	s.spawn(m, NewRain(s.duration+2, rainDelay, 0, geom.InvalidTile))
	s.spawn(m, NewLightning(s.duration-2, rainDelay+m.randn(500), false))
}

func (s *Storm) HandleEvent(m *Manager, _ Ticks, udata uintptr) { s.step(m, s, udata) }

// Snowstorm brings clouds and gradual snow.
type Snowstorm struct{ orchestrator }

func NewSnowstorm(duration, delay int, egg geom.Tile) *Snowstorm {
	return &Snowstorm{orchestrator{weather: newWeather(WeatherSnow, duration, delay, egg)}}
}

func (s *Snowstorm) Kind() string { return "snowstorm" }

func (s *Snowstorm) start(m *Manager, now Ticks) {
	s.begin(m, now, s)
	s.spawn(m, NewClouds(s.duration+1, s.childDelay(m, 20, 500), geom.InvalidTile, WeatherNone))
	s.spawn(m, NewSnow(s.duration+2, s.childDelay(m, 20, 1000), 0, geom.InvalidTile))
}

func (s *Snowstorm) HandleEvent(m *Manager, _ Ticks, udata uintptr) { s.step(m, s, udata) }

// SparkleStorm is an anti-magic storm of sparkles that also shows indoors.
type SparkleStorm struct{ orchestrator }

func NewSparkleStorm(duration, delay int, egg geom.Tile) *SparkleStorm {
	return &SparkleStorm{orchestrator{weather: newWeather(WeatherSparkle, duration, delay, egg)}}
}

func (s *SparkleStorm) Kind() string { return "sparkle" }

func (s *SparkleStorm) start(m *Manager, now Ticks) {
	s.begin(m, now, s)
	s.spawn(m, NewDrops(SparkleDrop, s.duration, s.childDelay(m, 1, 20), MaxDrops/6, WeatherSparkle, s.egg))
}

func (s *SparkleStorm) HandleEvent(m *Manager, _ Ticks, udata uintptr) { s.step(m, s, udata) }

// Fog switches the fog palette on when it starts and adds sparkles.
type Fog struct{ orchestrator }

func NewFog(duration, delay int, egg geom.Tile) *Fog {
	return &Fog{orchestrator{weather: newWeather(WeatherFog, duration, delay, egg)}}
}

func (f *Fog) Kind() string { return "fog" }

func (f *Fog) start(m *Manager, now Ticks) {
	f.begin(m, now, f)
	f.spawn(m, NewDrops(SparkleDrop, f.duration, f.childDelay(m, 250, 1000), MaxDrops/2, WeatherNone, geom.InvalidTile))
}

func (f *Fog) HandleEvent(m *Manager, _ Ticks, udata uintptr) {
	if f.step(m, f, udata) {
		m.palette.SetFog(true)
	}
}

func (f *Fog) release(m *Manager) { m.palette.SetFog(false) }
