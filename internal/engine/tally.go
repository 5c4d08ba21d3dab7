package engine

import (
	"maps"
	"slices"

	"github.com/isorpg/fxengine/internal/core/event"
)

// Tally counts combat outcomes and weather changes seen on the bus.
type Tally struct {
	Hits     int
	Misses   int
	Blasts   int
	Victims  int
	Drops    int
	Weather  []int
	Finished map[string]int
}

func NewTally(bus *event.Bus) *Tally {
	t := &Tally{Finished: map[string]int{}}
	event.Subscribe(bus, func(event.ProjectileHit) { t.Hits++ })
	event.Subscribe(bus, func(event.ProjectileMissed) { t.Misses++ })
	event.Subscribe(bus, func(e event.Exploded) {
		t.Blasts++
		t.Victims += e.Victims
	})
	event.Subscribe(bus, func(event.AmmoDropped) { t.Drops++ })
	event.Subscribe(bus, func(e event.WeatherChanged) { t.Weather = append(t.Weather, e.Code) })
	event.Subscribe(bus, func(e event.EffectRemoved) { t.Finished[e.Kind]++ })
	return t
}

// Kinds returns the effect kinds that finished, sorted.
func (t *Tally) Kinds() []string {
	return slices.Sorted(maps.Keys(t.Finished))
}
