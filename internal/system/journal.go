package system

import (
	"context"
	"time"

	"github.com/isorpg/fxengine/internal/core/event"
	coresys "github.com/isorpg/fxengine/internal/core/system"
	"github.com/isorpg/fxengine/internal/geom"
	"github.com/isorpg/fxengine/internal/persist"
	"go.uber.org/zap"
)

// JournalWriter stores a batch of journal entries atomically. The slice is
// reused once WriteBatch returns.
type JournalWriter interface {
	WriteBatch(ctx context.Context, entries []persist.JournalEntry) error
}

// JournalSystem records effect events from the bus and writes them in
// batches every flush interval. Phase 5 (Persist).
type JournalSystem struct {
	writer   JournalWriter
	interval time.Duration
	log      *zap.Logger

	pending []persist.JournalEntry
	acc     time.Duration
	written int
	dropped int
}

func NewJournalSystem(bus *event.Bus, writer JournalWriter, interval time.Duration, log *zap.Logger) *JournalSystem {
	s := &JournalSystem{writer: writer, interval: interval, log: log}
	event.Subscribe(bus, func(e event.EffectAdded) {
		s.record(persist.JournalEntry{Tick: e.At, Event: "added", Effect: e.Kind, Shape: -1, Amount: e.Weather})
	})
	event.Subscribe(bus, func(e event.EffectRemoved) {
		s.record(persist.JournalEntry{Tick: e.At, Event: "removed", Effect: e.Kind, Shape: -1})
	})
	event.Subscribe(bus, func(e event.ProjectileHit) {
		s.record(at(persist.JournalEntry{Tick: e.At, Event: "hit", Shape: e.Weapon}, e.Tile))
	})
	event.Subscribe(bus, func(e event.ProjectileMissed) {
		s.record(at(persist.JournalEntry{Tick: e.At, Event: "missed", Shape: e.Weapon}, e.Tile))
	})
	event.Subscribe(bus, func(e event.Exploded) {
		s.record(at(persist.JournalEntry{Tick: e.At, Event: "exploded", Shape: e.Shape, Amount: e.Victims}, e.Tile))
	})
	event.Subscribe(bus, func(e event.AmmoDropped) {
		s.record(at(persist.JournalEntry{Tick: e.At, Event: "dropped", Shape: e.Ammo}, e.Tile))
	})
	event.Subscribe(bus, func(e event.WeatherChanged) {
		s.record(persist.JournalEntry{Tick: e.At, Event: "weather", Shape: -1, Amount: e.Code})
	})
	return s
}

func at(e persist.JournalEntry, t geom.Tile) persist.JournalEntry {
	e.X, e.Y, e.Z = t.X, t.Y, t.Z
	return e
}

func (s *JournalSystem) record(e persist.JournalEntry) {
	s.pending = append(s.pending, e)
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *JournalSystem) Update(dt time.Duration) {
	s.acc += dt
	if s.acc < s.interval {
		return
	}
	s.acc = 0
	s.Flush()
}

// Flush writes everything recorded so far. Called on shutdown as well.
// A failed batch is logged and discarded; the journal is diagnostic only.
func (s *JournalSystem) Flush() {
	if len(s.pending) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.writer.WriteBatch(ctx, s.pending); err != nil {
		s.dropped += len(s.pending)
		s.log.Error("journal write failed", zap.Int("entries", len(s.pending)), zap.Error(err))
	} else {
		s.written += len(s.pending)
	}
	s.pending = s.pending[:0]
}

// Written returns how many entries reached the store.
func (s *JournalSystem) Written() int { return s.written }

// Dropped returns how many entries were lost to write errors.
func (s *JournalSystem) Dropped() int { return s.dropped }
