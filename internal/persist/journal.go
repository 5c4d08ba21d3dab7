package persist

import (
	"context"
	"fmt"
)

// JournalEntry is one recorded effect event.
type JournalEntry struct {
	Tick   uint64
	Event  string // "added", "removed", "hit", "missed", "exploded", "dropped", "weather"
	Effect string // effect kind, empty for combat events
	Shape  int    // weapon, ammo or exploding shape; -1 when not applicable
	X, Y   int
	Z      int
	Amount int // victims, weather code, etc.
}

type JournalRepo struct {
	db    *DB
	runID string
}

// NewJournalRepo writes entries tagged with runID so several runs can share
// one table.
func NewJournalRepo(db *DB, runID string) *JournalRepo {
	return &JournalRepo{db: db, runID: runID}
}

// WriteBatch writes entries in a single transaction.
func (r *JournalRepo) WriteBatch(ctx context.Context, entries []JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO effect_journal (run_id, tick, event, effect, shape, tile_x, tile_y, tile_z, amount)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			r.runID, int64(e.Tick), e.Event, e.Effect, e.Shape, e.X, e.Y, e.Z, e.Amount,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// CountByEvent returns how many entries of each event this run recorded.
func (r *JournalRepo) CountByEvent(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT event, COUNT(*) FROM effect_journal WHERE run_id = $1 GROUP BY event`, r.runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var ev string
		var n int
		if err := rows.Scan(&ev, &n); err != nil {
			return nil, err
		}
		out[ev] = n
	}
	return out, rows.Err()
}
