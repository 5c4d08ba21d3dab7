package tqueue

import "container/heap"

// Ticks is the engine clock in milliseconds since start.
type Ticks uint64

// Handler is anything that can be scheduled. C is the context handed to the
// handler when it fires, so scheduled code never needs global state.
type Handler[C any] interface {
	HandleEvent(ctx C, now Ticks, udata uintptr)
}

// AlwaysRunner is implemented by handlers that must keep firing while the
// queue is paused (floating text).
type AlwaysRunner interface {
	Always() bool
}

type entry[C any] struct {
	due       Ticks
	seq       uint64
	target    Handler[C]
	udata     uintptr
	cancelled bool
	index     int
}

// entryHeap orders by due time, then by insertion sequence.
type entryHeap[C any] []*entry[C]

func (h entryHeap[C]) Len() int { return len(h) }
func (h entryHeap[C]) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}
func (h entryHeap[C]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *entryHeap[C]) Push(x any) {
	e := x.(*entry[C])
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *entryHeap[C]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Queue is a priority schedule of (due, handler, udata) entries.
// Single-goroutine use only (game loop). Handlers may Add/Remove freely while
// the queue is firing, including removing or re-adding themselves.
// Handlers are compared by identity, so they must be pointer types.
type Queue[C any] struct {
	entries entryHeap[C]
	seq     uint64

	// batch holds the entries captured by the current Advance call so that
	// Remove can cancel ones that have not fired yet.
	batch  []*entry[C]
	firing bool

	paused   bool
	pausedAt Ticks
}

func New[C any]() *Queue[C] {
	return &Queue[C]{
		entries: make(entryHeap[C], 0, 64),
	}
}

// Add schedules target to fire at due.
func (q *Queue[C]) Add(due Ticks, target Handler[C], udata uintptr) {
	q.seq++
	heap.Push(&q.entries, &entry[C]{
		due:    due,
		seq:    q.seq,
		target: target,
		udata:  udata,
	})
}

// Remove cancels every pending entry for target. Returns true if any were found.
func (q *Queue[C]) Remove(target Handler[C]) bool {
	found := false
	kept := q.entries[:0]
	for _, e := range q.entries {
		if e.target == target {
			e.index = -1
			found = true
			continue
		}
		e.index = len(kept)
		kept = append(kept, e)
	}
	clear(q.entries[len(kept):])
	q.entries = kept
	if found {
		heap.Init(&q.entries)
	}
	if q.firing {
		for _, e := range q.batch {
			if e.target == target && !e.cancelled {
				e.cancelled = true
				found = true
			}
		}
	}
	return found
}

// InQueue reports whether target has a pending entry.
func (q *Queue[C]) InQueue(target Handler[C]) bool {
	for _, e := range q.entries {
		if e.target == target {
			return true
		}
	}
	if q.firing {
		for _, e := range q.batch {
			if e.target == target && !e.cancelled {
				return true
			}
		}
	}
	return false
}

// Due returns the due time of target's earliest pending entry.
func (q *Queue[C]) Due(target Handler[C]) (Ticks, bool) {
	var best Ticks
	found := false
	for _, e := range q.entries {
		if e.target == target && (!found || e.due < best) {
			best = e.due
			found = true
		}
	}
	return best, found
}

func (q *Queue[C]) Len() int { return len(q.entries) }

// Clear drops every pending entry.
func (q *Queue[C]) Clear() {
	q.entries = q.entries[:0]
	for _, e := range q.batch {
		e.cancelled = true
	}
}

func (q *Queue[C]) Paused() bool { return q.paused }

// Pause stops firing of ordinary handlers. AlwaysRunner handlers keep running.
func (q *Queue[C]) Pause(now Ticks) {
	if q.paused {
		return
	}
	q.paused = true
	q.pausedAt = now
}

// Resume restarts firing; ordinary entries are pushed back by the paused time.
func (q *Queue[C]) Resume(now Ticks) {
	if !q.paused {
		return
	}
	q.paused = false
	if now <= q.pausedAt {
		return
	}
	shift := now - q.pausedAt
	for _, e := range q.entries {
		if !isAlways(e.target) {
			e.due += shift
		}
	}
	heap.Init(&q.entries)
}

// Advance fires every entry due at or before now, in due-time then
// insertion order. Entries scheduled while firing wait for the next call.
// Returns the number of handlers fired.
func (q *Queue[C]) Advance(ctx C, now Ticks) int {
	if q.firing {
		return 0
	}
	q.batch = q.batch[:0]
	var deferred []*entry[C]
	for len(q.entries) > 0 && q.entries[0].due <= now {
		e := heap.Pop(&q.entries).(*entry[C])
		if q.paused && !isAlways(e.target) {
			deferred = append(deferred, e)
			continue
		}
		q.batch = append(q.batch, e)
	}
	for _, e := range deferred {
		heap.Push(&q.entries, e)
	}

	q.firing = true
	fired := 0
	for _, e := range q.batch {
		if e.cancelled {
			continue
		}
		e.cancelled = true
		fired++
		e.target.HandleEvent(ctx, now, e.udata)
	}
	q.firing = false
	q.batch = q.batch[:0]
	return fired
}

func isAlways(h any) bool {
	a, ok := h.(AlwaysRunner)
	return ok && a.Always()
}
