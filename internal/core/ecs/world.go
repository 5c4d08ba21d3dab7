package ecs

// World owns the entity pool, the component registry, and a deferred
// destruction queue flushed by the cleanup system at the end of each frame.
// Objects destroyed immediately (explosions, expired fields) go through
// DestroyNow so that effects observing them see the handle die in the same tick.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []EntityID
	onDestroy    []func(EntityID)
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// OnDestroy registers a hook run before an entity's components are dropped.
func (w *World) OnDestroy(fn func(EntityID)) {
	w.onDestroy = append(w.onDestroy, fn)
}

// MarkForDestruction queues an entity for end-of-frame cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// PendingDestruction returns the number of queued entities.
func (w *World) PendingDestruction() int { return len(w.destroyQueue) }

// DestroyNow destroys id immediately. Returns false for stale IDs.
func (w *World) DestroyNow(id EntityID) bool {
	if !w.pool.Alive(id) {
		return false
	}
	for _, fn := range w.onDestroy {
		fn(id)
	}
	w.registry.RemoveAll(id)
	return w.pool.Destroy(id)
}

// FlushDestroyQueue destroys all queued entities and clears their components.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for _, id := range w.destroyQueue {
		if w.DestroyNow(id) {
			n++
		}
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}
