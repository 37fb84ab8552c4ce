package ecs

// World is the top-level container. It owns the handle arena, the component
// registry, and a deferred destruction queue flushed at the end of each tick.
// Destruction is deferred so that every system observing the store within a
// tick sees a stable population; only the cleanup phase mutates slot state.
type World struct {
	arena        *Arena
	registry     *Registry
	destroyQueue []Handle
}

func NewWorld() *World {
	return &World{
		arena:        NewArena(),
		registry:     NewRegistry(),
		destroyQueue: make([]Handle, 0, 64),
	}
}

func (w *World) Arena() *Arena       { return w.arena }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) Create() Handle {
	return w.arena.Create()
}

func (w *World) Alive(h Handle) bool {
	return w.arena.Alive(h)
}

// Live returns the number of live particles, counting those already queued
// for destruction until the queue is flushed.
func (w *World) Live() int {
	return w.arena.Live()
}

// MarkForDestruction queues a handle for end-of-tick cleanup. Marking the
// same handle more than once before the flush is harmless.
func (w *World) MarkForDestruction(h Handle) {
	w.destroyQueue = append(w.destroyQueue, h)
}

// FlushDestroyQueue frees all queued handles and clears their components,
// returning the number actually destroyed (stale duplicates excluded).
func (w *World) FlushDestroyQueue() int {
	destroyed := 0
	for _, h := range w.destroyQueue {
		if !w.arena.Free(h) {
			continue
		}
		w.registry.RemoveAll(h)
		destroyed++
	}
	w.destroyQueue = w.destroyQueue[:0]
	return destroyed
}
