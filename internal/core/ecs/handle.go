package ecs

// Handle encodes a 32-bit arena index in the lower bits and a 32-bit
// generation in the upper bits. The generation increments when the slot is
// freed, so a handle held past a particle's death can never resolve to the
// particle that later reuses the slot.
type Handle uint64

func NewHandle(index uint32, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32      { return uint32(h) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }
func (h Handle) IsZero() bool       { return h == 0 }

// Arena allocates handles with generational indices and a free list.
// Insert and free are O(1); freed slots are reused with a bumped generation.
type Arena struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
	live        int
}

func NewArena() *Arena {
	return &Arena{
		generations: make([]uint32, 0, 1024),
		freeList:    make([]uint32, 0, 256),
	}
}

func (a *Arena) Create() Handle {
	a.live++
	if len(a.freeList) > 0 {
		idx := a.freeList[len(a.freeList)-1]
		a.freeList = a.freeList[:len(a.freeList)-1]
		return NewHandle(idx, a.generations[idx])
	}
	idx := a.nextIndex
	a.nextIndex++
	if int(idx) >= len(a.generations) {
		a.generations = append(a.generations, 0)
	}
	return NewHandle(idx, a.generations[idx])
}

func (a *Arena) Alive(h Handle) bool {
	idx := h.Index()
	if idx >= a.nextIndex {
		return false
	}
	return a.generations[idx] == h.Generation()
}

// Free releases the slot behind h. Freeing a stale handle is a no-op, which
// makes double-destroy (e.g. a particle reaped twice before the tick's
// cleanup flush) safe. Reports whether the slot was actually freed.
func (a *Arena) Free(h Handle) bool {
	idx := h.Index()
	if idx >= a.nextIndex {
		return false
	}
	if a.generations[idx] != h.Generation() {
		return false // stale reference
	}
	a.generations[idx]++
	a.freeList = append(a.freeList, idx)
	a.live--
	return true
}

// Live returns the number of currently allocated handles.
func (a *Arena) Live() int { return a.live }
