package fontsound

import (
	"fmt"
	"sync"
)

// IdentifierAllocator hands out handles that are unique among live objects.
// Implementations must be safe for concurrent use.
type IdentifierAllocator interface {
	// Allocate returns a fresh non-zero identifier.
	// Returns ErrOutOfMemory when the identifier space is exhausted.
	Allocate() (uint32, error)

	// Release returns id to the pool. Releasing an unknown id is a no-op.
	Release(id uint32)

	// InUse returns how many identifiers are currently allocated.
	InUse() int
}

// DefaultMaxIdentifiers bounds a ThunkAllocator created with capacity 0.
const DefaultMaxIdentifiers = 1 << 16

// ThunkAllocator maps identifiers onto a slot array and reuses the lowest
// free slot first. Identifier n occupies slot n-1, so 0 is never issued.
type ThunkAllocator struct {
	mu    sync.Mutex
	slots []bool
	used  int
	max   int

	// low is the lowest slot that may be free; every slot below it is taken.
	low int
}

// NewThunkAllocator creates an allocator that issues at most capacity
// identifiers at once. A capacity of 0 uses DefaultMaxIdentifiers.
func NewThunkAllocator(capacity int) *ThunkAllocator {
	if capacity <= 0 {
		capacity = DefaultMaxIdentifiers
	}
	return &ThunkAllocator{max: capacity}
}

// Allocate implements IdentifierAllocator.
func (a *ThunkAllocator) Allocate() (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := a.low; i < len(a.slots); i++ {
		if !a.slots[i] {
			a.slots[i] = true
			a.used++
			a.low = i + 1
			return uint32(i + 1), nil //nolint:gosec // bounded by max
		}
	}
	a.low = len(a.slots)
	if len(a.slots) >= a.max {
		return 0, fmt.Errorf("%w: identifier space exhausted (%d in use)", ErrOutOfMemory, a.used)
	}
	a.slots = append(a.slots, true)
	a.used++
	a.low = len(a.slots)
	return uint32(len(a.slots)), nil //nolint:gosec // bounded by max
}

// Release implements IdentifierAllocator.
func (a *ThunkAllocator) Release(id uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := int(id) - 1
	if idx < 0 || idx >= len(a.slots) || !a.slots[idx] {
		return
	}
	a.slots[idx] = false
	a.used--
	a.low = min(a.low, idx)
}

// InUse implements IdentifierAllocator.
func (a *ThunkAllocator) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used
}
