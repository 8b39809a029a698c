package fontsound

import (
	"fmt"
	"sort"
	"sync"
)

// Table maps handles to live fontsounds for one device.
// Implementations must be safe for concurrent use.
type Table interface {
	// Insert adds s under id. Returns ErrOutOfMemory when the table is full
	// and ErrInvalidValue if id is already present.
	Insert(id uint32, s *Fontsound) error

	// Lookup returns the fontsound for id, or nil.
	Lookup(id uint32) *Fontsound

	// Remove deletes and returns the fontsound for id, or nil if absent.
	Remove(id uint32) *Fontsound

	// Drain removes and returns every entry, leaving the table empty.
	Drain() []*Fontsound

	// Range calls fn for each entry until fn returns false.
	// fn must not modify the table.
	Range(fn func(s *Fontsound) bool)

	// Len returns the number of entries.
	Len() int
}

// DefaultMaxEntries bounds a UIntMap created with limit 0.
const DefaultMaxEntries = DefaultMaxIdentifiers

type uintMapEntry struct {
	key   uint32
	value *Fontsound
}

// UIntMap is a Table kept as a key-sorted slice with binary-search lookups.
type UIntMap struct {
	mu      sync.RWMutex
	entries []uintMapEntry
	limit   int
}

// NewUIntMap creates a table holding at most limit entries.
// A limit of 0 uses DefaultMaxEntries.
func NewUIntMap(limit int) *UIntMap {
	if limit <= 0 {
		limit = DefaultMaxEntries
	}
	return &UIntMap{limit: limit}
}

// search returns the index of key, or where it would be inserted.
func (m *UIntMap) search(key uint32) (int, bool) {
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].key >= key })
	return i, i < len(m.entries) && m.entries[i].key == key
}

// Insert implements Table.
func (m *UIntMap) Insert(id uint32, s *Fontsound) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, found := m.search(id)
	if found {
		return fmt.Errorf("%w: handle %d already mapped", ErrInvalidValue, id)
	}
	if len(m.entries) >= m.limit {
		return fmt.Errorf("%w: table full (%d entries)", ErrOutOfMemory, m.limit)
	}
	m.entries = append(m.entries, uintMapEntry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = uintMapEntry{key: id, value: s}
	return nil
}

// Lookup implements Table.
func (m *UIntMap) Lookup(id uint32) *Fontsound {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i, found := m.search(id); found {
		return m.entries[i].value
	}
	return nil
}

// Remove implements Table.
func (m *UIntMap) Remove(id uint32) *Fontsound {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, found := m.search(id)
	if !found {
		return nil
	}
	s := m.entries[i].value
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	return s
}

// Drain implements Table.
func (m *UIntMap) Drain() []*Fontsound {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Fontsound, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.value
	}
	m.entries = nil
	return out
}

// Range implements Table.
func (m *UIntMap) Range(fn func(s *Fontsound) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.entries {
		if !fn(e.value) {
			return
		}
	}
}

// Len implements Table.
func (m *UIntMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
