// Package multislot implements the fixed-capacity sorted run that a cascade
// stacks in size-doubling layers above its write buffer. A run's capacity
// is fixed forever at construction; its live/dead bookkeeping is carried in
// a flags.Flags bitmap rather than by physically removing entries, so a
// tombstoned key keeps occupying storage until the run is next consumed by
// a merge or a redistribution.
package multislot

import (
	"cmp"
	"fmt"

	"github.com/merl-twin/collections/flags"
)

// MultiSlot is a sorted, fixed-capacity run of keys (and, for map use,
// associated values) with a parallel live/dead bitmap.
type MultiSlot[K cmp.Ordered, V any] struct {
	capacity int
	empty    bool
	flags    flags.Flags
	keys     []K
	values   []V
}

// NewEmpty returns an empty run sized for cascade position index, with
// capacity slotSize * 2^index.
func NewEmpty[K cmp.Ordered, V any](index, slotSize int) *MultiSlot[K, V] {
	capacity := slotSize << uint(index)
	return &MultiSlot[K, V]{
		capacity: capacity,
		empty:    true,
		flags:    flags.New(0),
		keys:     make([]K, 0, capacity),
		values:   make([]V, 0, capacity),
	}
}

// NewFromSorted builds a fully live run directly from an already
// strictly-ascending, duplicate-free key slice. It panics if that
// precondition is violated; the caller (a cascade) is responsible for
// only ever calling it with keys it has itself sorted or merged.
func NewFromSorted[K cmp.Ordered, V any](keys []K, values []V) *MultiSlot[K, V] {
	assertStrictlyAscending(keys)
	m := &MultiSlot[K, V]{
		capacity: len(keys),
		empty:    len(keys) == 0,
		flags:    flags.Ones(len(keys)),
		keys:     keys,
		values:   values,
	}
	return m
}

func assertStrictlyAscending[K cmp.Ordered](keys []K) {
	for i := 1; i < len(keys); i++ {
		if cmp.Compare(keys[i-1], keys[i]) >= 0 {
			panic(fmt.Sprintf("multislot: keys not strictly ascending at index %d", i))
		}
	}
}

// Capacity returns the run's fixed capacity.
func (m *MultiSlot[K, V]) Capacity() int {
	return m.capacity
}

// Len returns the number of entries physically stored (live and dead).
func (m *MultiSlot[K, V]) Len() int {
	return len(m.keys)
}

// Empty reports whether the run currently holds no entries.
func (m *MultiSlot[K, V]) Empty() bool {
	return m.empty
}

// LiveCount returns the number of entries whose flag bit is set.
func (m *MultiSlot[K, V]) LiveCount() int {
	return m.flags.PopCount()
}

// Contains returns the storage index of k and true if it is present and
// live. A tombstoned key is reported as not contained.
func (m *MultiSlot[K, V]) Contains(k K) (int, bool) {
	i, ok := m.search(k)
	if !ok || !m.flags.Get(i) {
		return 0, false
	}
	return i, true
}

func (m *MultiSlot[K, V]) search(k K) (int, bool) {
	lo, hi := 0, len(m.keys)
	for lo < hi {
		mid := (lo + hi) / 2
		switch cmp.Compare(m.keys[mid], k) {
		case 0:
			return mid, true
		case -1:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return 0, false
}

// Get returns the value stored at k if it is present and live.
func (m *MultiSlot[K, V]) Get(k K) (V, bool) {
	if i, ok := m.Contains(k); ok {
		return m.values[i], true
	}
	var zero V
	return zero, false
}

// GetMut returns a pointer to the value stored at k if it is present and
// live. The pointer is invalidated by any later Clear, Drain, or
// FilteredDrain call on this run.
func (m *MultiSlot[K, V]) GetMut(k K) (*V, bool) {
	if i, ok := m.Contains(k); ok {
		return &m.values[i], true
	}
	return nil, false
}

// PtrAt returns a pointer to the value at a storage index already known
// (via Contains) to hold a live entry.
func (m *MultiSlot[K, V]) PtrAt(idx int) *V {
	return &m.values[idx]
}

// GetAt returns the value at a storage index already known to hold a live
// entry.
func (m *MultiSlot[K, V]) GetAt(idx int) V {
	return m.values[idx]
}

// Unset tombstones the entry at idx without moving any storage.
func (m *MultiSlot[K, V]) Unset(idx int) {
	m.flags.Unset(idx)
}

// Clear empties the run logically while preserving its backing storage
// and fixed capacity, so the position can be reused without reallocating.
func (m *MultiSlot[K, V]) Clear() {
	m.keys = m.keys[:0]
	m.values = m.values[:0]
	m.flags.Reset(0)
	m.empty = true
}

// Drain removes and returns every entry in this run, live and dead alike,
// in storage order, then clears the run.
func (m *MultiSlot[K, V]) Drain() (keys []K, values []V) {
	keys, values = m.keys, m.values
	m.Clear()
	return keys, values
}

// FilteredDrain removes and returns only the live entries in this run, in
// ascending order, then clears the run. Tombstoned entries are discarded
// for good; this is how a cascade reclaims the storage a deletion left
// behind once the run holding it is next consumed by a merge.
func (m *MultiSlot[K, V]) FilteredDrain() (keys []K, values []V) {
	live := m.flags.PopCount()
	keys = make([]K, 0, live)
	values = make([]V, 0, live)
	for i := range m.keys {
		if m.flags.Get(i) {
			keys = append(keys, m.keys[i])
			values = append(values, m.values[i])
		}
	}
	m.Clear()
	return keys, values
}

// LiveSnapshot returns a copy of the run's live entries in ascending order
// without draining it. It exists for diagnostics (stats, fingerprinting)
// that need to view the whole cascade without disturbing it.
func (m *MultiSlot[K, V]) LiveSnapshot() (keys []K, values []V) {
	live := m.flags.PopCount()
	keys = make([]K, 0, live)
	values = make([]V, 0, live)
	for i := range m.keys {
		if m.flags.Get(i) {
			keys = append(keys, m.keys[i])
			values = append(values, m.values[i])
		}
	}
	return keys, values
}

// SetSorted overwrites the run's contents with an already strictly
// ascending, duplicate-free key slice, marking every entry live. It
// panics if keys would overflow the run's fixed capacity. Capacity itself
// never changes; only a run already Clear (or fresh from NewEmpty) should
// be filled this way.
func (m *MultiSlot[K, V]) SetSorted(keys []K, values []V) {
	if len(keys) > m.capacity {
		panic("multislot: SetSorted exceeds fixed capacity")
	}
	assertStrictlyAscending(keys)
	m.keys = append(m.keys[:0], keys...)
	m.values = append(m.values[:0], values...)
	m.flags.Reset(len(keys))
	m.flags.SetFirstNOnes(len(keys))
	m.empty = len(keys) == 0
}

// FillIn appends as many of the given sorted entries as fit in the run's
// remaining capacity, marking them live, and reports how many were
// consumed and whether the whole input was exhausted. It is the
// slice-based analogue of pushing from an external sorted source until
// either the source or the run runs out.
func (m *MultiSlot[K, V]) FillIn(keys []K, values []V) (consumed int, exhausted bool) {
	room := m.capacity - len(m.keys)
	if room <= 0 || len(keys) == 0 {
		return 0, len(keys) == 0
	}
	n := room
	if n > len(keys) {
		n = len(keys)
	}
	prev := len(m.keys)
	m.keys = append(m.keys, keys[:n]...)
	m.values = append(m.values, values[:n]...)
	assertStrictlyAscending(m.keys)
	fl := flags.New(len(m.keys))
	for i := 0; i < prev; i++ {
		if m.flags.Get(i) {
			fl.Set(i)
		}
	}
	for i := prev; i < len(m.keys); i++ {
		fl.Set(i)
	}
	m.flags = fl
	m.empty = len(m.keys) == 0
	return n, n == len(keys)
}

// Reserve ensures the run's backing storage can hold at least n entries
// without reallocating.
func (m *MultiSlot[K, V]) Reserve(n int) {
	if cap(m.keys) >= n {
		return
	}
	keys := make([]K, len(m.keys), n)
	values := make([]V, len(m.values), n)
	copy(keys, m.keys)
	copy(values, m.values)
	m.keys, m.values = keys, values
}

// ShrinkToFit releases spare backing storage above the run's current
// length. Capacity (the cascade-visible maximum this run may ever hold)
// is unaffected.
func (m *MultiSlot[K, V]) ShrinkToFit() {
	if cap(m.keys) > len(m.keys) {
		m.keys = append([]K(nil), m.keys...)
	}
	if cap(m.values) > len(m.values) {
		m.values = append([]V(nil), m.values...)
	}
}
