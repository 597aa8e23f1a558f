// Package slot implements the small mutable write buffer that absorbs every
// insert before a cascade promotes it into an immutable sorted run. Its
// capacity is always small relative to the runs it feeds, so a linear scan
// is the simplest correct way to look up a key and is what real-world
// implementations of this buffer do.
package slot

import (
	"cmp"
	"slices"
)

// Slot is a bounded, unsorted key/value buffer of at most maxSize entries.
type Slot[K cmp.Ordered, V any] struct {
	maxSize int
	keys    []K
	values  []V
}

// New returns an empty Slot with the given maximum size. maxSize must be
// positive; callers are expected to have already validated it (e.g. via a
// Config) before constructing a Slot.
func New[K cmp.Ordered, V any](maxSize int) *Slot[K, V] {
	return &Slot[K, V]{
		maxSize: maxSize,
		keys:    make([]K, 0, maxSize),
		values:  make([]V, 0, maxSize),
	}
}

// MaxSize returns the buffer's capacity.
func (s *Slot[K, V]) MaxSize() int {
	return s.maxSize
}

// Len returns the number of entries currently buffered.
func (s *Slot[K, V]) Len() int {
	return len(s.keys)
}

// Full reports whether the buffer has reached its maximum size.
func (s *Slot[K, V]) Full() bool {
	return len(s.keys) >= s.maxSize
}

func (s *Slot[K, V]) find(k K) int {
	for i, kk := range s.keys {
		if kk == k {
			return i
		}
	}
	return -1
}

// Contains reports whether k is buffered.
func (s *Slot[K, V]) Contains(k K) bool {
	return s.find(k) >= 0
}

// Get returns the value for k and whether it was found.
func (s *Slot[K, V]) Get(k K) (V, bool) {
	if i := s.find(k); i >= 0 {
		return s.values[i], true
	}
	var zero V
	return zero, false
}

// GetMut returns a pointer into the buffer's storage for k, or nil if k is
// not buffered. The pointer is invalidated by any later Insert, Remove, or
// Drain call.
func (s *Slot[K, V]) GetMut(k K) (*V, bool) {
	if i := s.find(k); i >= 0 {
		return &s.values[i], true
	}
	return nil, false
}

// Insert writes k/v into the buffer. If k was already present, its prior
// value is returned with hadPrior set and the buffer's size does not
// change. Otherwise the entry is appended and full reports whether the
// buffer is now at maxSize. Insert does not itself refuse a new key once
// the buffer is at maxSize; the caller is responsible for checking Full
// before calling Insert when k is not already present.
func (s *Slot[K, V]) Insert(k K, v V) (prior V, hadPrior bool, full bool) {
	if i := s.find(k); i >= 0 {
		prior = s.values[i]
		s.values[i] = v
		return prior, true, s.Full()
	}
	s.keys = append(s.keys, k)
	s.values = append(s.values, v)
	var zero V
	return zero, false, s.Full()
}

// Remove deletes k from the buffer if present, returning its value. The
// buffer's remaining entries keep their relative order.
func (s *Slot[K, V]) Remove(k K) (V, bool) {
	i := s.find(k)
	if i < 0 {
		var zero V
		return zero, false
	}
	v := s.values[i]
	s.keys = append(s.keys[:i], s.keys[i+1:]...)
	s.values = append(s.values[:i], s.values[i+1:]...)
	return v, true
}

// Drain empties the buffer, returning its entries in unspecified order.
// The backing storage is retained for reuse by future inserts.
func (s *Slot[K, V]) Drain() (keys []K, values []V) {
	keys, values = s.keys, s.values
	s.keys = s.keys[:0]
	s.values = s.values[:0]
	return keys, values
}

// SortedDrain empties the buffer, returning its entries sorted ascending
// by key. The backing storage is retained for reuse by future inserts.
func (s *Slot[K, V]) SortedDrain() (keys []K, values []V) {
	idx := make([]int, len(s.keys))
	for i := range idx {
		idx[i] = i
	}
	slices.SortFunc(idx, func(a, b int) int { return cmp.Compare(s.keys[a], s.keys[b]) })
	keys = make([]K, len(idx))
	values = make([]V, len(idx))
	for i, j := range idx {
		keys[i] = s.keys[j]
		values[i] = s.values[j]
	}
	s.keys = s.keys[:0]
	s.values = s.values[:0]
	return keys, values
}

// Snapshot returns a sorted copy of the buffer's entries without draining
// it. It exists for diagnostics (stats, fingerprinting) that need to view
// the whole cascade without disturbing it.
func (s *Slot[K, V]) Snapshot() (keys []K, values []V) {
	idx := make([]int, len(s.keys))
	for i := range idx {
		idx[i] = i
	}
	slices.SortFunc(idx, func(a, b int) int { return cmp.Compare(s.keys[a], s.keys[b]) })
	keys = make([]K, len(idx))
	values = make([]V, len(idx))
	for i, j := range idx {
		keys[i] = s.keys[j]
		values[i] = s.values[j]
	}
	return keys, values
}

// ShrinkToFit releases any spare capacity above the buffer's current
// length, re-allocating its backing storage exactly to size.
func (s *Slot[K, V]) ShrinkToFit() {
	if cap(s.keys) > len(s.keys) {
		s.keys = append([]K(nil), s.keys...)
	}
	if cap(s.values) > len(s.values) {
		s.values = append([]V(nil), s.values...)
	}
}
