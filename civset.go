package civs

import "cmp"

// CivSet is an in-memory, cascading, ordered set of K. It is implemented
// as a thin wrapper over CivMap[K, struct{}] — the same duplication a
// template-code-generated value/group store pair would otherwise need,
// collapsed here into one generic definition. The zero value is not
// usable; construct one with NewSet.
type CivSet[K cmp.Ordered] struct {
	m *CivMap[K, struct{}]
}

// NewSet constructs an empty CivSet. It panics if the resolved Config is
// invalid.
func NewSet[K cmp.Ordered](opts ...func(*Config)) *CivSet[K] {
	return &CivSet[K]{m: NewMap[K, struct{}](opts...)}
}

// Len returns the number of live keys in the set.
func (s *CivSet[K]) Len() int {
	return s.m.Len()
}

// Tombs returns the number of tombstoned entries currently occupying
// storage across every run.
func (s *CivSet[K]) Tombs() int {
	return s.m.Tombs()
}

// Contains reports whether k is present.
func (s *CivSet[K]) Contains(k K) bool {
	return s.m.Contains(k)
}

// Insert adds k to the set and reports whether it was already present.
func (s *CivSet[K]) Insert(k K) (alreadyPresent bool) {
	_, had := s.m.Insert(k, struct{}{})
	return had
}

// Remove deletes k if present and reports whether it was.
func (s *CivSet[K]) Remove(k K) bool {
	_, ok := s.m.Remove(k)
	return ok
}

// ShrinkToFit releases spare backing capacity held by the write buffer
// and every run.
func (s *CivSet[K]) ShrinkToFit() {
	s.m.ShrinkToFit()
}

// Stats reports a snapshot of the set's internal cascade layout.
func (s *CivSet[K]) Stats() Stats {
	return s.m.Stats()
}

// Fingerprint returns a content hash of the set's live keys, stable
// across runs with the same live contents regardless of internal layout.
func (s *CivSet[K]) Fingerprint() uint64 {
	return s.m.Fingerprint()
}

// ascend walks every live key in the set in ascending order.
func (s *CivSet[K]) ascend(fn func(k K)) {
	s.m.ascend(func(k K, _ struct{}) { fn(k) })
}
