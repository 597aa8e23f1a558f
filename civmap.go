package civs

import (
	"cmp"

	"github.com/merl-twin/collections/internal/multislot"
	"github.com/merl-twin/collections/internal/slot"
	"go.uber.org/zap"
)

// CivMap is an in-memory, cascading, ordered map from K to V. The zero
// value is not usable; construct one with NewMap.
type CivMap[K cmp.Ordered, V any] struct {
	cfg   *Config
	len   int
	tombs int
	slot  *slot.Slot[K, V]
	data  []*multislot.MultiSlot[K, V]
}

// NewMap constructs an empty CivMap. It panics if the resolved Config is
// invalid (non-power-of-two slot size, out-of-range tombs limit).
func NewMap[K cmp.Ordered, V any](opts ...func(*Config)) *CivMap[K, V] {
	cfg := resolveConfig(opts...)
	return &CivMap[K, V]{
		cfg:  cfg,
		slot: slot.New[K, V](cfg.SlotSize),
	}
}

// Len returns the number of live keys in the map.
func (c *CivMap[K, V]) Len() int {
	return c.len
}

// Tombs returns the number of tombstoned (deleted but not yet reclaimed)
// entries currently occupying storage across every run.
func (c *CivMap[K, V]) Tombs() int {
	return c.tombs
}

// Contains reports whether k is present.
func (c *CivMap[K, V]) Contains(k K) bool {
	if c.slot.Contains(k) {
		return true
	}
	_, _, ok := c.locate(k)
	return ok
}

// Get returns the value stored at k, if present.
func (c *CivMap[K, V]) Get(k K) (V, bool) {
	if v, ok := c.slot.Get(k); ok {
		return v, true
	}
	if i, idx, ok := c.locate(k); ok {
		return c.data[i].GetAt(idx), true
	}
	var zero V
	return zero, false
}

// GetMut returns a pointer to the value stored at k, if present. The
// pointer is invalidated by any later Insert, Remove, or ShrinkToFit call
// that touches the same run or the write buffer.
func (c *CivMap[K, V]) GetMut(k K) (*V, bool) {
	if i, idx, ok := c.locate(k); ok {
		return c.data[i].PtrAt(idx), true
	}
	return c.slot.GetMut(k)
}

// locate scans every run in index order for a live entry matching k. Runs
// are searched by binary search internally; the outer scan across runs is
// linear in the (logarithmic) number of runs.
func (c *CivMap[K, V]) locate(k K) (runIdx, pos int, ok bool) {
	for i, ms := range c.data {
		if ms.Empty() {
			continue
		}
		if idx, found := ms.Contains(k); found {
			return i, idx, true
		}
	}
	return 0, 0, false
}

// Insert writes k/v into the map. If k was already present, its prior
// value is returned with hadPrior set to true and len does not change.
func (c *CivMap[K, V]) Insert(k K, v V) (prior V, hadPrior bool) {
	if i, idx, ok := c.locate(k); ok {
		p := c.data[i].PtrAt(idx)
		prior = *p
		*p = v
		return prior, true
	}
	prior, hadPrior, full := c.slot.Insert(k, v)
	if hadPrior {
		return prior, true
	}
	if full {
		c.promote()
	}
	c.len++
	var zero V
	return zero, false
}

// Remove deletes k if present and returns the value it held. If k was
// stored in a run, the removal tombstones that run's entry in place; if
// it was still in the write buffer, it is removed physically and no
// tombstone is created.
func (c *CivMap[K, V]) Remove(k K) (RemovedItem[V], bool) {
	if i, idx, ok := c.locate(k); ok {
		c.data[i].Unset(idx)
		c.tombs++
		c.len--
		return refRemoved(c.data[i].PtrAt(idx)), true
	}
	if v, ok := c.slot.Remove(k); ok {
		c.len--
		return ownedRemoved(v), true
	}
	return RemovedItem[V]{}, false
}

// ShrinkToFit releases spare backing capacity held by the write buffer
// and every run. Fixed run capacities (the size-doubling schedule) are
// never affected; only slack above each run's current occupancy is
// released.
func (c *CivMap[K, V]) ShrinkToFit() {
	c.slot.ShrinkToFit()
	for _, ms := range c.data {
		ms.ShrinkToFit()
	}
}

// promote is called once the write buffer has just become full. It finds
// the smallest run index that is currently empty, merges the buffer and
// every non-empty run below that index into it, and leaves the buffer
// empty.
//
// The very first promotion of a map's lifetime is a special case: no run
// exists yet at all, so the buffer is simply handed off wholesale as
// data[0] rather than merged into anything.
func (c *CivMap[K, V]) promote() {
	if len(c.data) == 0 {
		keys, values := c.slot.SortedDrain()
		c.data = append(c.data, multislot.NewFromSorted[K, V](keys, values))
		c.logPromotion(0, len(keys))
		return
	}
	n := 0
	for n < len(c.data) && !c.data[n].Empty() {
		n++
	}
	if n == len(c.data) {
		c.data = append(c.data, multislot.NewEmpty[K, V](n, c.cfg.SlotSize))
	}
	c.mergeInto(n)
	c.checkTombs(n)
}

// mergeInto drains the write buffer and every live entry below index n
// (discarding tombstones permanently as it goes) and writes the merged,
// strictly ascending result into data[n]. Its precondition, enforced by
// promote's scan, is that data[n] is empty and every data[i] for i<n is
// non-empty.
func (c *CivMap[K, V]) mergeInto(n int) {
	if !c.data[n].Empty() {
		panic("civs: merge_into precondition violated: target run not empty")
	}
	for i := 0; i < n; i++ {
		if c.data[i].Empty() {
			panic("civs: merge_into precondition violated: lower run unexpectedly empty")
		}
	}

	streamsKeys := make([][]K, n+1)
	streamsValues := make([][]V, n+1)
	streamsKeys[0], streamsValues[0] = c.slot.SortedDrain()

	reclaimed := 0
	for i := 0; i < n; i++ {
		tombsInRun := c.data[i].Len() - c.data[i].LiveCount()
		reclaimed += tombsInRun
		streamsKeys[i+1], streamsValues[i+1] = c.data[i].FilteredDrain()
	}

	mergedKeys, mergedValues := kWayMerge(streamsKeys, streamsValues)
	c.data[n].SetSorted(mergedKeys, mergedValues)
	c.tombs -= reclaimed

	c.logPromotion(n, len(mergedKeys))
}

// checkTombs runs immediately after a merge into data[n]. If that run's
// unused capacity (its fixed nominal capacity minus how many entries the
// merge actually placed there, a gap that grows precisely because
// mergeInto discards tombstones) has crossed the configured density
// threshold, its contents are redistributed back down across data[n-1],
// data[n-2], ..., data[0] - which are guaranteed empty by mergeInto's own
// precondition - filling each either to capacity or, for at most one of
// them, partially, and data[n] is left empty again.
func (c *CivMap[K, V]) checkTombs(n int) {
	capN := c.data[n].Capacity()
	lenN := c.data[n].Len()
	localTombs := capN - lenN
	if localTombs <= c.cfg.SlotSize {
		return
	}
	if float64(localTombs)/float64(capN) <= c.cfg.TombsLimit {
		return
	}

	keys, values := c.data[n].Drain()
	count := len(keys)
	for m := n - 1; m >= 0 && count > 0; m-- {
		capM := c.data[m].Capacity()
		switch {
		case count >= capM:
			c.data[m].SetSorted(keys[:capM], values[:capM])
			keys, values = keys[capM:], values[capM:]
			count -= capM
		case capM-count > c.cfg.SlotSize:
			continue
		default:
			c.data[m].SetSorted(keys, values)
			keys, values = nil, nil
			count = 0
		}
	}
	if count != 0 {
		panic("civs: check_tombs could not place all redistributed entries")
	}

	c.cfg.Logger.Debug("civs: redistributed run",
		zap.Int("run", n),
		zap.Int("local_tombs", localTombs),
	)
}

func (c *CivMap[K, V]) logPromotion(target, count int) {
	c.cfg.Logger.Debug("civs: promoted into run",
		zap.Int("run", target),
		zap.Int("count", count),
	)
}

// kWayMerge merges n already-sorted, mutually-disjoint key streams into
// one globally sorted slice. The number of streams is always the
// (logarithmic) depth of the cascade, so a plain per-element scan across
// streams is simpler than a heap and fast enough in practice.
func kWayMerge[K cmp.Ordered, V any](keys [][]K, values [][]V) (mergedKeys []K, mergedValues []V) {
	total := 0
	for _, ks := range keys {
		total += len(ks)
	}
	mergedKeys = make([]K, 0, total)
	mergedValues = make([]V, 0, total)
	cursors := make([]int, len(keys))
	for {
		best := -1
		for s := range keys {
			if cursors[s] >= len(keys[s]) {
				continue
			}
			if best == -1 || cmp.Compare(keys[s][cursors[s]], keys[best][cursors[best]]) < 0 {
				best = s
			}
		}
		if best == -1 {
			break
		}
		mergedKeys = append(mergedKeys, keys[best][cursors[best]])
		mergedValues = append(mergedValues, values[best][cursors[best]])
		cursors[best]++
	}
	return mergedKeys, mergedValues
}

// ascend walks every live entry in the map in ascending key order. It is
// an internal diagnostic helper used by Fingerprint and the tests, not a
// general-purpose iterator: it allocates a full sorted snapshot and is
// not meant for the hot path.
func (c *CivMap[K, V]) ascend(fn func(k K, v V)) {
	streamsKeys := make([][]K, 0, len(c.data)+1)
	streamsValues := make([][]V, 0, len(c.data)+1)
	sk, sv := c.slot.Snapshot()
	streamsKeys = append(streamsKeys, sk)
	streamsValues = append(streamsValues, sv)
	for _, ms := range c.data {
		if ms.Empty() {
			continue
		}
		lk, lv := ms.LiveSnapshot()
		streamsKeys = append(streamsKeys, lk)
		streamsValues = append(streamsValues, lv)
	}
	mergedKeys, mergedValues := kWayMerge(streamsKeys, streamsValues)
	for i, k := range mergedKeys {
		fn(k, mergedValues[i])
	}
}
