package civs

import (
	"fmt"

	"github.com/gholt/brimtext"
	"github.com/spaolacci/murmur3"
)

// RunStats describes one run's occupancy.
type RunStats struct {
	Index    int
	Capacity int
	Live     int
	Tombs    int
}

// Stats is a snapshot of a CivSet/CivMap's internal cascade layout, for
// diagnostics and tests. Gathering it walks every run and is not meant
// for the hot path.
type Stats struct {
	Len     int
	Tombs   int
	SlotLen int
	SlotMax int
	Runs    []RunStats
}

func (c *CivMap[K, V]) Stats() Stats {
	st := Stats{
		Len:     c.len,
		Tombs:   c.tombs,
		SlotLen: c.slot.Len(),
		SlotMax: c.slot.MaxSize(),
		Runs:    make([]RunStats, len(c.data)),
	}
	for i, ms := range c.data {
		live := ms.LiveCount()
		st.Runs[i] = RunStats{
			Index:    i,
			Capacity: ms.Capacity(),
			Live:     live,
			Tombs:    ms.Len() - live,
		}
	}
	return st
}

// String renders the snapshot as an aligned table.
func (st Stats) String() string {
	rows := [][]string{
		{"len", fmt.Sprintf("%d", st.Len)},
		{"tombs", fmt.Sprintf("%d", st.Tombs)},
		{"slot", fmt.Sprintf("%d/%d", st.SlotLen, st.SlotMax)},
	}
	for _, r := range st.Runs {
		rows = append(rows, []string{
			fmt.Sprintf("run[%d]", r.Index),
			fmt.Sprintf("live=%d tombs=%d cap=%d", r.Live, r.Tombs, r.Capacity),
		})
	}
	return brimtext.Align(rows, nil)
}

// Fingerprint returns a content hash of the map's live (key, value)
// pairs, computed in ascending key order so it is stable across runs
// with the same live contents regardless of internal cascade layout. It
// formats each pair with fmt, so it is only meaningful when K and V have
// a useful default or Stringer formatting.
func (c *CivMap[K, V]) Fingerprint() uint64 {
	h := murmur3.New64()
	c.ascend(func(k K, v V) {
		fmt.Fprintf(h, "%v=%v;", k, v)
	})
	return h.Sum64()
}
