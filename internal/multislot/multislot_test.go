package multislot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEmptyCapacitySchedule(t *testing.T) {
	m0 := NewEmpty[int, int](0, 4)
	m1 := NewEmpty[int, int](1, 4)
	m2 := NewEmpty[int, int](2, 4)
	require.Equal(t, 4, m0.Capacity())
	require.Equal(t, 8, m1.Capacity())
	require.Equal(t, 16, m2.Capacity())
	require.True(t, m0.Empty())
}

func TestNewFromSortedPanicsOnUnsorted(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unsorted input")
		}
	}()
	NewFromSorted[int, string]([]int{2, 1}, []string{"a", "b"})
}

func TestNewFromSortedPanicsOnDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate key")
		}
	}()
	NewFromSorted[int, string]([]int{1, 1}, []string{"a", "b"})
}

func TestContainsGetAndTombstone(t *testing.T) {
	m := NewFromSorted[int, string]([]int{1, 3, 5, 7}, []string{"a", "b", "c", "d"})
	require.Equal(t, 4, m.LiveCount())

	idx, ok := m.Contains(5)
	require.True(t, ok)
	v, ok := m.Get(5)
	require.True(t, ok)
	require.Equal(t, "c", v)

	m.Unset(idx)
	require.False(t, m.Empty())
	require.Equal(t, 3, m.LiveCount())
	require.Equal(t, 4, m.Len(), "physical length unaffected by tombstoning")

	_, ok = m.Contains(5)
	require.False(t, ok, "tombstoned key must not be found via Contains")
}

func TestFilteredDrainDropsTombstonesAndClears(t *testing.T) {
	m := NewFromSorted[int, string]([]int{1, 2, 3, 4}, []string{"a", "b", "c", "d"})
	idx, _ := m.Contains(2)
	m.Unset(idx)
	idx, _ = m.Contains(4)
	m.Unset(idx)

	keys, values := m.FilteredDrain()
	require.Equal(t, []int{1, 3}, keys)
	require.Equal(t, []string{"a", "c"}, values)
	require.True(t, m.Empty())
	require.Equal(t, 0, m.Len())
}

func TestDrainKeepsTombstonedEntries(t *testing.T) {
	m := NewFromSorted[int, string]([]int{1, 2, 3}, []string{"a", "b", "c"})
	idx, _ := m.Contains(2)
	m.Unset(idx)

	keys, _ := m.Drain()
	require.Equal(t, []int{1, 2, 3}, keys, "Drain returns every physical entry, live or dead")
}

func TestSetSortedRespectsFixedCapacity(t *testing.T) {
	m := NewEmpty[int, int](1, 4) // capacity 8
	m.SetSorted([]int{1, 2, 3}, []int{10, 20, 30})
	require.False(t, m.Empty())
	require.Equal(t, 3, m.Len())
	require.Equal(t, 8, m.Capacity())
	require.Equal(t, 3, m.LiveCount())

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when SetSorted exceeds capacity")
		}
	}()
	m.SetSorted(make([]int, 9), make([]int, 9))
}

func TestFillInConsumesUpToRemainingCapacity(t *testing.T) {
	m := NewEmpty[int, int](0, 4) // capacity 4
	keys := []int{1, 2, 3, 4, 5, 6}
	values := []int{1, 2, 3, 4, 5, 6}

	consumed, exhausted := m.FillIn(keys, values)
	require.Equal(t, 4, consumed)
	require.False(t, exhausted)
	require.Equal(t, 4, m.Len())

	m2 := NewEmpty[int, int](1, 4) // capacity 8
	consumed2, exhausted2 := m2.FillIn(keys[:3], values[:3])
	require.Equal(t, 3, consumed2)
	require.True(t, exhausted2)
}

func TestLiveSnapshotDoesNotDrain(t *testing.T) {
	m := NewFromSorted[int, string]([]int{1, 2, 3}, []string{"a", "b", "c"})
	idx, _ := m.Contains(2)
	m.Unset(idx)

	keys, values := m.LiveSnapshot()
	require.Equal(t, []int{1, 3}, keys)
	require.Equal(t, []string{"a", "c"}, values)
	require.Equal(t, 3, m.Len(), "LiveSnapshot must not mutate the run")
}
