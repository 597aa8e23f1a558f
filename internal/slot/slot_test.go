package slot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertAndFull(t *testing.T) {
	s := New[int, string](4)
	for i, k := range []int{3, 1, 4} {
		_, hadPrior, full := s.Insert(k, "v")
		require.False(t, hadPrior)
		require.Falsef(t, full, "slot reported full after %d entries", i+1)
	}
	_, hadPrior, full := s.Insert(1, "w")
	require.True(t, hadPrior, "re-inserting an existing key should report hadPrior")
	require.False(t, full, "duplicate insert must not change the buffer size")
	require.Equal(t, 3, s.Len())

	_, hadPrior, full = s.Insert(9, "v")
	require.False(t, hadPrior)
	require.True(t, full)
	require.True(t, s.Full())
}

func TestGetAndGetMut(t *testing.T) {
	s := New[string, int](4)
	s.Insert("a", 1)
	s.Insert("b", 2)

	v, ok := s.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	p, ok := s.GetMut("b")
	require.True(t, ok)
	*p = 20
	v, _ = s.Get("b")
	require.Equal(t, 20, v)

	_, ok = s.Get("missing")
	require.False(t, ok)
}

func TestRemove(t *testing.T) {
	s := New[int, int](4)
	s.Insert(1, 10)
	s.Insert(2, 20)
	s.Insert(3, 30)

	v, ok := s.Remove(2)
	require.True(t, ok)
	require.Equal(t, 20, v)
	require.Equal(t, 2, s.Len())
	require.False(t, s.Contains(2))

	_, ok = s.Remove(99)
	require.False(t, ok)
}

func TestSortedDrainOrdersAscending(t *testing.T) {
	s := New[int, string](8)
	for _, k := range []int{5, 1, 4, 2, 3} {
		s.Insert(k, "x")
	}
	keys, values := s.SortedDrain()
	require.Equal(t, []int{1, 2, 3, 4, 5}, keys)
	require.Len(t, values, 5)
	require.Equal(t, 0, s.Len())
}

func TestSnapshotDoesNotDrain(t *testing.T) {
	s := New[int, int](8)
	s.Insert(2, 20)
	s.Insert(1, 10)
	keys, values := s.Snapshot()
	require.Equal(t, []int{1, 2}, keys)
	require.Equal(t, []int{10, 20}, values)
	require.Equal(t, 2, s.Len(), "Snapshot must not drain the buffer")
}

func TestDrainUnspecifiedOrderButComplete(t *testing.T) {
	s := New[int, int](8)
	want := map[int]int{1: 10, 2: 20, 3: 30}
	for k, v := range want {
		s.Insert(k, v)
	}
	keys, values := s.Drain()
	require.Len(t, keys, 3)
	got := map[int]int{}
	for i, k := range keys {
		got[k] = values[i]
	}
	require.Equal(t, want, got)
	require.Equal(t, 0, s.Len())
}
