package syncutil_test

import (
	"strconv"
	"sync"
	"testing"

	"github.com/beamtrade/beam/util/syncutil"
	"github.com/stretchr/testify/require"
)

func TestMapGetOrInsertBuildsOnce(t *testing.T) {
	m := syncutil.NewMap[string, int]()
	builds := 0
	build := func() int { builds++; return 1 }

	require.Equal(t, 1, m.GetOrInsert("a", build))
	require.Equal(t, 1, m.GetOrInsert("a", build))
	require.Equal(t, 1, builds)
}

func TestMapInsertUpdateEraseFind(t *testing.T) {
	m := syncutil.NewMap[string, int]()
	require.True(t, m.Insert("a", 1))
	require.False(t, m.Insert("a", 2))
	v, ok := m.Find("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	m.Update("a", 2)
	v, ok = m.Find("a")
	require.True(t, ok)
	require.Equal(t, 2, v)

	m.Erase("a")
	_, ok = m.Find("a")
	require.False(t, ok)
}

func TestMapConcurrentInsertsAllSucceedExactlyOncePerKey(t *testing.T) {
	m := syncutil.NewMap[int, int]()
	var wg sync.WaitGroup
	const n = 200
	inserted := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			inserted[i] = m.Insert(i, i)
		}(i)
	}
	wg.Wait()
	require.Equal(t, n, m.Len())
	for _, ok := range inserted {
		require.True(t, ok)
	}
}

func TestSetInsertContainsErase(t *testing.T) {
	s := syncutil.NewSet[string]()
	require.True(t, s.Insert("a"))
	require.False(t, s.Insert("a"))
	require.True(t, s.Contains("a"))
	s.Erase("a")
	require.False(t, s.Contains("a"))
}

func TestListRemoveIfPreservesOrder(t *testing.T) {
	l := syncutil.NewList[int]()
	for i := 0; i < 5; i++ {
		l.PushBack(i)
	}
	l.RemoveIf(func(v int) bool { return v%2 == 0 })

	var seen []int
	l.ForEach(func(v int) { seen = append(seen, v) })
	require.Equal(t, []int{1, 3}, seen)
}

func TestListWithReplacesUnderlyingSlice(t *testing.T) {
	l := syncutil.NewList[string]()
	l.PushBack("x")
	l.With(func(data []string) []string {
		return append(data, "y", "z")
	})
	require.Equal(t, 3, l.Len())
}

func TestMapWithIteratesEntries(t *testing.T) {
	m := syncutil.NewMap[int, string]()
	for i := 0; i < 3; i++ {
		m.Insert(i, strconv.Itoa(i))
	}
	var keys []int
	m.With(func(data map[int]string) {
		for k := range data {
			keys = append(keys, k)
		}
	})
	require.Len(t, keys, 3)
}
