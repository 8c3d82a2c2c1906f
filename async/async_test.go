package async_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/beamtrade/beam/async"
	"github.com/beamtrade/beam/routines"
	"github.com/stretchr/testify/require"
)

func TestSetThenGetReturnsImmediately(t *testing.T) {
	ev := async.NewEval[int]()
	ev.Set(42)
	ctx := routines.ExternalContext(context.Background())
	v, err := ev.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestGetBlocksUntilSet(t *testing.T) {
	ev := async.NewEval[string]()
	ctx := routines.ExternalContext(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	var got string
	go func() {
		defer wg.Done()
		v, err := ev.Get(ctx)
		require.NoError(t, err)
		got = v
	}()

	time.Sleep(20 * time.Millisecond)
	ev.Set("hello")
	wg.Wait()
	require.Equal(t, "hello", got)
}

func TestSetExceptionRethrows(t *testing.T) {
	ev := async.NewEval[int]()
	boom := errors.New("boom")
	ev.SetException(boom)
	ctx := routines.ExternalContext(context.Background())
	_, err := ev.Get(ctx)
	require.ErrorIs(t, err, boom)
}

func TestSetIsIdempotent(t *testing.T) {
	ev := async.NewEval[int]()
	ev.Set(1)
	ev.Set(2)
	ev.SetException(errors.New("ignored"))
	ctx := routines.ExternalContext(context.Background())
	v, err := ev.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

func TestManyWaitersAllResume(t *testing.T) {
	ev := async.NewEval[int]()
	const n = 8
	order := make(chan int, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			ctx := routines.ExternalContext(context.Background())
			v, err := ev.Get(ctx)
			require.NoError(t, err)
			require.Equal(t, 99, v)
			order <- i
		}()
	}
	time.Sleep(20 * time.Millisecond)
	ev.Set(99)
	wg.Wait()
	close(order)
	count := 0
	for range order {
		count++
	}
	require.Equal(t, n, count)
}

func TestResetAllowsReuse(t *testing.T) {
	ev := async.NewEval[int]()
	ev.Set(7)
	ev.Async().Reset()
	ev.Set(8)
	ctx := routines.ExternalContext(context.Background())
	v, err := ev.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 8, v)
}
