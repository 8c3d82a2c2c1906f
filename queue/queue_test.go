package queue_test

import (
	"sync"
	"testing"

	"github.com/beamtrade/beam/cmn/cos"
	"github.com/beamtrade/beam/queue"
	"github.com/stretchr/testify/require"
)

func TestPushPop(t *testing.T) {
	q := queue.New[int]()
	q.Push(1)
	q.Push(2)
	v, err := q.Pop()
	require.NoError(t, err)
	require.Equal(t, 1, v)
	v, err = q.Pop()
	require.NoError(t, err)
	require.Equal(t, 2, v)
}

func TestPopBlocksUntilPush(t *testing.T) {
	q := queue.New[string]()
	var wg sync.WaitGroup
	wg.Add(1)
	var got string
	go func() {
		defer wg.Done()
		v, err := q.Pop()
		require.NoError(t, err)
		got = v
	}()
	q.Push("hello")
	wg.Wait()
	require.Equal(t, "hello", got)
}

func TestCloseBreaksBlockedPop(t *testing.T) {
	q := queue.New[int]()
	var wg sync.WaitGroup
	wg.Add(1)
	var popErr error
	go func() {
		defer wg.Done()
		_, popErr = q.Pop()
	}()
	q.Close()
	wg.Wait()
	require.ErrorIs(t, popErr, cos.ErrPipeBroken)
}

func TestCloseDrainsBeforeBreaking(t *testing.T) {
	q := queue.New[int]()
	q.Push(42)
	q.Close()
	v, err := q.Pop()
	require.NoError(t, err)
	require.Equal(t, 42, v)
	_, err = q.Pop()
	require.ErrorIs(t, err, cos.ErrPipeBroken)
}

func TestPushAfterCloseIsNoop(t *testing.T) {
	q := queue.New[int]()
	q.Close()
	q.Push(1)
	require.Equal(t, 0, q.Len())
}
