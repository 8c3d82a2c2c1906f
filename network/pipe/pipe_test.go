package pipe_test

import (
	"context"
	"testing"

	"github.com/beamtrade/beam/cmn/cos"
	"github.com/beamtrade/beam/network/pipe"
	"github.com/stretchr/testify/require"
)

func TestPipeRoundTrip(t *testing.T) {
	a, b := pipe.New()
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- a.Writer().Write(ctx, []byte("hello")) }()

	buf := cos.NewSharedBuffer(cos.NewBuffer(16))
	n, err := b.Reader().Read(ctx, buf, 16)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", string(buf.Buffer().Data()))
	require.NoError(t, <-done)
}

func TestPipeCloseBreaksReadsAndWrites(t *testing.T) {
	a, b := pipe.New()
	ctx := context.Background()

	require.NoError(t, a.Close())

	buf := cos.NewSharedBuffer(cos.NewBuffer(16))
	_, err := b.Reader().Read(ctx, buf, 16)
	require.Error(t, err)

	err = a.Writer().Write(ctx, []byte("x"))
	require.ErrorIs(t, err, cos.ErrPipeBroken)
}

func TestPipeCloseIsIdempotent(t *testing.T) {
	a, _ := pipe.New()
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
}
