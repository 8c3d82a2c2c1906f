// Package pipe provides an in-memory network.Channel pair connected by
// io.Pipe, used by tests that need a Channel without a real socket -
// spec §4.8's "test in-memory channels to be plugged in" builder kind.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package pipe

import (
	"context"
	"io"
	"sync"

	"github.com/beamtrade/beam/cmn/cos"
	"github.com/beamtrade/beam/cmn/ratomic"
	"github.com/beamtrade/beam/network"
	"github.com/beamtrade/beam/threading"
)

type side struct {
	r      *io.PipeReader
	w      *io.PipeWriter
	closed ratomic.Bool
}

func (s *side) Close() error {
	if !s.closed.CAS(false, true) {
		return nil
	}
	s.r.Close()
	return s.w.Close()
}

func (s *side) IsOpen() bool { return !s.closed.Load() }

type reader struct {
	mu sync.Mutex
	s  *side
}

func (r *reader) Read(ctx context.Context, buf *cos.SharedBuffer, max int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.s.IsOpen() {
		return 0, cos.ErrPipeBroken
	}
	scratch := make([]byte, max)
	n, err := r.s.r.Read(scratch)
	if n > 0 {
		buf.Buffer().Append(scratch[:n])
	}
	if err != nil {
		if err == io.EOF || err == io.ErrClosedPipe {
			return n, cos.ErrEndOfFile
		}
		return n, cos.Wrap(err, "pipe read")
	}
	return n, nil
}

type writer struct {
	s      *side
	runner *threading.TaskRunner
}

func (w *writer) Write(ctx context.Context, data []byte) error {
	if !w.s.IsOpen() {
		return cos.ErrPipeBroken
	}
	done := make(chan error, 1)
	w.runner.Add(func() {
		if !w.s.IsOpen() {
			done <- cos.ErrPipeBroken
			return
		}
		_, err := w.s.w.Write(data)
		if err != nil {
			done <- cos.Wrap(err, "pipe write")
			return
		}
		done <- nil
	})
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func newEnd(id string, r *io.PipeReader, w *io.PipeWriter) *network.Channel {
	s := &side{r: r, w: w}
	return network.NewChannel(network.StringIdentifier(id),
		s, &reader{s: s}, &writer{s: s, runner: threading.NewTaskRunner()})
}

// New returns two connected Channels: bytes written to one's Writer are
// read from the other's Reader, and vice versa.
func New() (a, b *network.Channel) {
	r1, w1 := io.Pipe()
	r2, w2 := io.Pipe()
	a = newEnd("pipe-a", r1, w2)
	b = newEnd("pipe-b", r2, w1)
	return a, b
}
