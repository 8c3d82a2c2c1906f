// Package queue implements the multi-producer single-consumer blocking
// queue of spec §2: the queue is unbounded and Push never blocks the
// caller beyond taking the queue's mutex, Pop blocks a waiting consumer routine until an item arrives or the
// queue is closed, at which point every blocked and future Pop fails with
// ErrPipeBroken (spec §5: "Closing a Queue makes pop() throw PipeBroken
// once drained").
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package queue

import (
	"sync"

	"github.com/beamtrade/beam/cmn/cos"
)

// Queue[T] is grounded on the teacher's transport.MsgStream work-channel
// idiom (transport/sendmsg.go: `workCh chan *Msg`, closed-channel
// detection via the two-value receive) generalized into a reusable FIFO
// with an explicit Close/Break.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	closed bool
}

func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues an item. Pushing to a closed queue is a silent no-op -
// the producer side observes closure only by having its own Channel/Async
// fail, never through Push's return value, matching spec §4.5's
// "Writer enqueues bytes ... completion signaled separately" shape.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, item)
	q.cond.Signal()
}

// Pop blocks the calling routine until an item is available or the queue
// is closed and drained, returning cos.ErrPipeBroken in the latter case.
func (q *Queue[T]) Pop() (item T, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return item, cos.ErrPipeBroken
	}
	item = q.items[0]
	q.items = q.items[1:]
	return item, nil
}

// TryPop returns immediately: (item, true, nil) if one was available,
// (zero, false, nil) if empty-but-open, (zero, false, ErrPipeBroken) if
// empty-and-closed.
func (q *Queue[T]) TryPop() (item T, ok bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		if q.closed {
			return item, false, cos.ErrPipeBroken
		}
		return item, false, nil
	}
	item = q.items[0]
	q.items = q.items[1:]
	return item, true, nil
}

// Close breaks the queue: every blocked Pop wakes with ErrPipeBroken once
// remaining items (if any) are drained, and all subsequent Pops do the
// same. Close is idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
