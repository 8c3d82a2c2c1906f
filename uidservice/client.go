// Package uidservice implements UidClient (SPEC_FULL.md supplement C.7):
// the simplest possible concrete service built on the request/response
// protocol, handing out blocks of monotonically increasing 64-bit ids.
// Grounded on original_source/Beam/Source/UidServiceTests/
// UidClientTester.cpp: LoadNextUid serves ids out of a locally-held
// block, issuing a ReserveUidsService request for a fresh block only
// once the current one is exhausted.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package uidservice

import (
	"context"
	"sync"

	"github.com/beamtrade/beam/services"
)

const tagReserveUidsService = "ReserveUidsService"

const defaultBlockSize = 100

type reserveParams struct {
	BlockSize uint64 `json:"block_size"`
}

// Client serves sequential ids out of a block reserved from the remote
// uid service, requesting a new block only when the current one runs
// out - so concurrent callers sharing one Client see at most one
// ReserveUidsService round trip per blockSize ids handed out.
type Client struct {
	proto     *services.Protocol
	blockSize uint64

	mu   sync.Mutex
	next uint64
	end  uint64
}

// New wires a Client issuing requests over proto, reserving blockSize ids
// at a time (defaultBlockSize if blockSize is zero).
func New(proto *services.Protocol, blockSize uint64) *Client {
	if blockSize == 0 {
		blockSize = defaultBlockSize
	}
	return &Client{proto: proto, blockSize: blockSize}
}

// LoadNextUid returns the next id in the currently-held block, reserving
// a fresh block first if the current one is exhausted.
func (c *Client) LoadNextUid(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.next >= c.end {
		base, err := services.SendRequestAs[uint64](ctx, c.proto, tagReserveUidsService, reserveParams{BlockSize: c.blockSize})
		if err != nil {
			return 0, err
		}
		c.next = base
		c.end = base + c.blockSize
	}
	uid := c.next
	c.next++
	return uid, nil
}
