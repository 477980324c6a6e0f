// Copyright 2018 The klaytn Authors
// This file is part of the klaytn library.
//
// The klaytn library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The klaytn library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the klaytn library. If not, see <http://www.gnu.org/licenses/>.

package dkgsigning

import (
	"context"
	"sync"
)

// fakeClock is a mutable BlockNumber source for stall/GC tests.
type fakeClock struct {
	mu  sync.Mutex
	now BlockNumber
}

func (c *fakeClock) LatestBlockNumber() BlockNumber {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) set(n BlockNumber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = n
}

// fakeTaskHandle is a hand-written TaskHandle fake: a small purpose-built
// fake instead of a generated mock.
type fakeTaskHandle struct {
	mu         sync.Mutex
	started    bool
	startErr   error
	done       bool
	stalled    bool
	delivered  []SignedMessage
	deliverErr error
	shutdowns  []ShutdownReason
}

func (h *fakeTaskHandle) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.startErr != nil {
		return h.startErr
	}
	h.started = true
	return nil
}

func (h *fakeTaskHandle) Shutdown(reason ShutdownReason) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shutdowns = append(h.shutdowns, reason)
	return nil
}

func (h *fakeTaskHandle) DeliverMessage(msg SignedMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.deliverErr != nil {
		return h.deliverErr
	}
	h.delivered = append(h.delivered, msg)
	return nil
}

func (h *fakeTaskHandle) IsDone() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}

func (h *fakeTaskHandle) HasStalled(now BlockNumber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stalled
}

func (h *fakeTaskHandle) HasStarted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.started
}

func (h *fakeTaskHandle) IsActive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.started && !h.done
}

func (h *fakeTaskHandle) StartedAt() (BlockNumber, bool) { return 0, h.started }

func (h *fakeTaskHandle) setDone(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.done = v
}

func (h *fakeTaskHandle) setStalled(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stalled = v
}

func (h *fakeTaskHandle) deliveredCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.delivered)
}

// deliveredMessages returns a snapshot of every message delivered so far,
// in delivery order, so tests can assert on FIFO ordering.
func (h *fakeTaskHandle) deliveredMessages() []SignedMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]SignedMessage, len(h.delivered))
	copy(out, h.delivered)
	return out
}

func (h *fakeTaskHandle) shutdownCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.shutdowns)
}

// fakeDriverFuture never completes on its own: Run blocks until ctx is
// cancelled, which happens when the owning Job is closed.
type fakeDriverFuture struct{}

func (fakeDriverFuture) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// fakeHeader is the minimal BlockHeader fake.
type fakeHeader struct {
	hash [32]byte
	num  BlockNumber
}

func (h fakeHeader) Hash() [32]byte    { return h.hash }
func (h fakeHeader) Number() BlockNumber { return h.num }

// fakeChainClient is a hand-written ChainClient fake wired entirely from
// test-local fields.
type fakeChainClient struct {
	mu sync.Mutex

	sessionID    SessionId
	dkgPubKey    []byte
	position     int
	inSet        bool
	best         []AuthorityEntry
	threshold    uint16
	batches      []ProposalBatch
	unjailed     []AuthorityEntry
	jailed       []AuthorityEntry
	authorityKey []byte

	err error
}

func (c *fakeChainClient) GetDKGPubKey(ctx context.Context, header BlockHeader) (SessionId, []byte, error) {
	if c.err != nil {
		return 0, nil, c.err
	}
	return c.sessionID, c.dkgPubKey, nil
}

func (c *fakeChainClient) GetPartyIndex(ctx context.Context, header BlockHeader) (int, bool, error) {
	if c.err != nil {
		return 0, false, c.err
	}
	return c.position, c.inSet, nil
}

func (c *fakeChainClient) GetBestAuthorities(ctx context.Context, header BlockHeader) ([]AuthorityEntry, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.best, nil
}

func (c *fakeChainClient) GetSignatureThreshold(ctx context.Context, header BlockHeader) (uint16, error) {
	if c.err != nil {
		return 0, c.err
	}
	return c.threshold, nil
}

func (c *fakeChainClient) GetUnsignedProposalBatches(ctx context.Context, blockHash [32]byte) ([]ProposalBatch, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.batches, nil
}

func (c *fakeChainClient) GetUnjailedSigners(ctx context.Context, keys []AuthorityEntry) ([]AuthorityEntry, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.unjailed, nil
}

func (c *fakeChainClient) GetJailedSigners(ctx context.Context, keys []AuthorityEntry) ([]AuthorityEntry, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.jailed, nil
}

func (c *fakeChainClient) AuthorityPublicKey() []byte { return c.authorityKey }

// fakeProtocolFactory records every setup call and hands back caller-armed
// handles so tests can assert on PushTask wiring without a real protocol.
type fakeProtocolFactory struct {
	mu     sync.Mutex
	calls  []SigningProtocolSetupParameters
	handle *fakeTaskHandle
	err    error
}

func (f *fakeProtocolFactory) InitializeSigningProtocol(ctx context.Context, params SigningProtocolSetupParameters) (TaskHandle, DriverFuture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, nil, f.err
	}
	h := f.handle
	if h == nil {
		h = &fakeTaskHandle{}
	}
	return h, fakeDriverFuture{}, nil
}

func (f *fakeProtocolFactory) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
