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

// Package dkgsigning implements the signing orchestration core: the
// deterministic committee-election loop driven by finalized-block events
// (SigningManager) and the bounded task scheduler with message fan-in for
// the cryptographic protocol instances it spawns (WorkManager).
package dkgsigning

import (
	"encoding/hex"
	"fmt"
)

// Fingerprint is the 32-byte canonical digest of a proposal batch. It is
// the sole identity of a Job: equality, hashing, and set membership all
// project onto it.
type Fingerprint [32]byte

func (f Fingerprint) String() string { return hex.EncodeToString(f[:]) }

// SessionId identifies the keygen epoch that produced the DKG public key
// used to sign. It is constant within a session.
type SessionId uint64

// SsidIndex enumerates candidate signing-set attempts for one proposal
// within one session, in [0, K).
type SsidIndex uint8

// BlockNumber is the chain height type used for associated-block-id
// acceptance checks and stall detection.
type BlockNumber uint64

// PartyId identifies a participant among the best authorities. It carries
// the validity invariant: non-zero length backing index, within [0, N).
type PartyId struct {
	idx uint16
}

// NewPartyID converts an authority's position in the best-authorities list
// into a PartyId, enforcing that the position is within [0, n).
func NewPartyID(position, n int) (PartyId, error) {
	if position < 0 || n <= 0 || position >= n {
		return PartyId{}, fmt.Errorf("%w: position %d out of range [0, %d)", ErrInvalidPartyID, position, n)
	}
	return PartyId{idx: uint16(position + 1)}, nil
}

// Index returns the zero-based position this PartyId was constructed from.
func (p PartyId) Index() int { return int(p.idx) - 1 }

// Valid reports whether p was constructed through NewPartyID.
func (p PartyId) Valid() bool { return p.idx != 0 }

func (p PartyId) String() string {
	if !p.Valid() {
		return "PartyId(invalid)"
	}
	return fmt.Sprintf("PartyId(%d)", p.Index())
}

// AuthorityEntry pairs a best-authority's list position with its public
// key, as returned by ChainClient.GetBestAuthorities and partitioned by
// GetUnjailedSigners/GetJailedSigners.
type AuthorityEntry struct {
	Position  int
	PublicKey []byte
}

// TypedChainID is the typed chain identifier carried by a proposal; the
// zero value's IsRotationPriority reports false only when set explicitly
// via NewTypedChainID. A proposal with no TypedChainID is a
// rotation-priority proposal and is force-started.
type TypedChainID struct {
	set   bool
	value uint64
}

// NewTypedChainID returns a populated, non-rotation-priority chain id.
func NewTypedChainID(v uint64) TypedChainID { return TypedChainID{set: true, value: v} }

// IsRotationPriority reports whether this sentinel represents an unset
// ("None") chain id, i.e. a rotation-priority batch.
func (t TypedChainID) IsRotationPriority() bool { return !t.set }

// Value returns the chain id and whether one was set.
func (t TypedChainID) Value() (uint64, bool) { return t.value, t.set }

// ProposalBatch is an opaque unsigned-proposal payload with an associated
// timestamp used for age-ordering and a canonical encoding used for
// seeding.
type ProposalBatch struct {
	Timestamp    uint64
	TypedChainID TypedChainID
	Payload      []byte
}

// rlpProposalBatch is the canonical wire shape encoded for fingerprinting
// and seeding. TypedChainID's "None" sentinel becomes HasChainID=false,
// ChainID=0, matching the original SCALE Option<T> encoding's intent with
// RLP's closest equivalent (an explicit presence flag).
type rlpProposalBatch struct {
	Timestamp  uint64
	HasChainID bool
	ChainID    uint64
	Payload    []byte
}

func (b ProposalBatch) toRLP() rlpProposalBatch {
	chainID, has := b.TypedChainID.Value()
	return rlpProposalBatch{Timestamp: b.Timestamp, HasChainID: has, ChainID: chainID, Payload: b.Payload}
}

// BlockHeader is the minimal header surface SigningManager needs: its
// hash (to look up unsigned proposals) and its number (the associated
// block id stamped on spawned signing tasks).
type BlockHeader interface {
	Hash() [32]byte
	Number() BlockNumber
}
