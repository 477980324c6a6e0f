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

import "context"

// ChainClient is the external collaborator that answers on-chain queries.
// It is explicitly out of scope for this core: production implementations
// query the underlying blockchain client.
type ChainClient interface {
	// GetDKGPubKey returns the current session id and DKG public key bytes
	// active at header.
	GetDKGPubKey(ctx context.Context, header BlockHeader) (SessionId, []byte, error)

	// GetPartyIndex returns this node's position among the best
	// authorities at header, or ok=false if it is not a member.
	GetPartyIndex(ctx context.Context, header BlockHeader) (position int, ok bool, err error)

	// GetBestAuthorities returns the current best-authority set.
	GetBestAuthorities(ctx context.Context, header BlockHeader) ([]AuthorityEntry, error)

	// GetSignatureThreshold returns t, the minimum tolerated corruptions;
	// a valid signing set has size t+1.
	GetSignatureThreshold(ctx context.Context, header BlockHeader) (uint16, error)

	// GetUnsignedProposalBatches returns the pending unsigned proposal
	// batches at blockHash.
	GetUnsignedProposalBatches(ctx context.Context, blockHash [32]byte) ([]ProposalBatch, error)

	// GetUnjailedSigners and GetJailedSigners partition keys (a subset of
	// the best authorities' public keys) by jailed status.
	GetUnjailedSigners(ctx context.Context, keys []AuthorityEntry) ([]AuthorityEntry, error)
	GetJailedSigners(ctx context.Context, keys []AuthorityEntry) ([]AuthorityEntry, error)

	// AuthorityPublicKey returns this node's own authority public key,
	// stamped into SigningProtocolSetupParameters.
	AuthorityPublicKey() []byte
}

// Clock answers the WorkManager's notion of "now" for stall detection and
// the buffer GC's block-acceptance window.
type Clock interface {
	LatestBlockNumber() BlockNumber
}
