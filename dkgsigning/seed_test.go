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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFingerprintDeterministic(t *testing.T) {
	batch := ProposalBatch{Timestamp: 42, TypedChainID: NewTypedChainID(7), Payload: []byte("proposal-bytes")}

	fp1, err := ComputeFingerprint(batch)
	require.NoError(t, err)
	fp2, err := ComputeFingerprint(batch)
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2)
}

func TestComputeFingerprintDistinguishesChainID(t *testing.T) {
	withChain := ProposalBatch{Timestamp: 1, TypedChainID: NewTypedChainID(1), Payload: []byte("x")}
	rotationPriority := ProposalBatch{Timestamp: 1, TypedChainID: TypedChainID{}, Payload: []byte("x")}

	fp1, err := ComputeFingerprint(withChain)
	require.NoError(t, err)
	fp2, err := ComputeFingerprint(rotationPriority)
	require.NoError(t, err)

	assert.NotEqual(t, fp1, fp2)
}

func TestComputeSeedDeterministicAcrossCalls(t *testing.T) {
	batch := ProposalBatch{Timestamp: 10, TypedChainID: NewTypedChainID(99), Payload: []byte("payload")}
	dkgPubKey := []byte{0x01, 0x02, 0x03}

	seed1, err := ComputeSeed(dkgPubKey, batch, SsidIndex(0))
	require.NoError(t, err)
	seed2, err := ComputeSeed(dkgPubKey, batch, SsidIndex(0))
	require.NoError(t, err)

	assert.Equal(t, seed1, seed2)
}

func TestComputeSeedVariesWithSsid(t *testing.T) {
	batch := ProposalBatch{Timestamp: 10, TypedChainID: NewTypedChainID(99), Payload: []byte("payload")}
	dkgPubKey := []byte{0x01, 0x02, 0x03}

	seed0, err := ComputeSeed(dkgPubKey, batch, SsidIndex(0))
	require.NoError(t, err)
	seed1, err := ComputeSeed(dkgPubKey, batch, SsidIndex(1))
	require.NoError(t, err)

	assert.NotEqual(t, seed0, seed1)
}

func TestComputeSeedVariesWithDKGPubKey(t *testing.T) {
	batch := ProposalBatch{Timestamp: 10, TypedChainID: NewTypedChainID(99), Payload: []byte("payload")}

	seedA, err := ComputeSeed([]byte{0x01}, batch, SsidIndex(0))
	require.NoError(t, err)
	seedB, err := ComputeSeed([]byte{0x02}, batch, SsidIndex(0))
	require.NoError(t, err)

	assert.NotEqual(t, seedA, seedB)
}
