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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authorities(positions ...int) []AuthorityEntry {
	out := make([]AuthorityEntry, len(positions))
	for i, p := range positions {
		out[i] = AuthorityEntry{Position: p, PublicKey: []byte{byte(p)}}
	}
	return out
}

func TestGenerateSignersDeterministicAcrossCalls(t *testing.T) {
	seed := [32]byte{1, 2, 3, 4}
	unjailed := authorities(0, 1, 2, 3, 4, 5, 6)

	set1, err := GenerateSigners(seed, 3, unjailed, nil, 7)
	require.NoError(t, err)
	set2, err := GenerateSigners(seed, 3, unjailed, nil, 7)
	require.NoError(t, err)

	assert.Equal(t, set1, set2)
	assert.Len(t, set1, 4)
}

func TestGenerateSignersVariesWithSeed(t *testing.T) {
	unjailed := authorities(0, 1, 2, 3, 4, 5, 6)

	set1, err := GenerateSigners([32]byte{1}, 3, unjailed, nil, 7)
	require.NoError(t, err)
	set2, err := GenerateSigners([32]byte{2}, 3, unjailed, nil, 7)
	require.NoError(t, err)

	assert.NotEqual(t, set1, set2)
}

func TestGenerateSignersNoDuplicates(t *testing.T) {
	seed := [32]byte{9, 9, 9}
	unjailed := authorities(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)

	set, err := GenerateSigners(seed, 5, unjailed, nil, 10)
	require.NoError(t, err)
	require.Len(t, set, 6)

	seen := make(map[PartyId]bool)
	for _, p := range set {
		assert.False(t, seen[p], "duplicate party id in signing set")
		seen[p] = true
	}
}

func TestGenerateSignersJailedTopUp(t *testing.T) {
	seed := [32]byte{5, 5, 5}
	// Only two unjailed, but threshold 3 requires 4 signers: must top up
	// from jailed in list order.
	unjailed := authorities(0, 1)
	jailed := authorities(2, 3, 4)

	set, err := GenerateSigners(seed, 3, unjailed, jailed, 5)
	require.NoError(t, err)
	assert.Len(t, set, 4)
}

func TestGenerateSignersInsufficientPoolErrors(t *testing.T) {
	seed := [32]byte{1}
	unjailed := authorities(0, 1)
	jailed := authorities(2)

	_, err := GenerateSigners(seed, 5, unjailed, jailed, 3)
	assert.True(t, errors.Is(err, ErrCommitteeSelectionFailed))
}

func TestGenerateSignersSingleSignerThreshold(t *testing.T) {
	seed := [32]byte{7}
	unjailed := authorities(0, 1, 2)

	set, err := GenerateSigners(seed, 0, unjailed, nil, 3)
	require.NoError(t, err)
	assert.Len(t, set, 1)
}
