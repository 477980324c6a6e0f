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
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
)

// GenerateSigners elects a deterministic committee: given a 32-byte seed,
// threshold t, and the best authorities partitioned into unjailed/jailed,
// it produces a deterministic set of t+1 PartyIds.
//
// Two honest nodes calling GenerateSigners with identical arguments always
// get identical results: the only source of randomness is a ChaCha20
// keystream seeded entirely by `seed`, never the system RNG.
func GenerateSigners(seed [32]byte, t uint16, unjailed, jailed []AuthorityEntry, n int) ([]PartyId, error) {
	want := int(t) + 1

	// Step 1-2: top up from jailed, in list order, if unjailed is short.
	pool := make([]AuthorityEntry, len(unjailed))
	copy(pool, unjailed)
	if len(pool) <= int(t) {
		diff := want - len(pool)
		if diff > len(jailed) {
			diff = len(jailed)
		}
		pool = append(pool, jailed[:diff]...)
	}

	if len(pool) < want {
		return nil, ErrCommitteeSelectionFailed
	}

	// Step 3: deterministic sampler — partial Fisher-Yates over the pool
	// indices, driven by a ChaCha20 keystream keyed on `seed`. This is the
	// Go-idiomatic, full-32-byte-seed upgrade of a math/rand.NewSource
	// (int64)-seeded shuffle, which would truncate the 32-byte seed.
	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}
	stream := newSeedStream(seed)
	for i := 0; i < want; i++ {
		j := i + stream.intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	// Step 4: map back to PartyId, dropping invalid conversions; the
	// caller-supplied n is the authority-set size used for validity.
	selected := make([]PartyId, 0, want)
	for _, i := range idx[:want] {
		pid, err := NewPartyID(pool[i].Position, n)
		if err != nil {
			continue
		}
		selected = append(selected, pid)
	}

	if len(selected) < want {
		return nil, ErrCommitteeSelectionFailed
	}
	return selected, nil
}

// seedStream is a deterministic uniform-integer source keyed entirely by
// a 32-byte seed, used to drive the Fisher-Yates shuffle in
// GenerateSigners. It draws from a ChaCha20 keystream (zero nonce; the
// seed is never reused across different logical draws because each
// GenerateSigners call constructs a fresh stream from its own seed).
type seedStream struct {
	cipher *chacha20.Cipher
	zeros  [8]byte
}

func newSeedStream(seed [32]byte) *seedStream {
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], make([]byte, chacha20.NonceSize))
	if err != nil {
		// chacha20.NewUnauthenticatedCipher only errors on bad key/nonce
		// length, both of which are fixed-size and correct here.
		panic(err)
	}
	return &seedStream{cipher: c}
}

// intn returns a uniform value in [0, n) using rejection sampling over
// the ChaCha20 keystream so the result is unbiased for any n.
func (s *seedStream) intn(n int) int {
	if n <= 0 {
		return 0
	}
	const maxUint64 = ^uint64(0)
	limit := maxUint64 - maxUint64%uint64(n)
	for {
		var buf [8]byte
		s.cipher.XORKeyStream(buf[:], s.zeros[:])
		v := binary.LittleEndian.Uint64(buf[:])
		if v < limit {
			return int(v % uint64(n))
		}
	}
}
