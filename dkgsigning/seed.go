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
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/sha3"
)

// ComputeFingerprint returns the canonical 32-byte hash of a proposal
// batch, the same function used by proposal producers and by
// SigningManager to build the key it passes to WorkManager.JobExists.
func ComputeFingerprint(batch ProposalBatch) (Fingerprint, error) {
	enc, err := rlp.EncodeToBytes(batch.toRLP())
	if err != nil {
		return Fingerprint{}, err
	}
	return keccak256Array(enc), nil
}

// ComputeSeed computes the bit-exact, cross-node-deterministic seed used
// to select a candidate signing set for one proposal/ssid pair:
//
//	keccak256(dkgPubKey ++ rlp(batch) ++ rlp(ssid))
//
// Concatenation order is fixed: every node must compute the identical
// seed from the identical inputs.
func ComputeSeed(dkgPubKey []byte, batch ProposalBatch, ssid SsidIndex) ([32]byte, error) {
	batchBytes, err := rlp.EncodeToBytes(batch.toRLP())
	if err != nil {
		return [32]byte{}, err
	}
	ssidBytes, err := rlp.EncodeToBytes(uint8(ssid))
	if err != nil {
		return [32]byte{}, err
	}

	buf := make([]byte, 0, len(dkgPubKey)+len(batchBytes)+len(ssidBytes))
	buf = append(buf, dkgPubKey...)
	buf = append(buf, batchBytes...)
	buf = append(buf, ssidBytes...)

	return keccak256Array(buf), nil
}

func keccak256Array(data []byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out [32]byte
	h.Sum(out[:0])
	return out
}
