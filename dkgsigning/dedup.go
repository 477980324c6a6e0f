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

import lru "github.com/hashicorp/golang-lru"

// dedupCache guards against delivering the same gossiped message twice,
// the way an ARC-cache-backed recentMessages/knownMessages pair guards a
// consensus message handler against reprocessing rebroadcast messages.
// Real gossip layers retransmit, so this hardens against double delivery
// even though the upstream protocol is expected to be idempotent.
type dedupCache struct {
	seen *lru.ARCCache
}

func newDedupCache(size int) *dedupCache {
	c, err := lru.NewARC(size)
	if err != nil {
		// Only returns an error for a non-positive size; callers pass a
		// fixed positive constant, so this is unreachable in practice.
		panic(err)
	}
	return &dedupCache{seen: c}
}

type dedupKey struct {
	fp   Fingerprint
	ssid SsidIndex
	hash [32]byte
}

// seenBefore reports whether an identical (fingerprint, ssid, payload)
// message was already processed, marking it seen as a side effect.
func (d *dedupCache) seenBefore(fp Fingerprint, ssid SsidIndex, payloadHash [32]byte) bool {
	key := dedupKey{fp: fp, ssid: ssid, hash: payloadHash}
	if d.seen.Contains(key) {
		return true
	}
	d.seen.Add(key, struct{}{})
	return false
}
