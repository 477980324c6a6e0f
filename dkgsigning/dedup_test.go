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
)

func TestDedupCacheSeenBeforeMarksOnFirstSight(t *testing.T) {
	d := newDedupCache(8)
	fp := Fingerprint{1}
	hash := [32]byte{2}

	assert.False(t, d.seenBefore(fp, 0, hash))
	assert.True(t, d.seenBefore(fp, 0, hash))
}

func TestDedupCacheDistinguishesSsidAndHash(t *testing.T) {
	d := newDedupCache(8)
	fp := Fingerprint{1}
	hashA := [32]byte{1}
	hashB := [32]byte{2}

	assert.False(t, d.seenBefore(fp, 0, hashA))
	assert.False(t, d.seenBefore(fp, 1, hashA))
	assert.False(t, d.seenBefore(fp, 0, hashB))
}
