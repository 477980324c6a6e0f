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

import "github.com/pkg/errors"

// Sentinel error kinds returned across this package.
var (
	ErrChainQueryFailed         = errors.New("dkgsigning: chain query failed")
	ErrCommitteeSelectionFailed = errors.New("dkgsigning: committee selection failed")
	ErrProtocolInitFailed       = errors.New("dkgsigning: protocol init failed")
	ErrAdmissionOverflow        = errors.New("dkgsigning: enqueued task queue is full")
	ErrWakeupChannelClosed      = errors.New("dkgsigning: wakeup channel closed")
	ErrMessageDeliveryFailed    = errors.New("dkgsigning: message delivery failed")

	// ErrJobExists is returned when PushTask is called for a fingerprint
	// that is already active or enqueued: duplicates are rejected rather
	// than silently ignored.
	ErrJobExists = errors.New("dkgsigning: job with this fingerprint already active or enqueued")

	// ErrInvalidPartyID is returned by NewPartyID on an out-of-range
	// position.
	ErrInvalidPartyID = errors.New("dkgsigning: invalid party id")

	// ErrNoFingerprint is returned by DeliverMessage when the incoming
	// payload carries no unsigned-proposal hash.
	ErrNoFingerprint = errors.New("dkgsigning: message payload has no fingerprint")
)

// OpError wraps a sentinel error kind with the operation and fingerprint
// that produced it, in the github.com/pkg/errors call-site wrapping style.
type OpError struct {
	Op          string
	Fingerprint Fingerprint
	Err         error
}

func (e *OpError) Error() string { return e.Err.Error() }

func (e *OpError) Unwrap() error { return e.Err }

func opErr(op string, fp Fingerprint, err error) error {
	return &OpError{Op: op, Fingerprint: fp, Err: errors.Wrapf(err, "%s %s", op, fp.String())}
}
