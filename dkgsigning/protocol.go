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

// SigningProtocolSetupParameters is handed to the ProtocolFactory to spin
// up one multi-party signing task. The multi-party ECDSA protocol itself
// is out of scope for this core.
type SigningProtocolSetupParameters struct {
	BestAuthorities    []AuthorityEntry
	AuthorityPublicKey []byte
	PartyI             PartyId
	SessionID          SessionId
	Threshold          uint16
	Fingerprint        Fingerprint
	Batch              ProposalBatch
	SigningSet         []PartyId
	AssociatedBlockID  BlockNumber
	Ssid               SsidIndex
}

// ShutdownReason records why a Job's handle was shut down.
type ShutdownReason int

const (
	// ShutdownStalled is used when Poll evicts a job whose handle
	// reported it has stalled.
	ShutdownStalled ShutdownReason = iota
	// ShutdownDropCode is used by the Job's own Close(), the Go
	// substitute for Rust's scoped-release Drop.
	ShutdownDropCode
	// ShutdownForceAll is used by WorkManager.ForceShutdownAll.
	ShutdownForceAll
	// ShutdownStartFailed is used when handle.Start() itself errors.
	ShutdownStartFailed
)

// SignedMessage is a peer-gossiped protocol message.
type SignedMessage struct {
	SessionID         SessionId
	Ssid              SsidIndex
	AssociatedBlockID BlockNumber
	Payload           MessagePayload
}

// MessagePayload carries the fingerprint this message is destined for, if
// any; messages with no fingerprint fail delivery. Raw is the opaque
// multi-party protocol payload, used only to distinguish
// otherwise-identical-looking messages for gossip dedup.
type MessagePayload struct {
	UnsignedProposalHash *Fingerprint
	Raw                  []byte
}

// TaskHandle is the remote-control handle for one in-flight signing task,
// owned by its Job: start, shutdown, deliver_message, is_done,
// has_stalled, has_started, is_active, started_at.
type TaskHandle interface {
	Start() error
	Shutdown(reason ShutdownReason) error
	DeliverMessage(msg SignedMessage) error
	IsDone() bool
	HasStalled(now BlockNumber) bool
	HasStarted() bool
	IsActive() bool
	StartedAt() (BlockNumber, bool)
}

// DriverFuture is the black-box future driving a signing protocol once
// started; it consumes injected peer messages via the TaskHandle and
// eventually completes on its own.
type DriverFuture interface {
	// Run blocks until the protocol completes or ctx is cancelled.
	Run(ctx context.Context) error
}

// ProtocolFactory is the external collaborator that constructs a signing
// task from setup parameters. The concrete multi-party ECDSA
// implementation is out of scope for this core.
type ProtocolFactory interface {
	InitializeSigningProtocol(ctx context.Context, params SigningProtocolSetupParameters) (TaskHandle, DriverFuture, error)
}
