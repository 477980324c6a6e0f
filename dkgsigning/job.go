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
	"context"
	"sync"

	"github.com/klaytn/dkg-signing-core/log"
)

// Job is a running or queued signing task. Its identity is its
// Fingerprint alone: equality and set membership project onto it, never
// session id or ssid.
type Job struct {
	Fingerprint       Fingerprint
	SessionID         SessionId
	Ssid              SsidIndex
	AssociatedBlockID BlockNumber
	handle            TaskHandle
	driver            DriverFuture
	cancel            context.CancelFunc

	closeOnce sync.Once
	logger    *log.ModuleLogger
}

// newJob builds a Job wrapping the handle/driver pair the ProtocolFactory
// returned. The driver is owned by the Job: once Close releases it, the
// protocol is considered terminated.
func newJob(fp Fingerprint, sessionID SessionId, ssid SsidIndex, blockID BlockNumber, handle TaskHandle, driver DriverFuture, logger *log.ModuleLogger) *Job {
	return &Job{
		Fingerprint:       fp,
		SessionID:         sessionID,
		Ssid:              ssid,
		AssociatedBlockID: blockID,
		handle:            handle,
		driver:            driver,
		logger:            logger,
	}
}

// Start invokes handle.Start() exactly once per admission. Callers must
// hold the WorkManager write lock to call this only once per Job; Start
// itself never blocks.
func (j *Job) Start() error { return j.handle.Start() }

// DeliverMessage forwards msg to the underlying handle.
func (j *Job) DeliverMessage(msg SignedMessage) error { return j.handle.DeliverMessage(msg) }

// IsDone, HasStalled mirror the handle.
func (j *Job) IsDone() bool                   { return j.handle.IsDone() }
func (j *Job) HasStalled(now BlockNumber) bool { return j.handle.HasStalled(now) }
func (j *Job) HasStarted() bool               { return j.handle.HasStarted() }
func (j *Job) IsActive() bool                 { return j.handle.IsActive() }

// Metadata is the observability snapshot GetActiveSessionsMetadata emits
// for one Job.
type Metadata struct {
	SessionID  SessionId
	IsStalled  bool
	IsFinished bool
	HasStarted bool
	IsActive   bool
}

func (j *Job) metadata(now BlockNumber) Metadata {
	return Metadata{
		SessionID:  j.SessionID,
		IsStalled:  j.handle.HasStalled(now),
		IsFinished: j.handle.IsDone(),
		HasStarted: j.handle.HasStarted(),
		IsActive:   j.handle.IsActive(),
	}
}

// Close shuts the handle down exactly once, the "drop = shutdown" idiom
// made explicit since Go has no deterministic destructor. It is the
// canonical mechanism that terminates a signing protocol when its Job is
// evicted, and is safe to call more than once.
// Closing also cancels the context its driver goroutine runs under, the
// Go substitute for Rust's Drop unwinding a still-running future.
func (j *Job) Close(reason ShutdownReason) {
	j.closeOnce.Do(func() {
		if err := j.handle.Shutdown(reason); err != nil {
			j.logger.Warn("failed to shut down job handle", "fingerprint", j.Fingerprint, "reason", reason, "err", err)
		}
		if j.cancel != nil {
			j.cancel()
		}
	})
}

// arm derives a cancellable context from parent and stores its cancel
// func so a later Close can unwind a still-running driver. Must be called
// by the caller holding the WorkManager write lock, before the Job's
// goroutine is spawned, so Close (which also runs under that lock) never
// races with the assignment.
func (j *Job) arm(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	j.cancel = cancel
	return ctx
}

// run drives the owned DriverFuture to completion on ctx, as prepared by
// arm. It is spawned onto the executor (a goroutine) by WorkManager once
// the Job is admitted into active; the subsequent Poll reaps it via
// handle.IsDone().
func (j *Job) run(ctx context.Context) {
	if err := j.driver.Run(ctx); err != nil {
		j.logger.Warn("signing task driver returned an error", "fingerprint", j.Fingerprint, "err", err)
	}
}
