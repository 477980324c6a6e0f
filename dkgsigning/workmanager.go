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
	"time"

	"github.com/klaytn/dkg-signing-core/log"
	"github.com/klaytn/dkg-signing-core/metrics"
)

// PollMode selects how WorkManager.Poll is driven.
type PollMode int

const (
	// PollInterval runs an internal goroutine ticking every configured
	// interval, select-over-ticker-and-channel, also woken on every
	// PushTask.
	PollInterval PollMode = iota
	// PollManual leaves Poll entirely to an external caller.
	PollManual
)

// WorkManagerConfig is the WorkManager's immutable configuration.
type WorkManagerConfig struct {
	MaxActive             int
	MaxEnqueued           int
	PollMode              PollMode
	PollInterval          time.Duration
	AcceptableBlockWindow uint64
	DedupCacheSize        int
}

// WorkManager is the bounded task scheduler with message fan-in: it
// admits, queues, polls, starts, reaps, and routes messages to Jobs,
// sharing one sync.RWMutex over {active, enqueued, buffer}.
type WorkManager struct {
	cfg    WorkManagerConfig
	clock  Clock
	logger *log.ModuleLogger
	stats  *metrics.Counters

	mu       sync.RWMutex
	active   map[Fingerprint]*Job
	enqueued []*Job
	// fingerprint -> ssid -> FIFO queue of buffered messages.
	buffer map[Fingerprint]map[SsidIndex][]SignedMessage

	dedup *dedupCache

	wakeupCh chan Fingerprint

	wg sync.WaitGroup
}

// NewWorkManager constructs a WorkManager and, in PollInterval mode,
// starts its internal poll-driver goroutine.
func NewWorkManager(ctx context.Context, cfg WorkManagerConfig, clock Clock, stats *metrics.Counters) *WorkManager {
	if cfg.DedupCacheSize <= 0 {
		cfg.DedupCacheSize = 4096
	}
	wm := &WorkManager{
		cfg:      cfg,
		clock:    clock,
		logger:   log.NewModuleLogger(log.WorkManager),
		stats:    stats,
		active:   make(map[Fingerprint]*Job),
		buffer:   make(map[Fingerprint]map[SsidIndex][]SignedMessage),
		dedup:    newDedupCache(cfg.DedupCacheSize),
		wakeupCh: make(chan Fingerprint, 256),
	}

	if cfg.PollMode == PollInterval {
		wm.wg.Add(1)
		go wm.runPollDriver(ctx)
	}

	return wm
}

// runPollDriver is the single poll-driving goroutine: select over a
// ticker and the wakeup channel, either event triggers Poll. Termination
// of either internal source is a fatal logic error and is logged.
func (wm *WorkManager) runPollDriver(ctx context.Context) {
	defer wm.wg.Done()

	ticker := time.NewTicker(wm.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case fp, ok := <-wm.wakeupCh:
			if !ok {
				wm.logger.Error("wakeup channel closed, poll driver exiting", "err", ErrWakeupChannelClosed)
				return
			}
			wm.logger.Debug("received wakeup", "fingerprint", fp)
			wm.Poll()
		case <-ticker.C:
			wm.Poll()
		}
	}
}

// PushTask admits a new Job, possibly bypassing max_active via
// forceStart. Duplicate fingerprints are rejected (see DESIGN.md): this
// is a deliberate, tested choice, not a silent no-op.
func (wm *WorkManager) PushTask(fp Fingerprint, forceStart bool, sessionID SessionId, ssid SsidIndex, blockID BlockNumber, handle TaskHandle, driver DriverFuture) error {
	wm.mu.Lock()

	if wm.jobExistsLocked(fp) {
		wm.mu.Unlock()
		return opErr("PushTask", fp, ErrJobExists)
	}

	job := newJob(fp, sessionID, ssid, blockID, handle, driver, wm.logger)

	if forceStart {
		wm.logger.Debug("force starting job", "fingerprint", fp)
		wm.startJobLocked(job)
	} else if len(wm.enqueued) >= wm.cfg.MaxEnqueued {
		wm.mu.Unlock()
		wm.stats.IncAdmissionOverflows()
		return opErr("PushTask", fp, ErrAdmissionOverflow)
	} else {
		wm.enqueued = append(wm.enqueued, job)
		wm.stats.SetEnqueuedJobs(len(wm.enqueued))
	}
	wm.mu.Unlock()

	if wm.cfg.PollMode == PollInterval {
		select {
		case wm.wakeupCh <- fp:
		default:
			wm.logger.Warn("wakeup channel full, relying on next tick", "fingerprint", fp)
		}
	}
	return nil
}

// JobExists reports whether fingerprint is in active or enqueued.
func (wm *WorkManager) JobExists(fp Fingerprint) bool {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return wm.jobExistsLocked(fp)
}

func (wm *WorkManager) jobExistsLocked(fp Fingerprint) bool {
	if _, ok := wm.active[fp]; ok {
		return true
	}
	for _, j := range wm.enqueued {
		if j.Fingerprint == fp {
			return true
		}
	}
	return false
}

// CanSubmitMoreTasks reports whether enqueued has room.
func (wm *WorkManager) CanSubmitMoreTasks() bool {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return len(wm.enqueued) < wm.cfg.MaxEnqueued
}

// DeliverMessage routes msg to the first matching active/enqueued Job, or
// parks it in the buffer if none matches yet. A message already seen for
// this (fingerprint, ssid, payload) is dropped as a gossip-retransmission
// duplicate before touching active/enqueued/buffer.
func (wm *WorkManager) DeliverMessage(msg SignedMessage, fp Fingerprint) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if wm.dedup.seenBefore(fp, msg.Ssid, keccak256Array(msg.Payload.Raw)) {
		wm.logger.Debug("dropping duplicate gossip message", "fingerprint", fp, "ssid", msg.Ssid)
		return nil
	}

	for _, j := range wm.enqueued {
		if wm.shouldDeliver(j, msg, fp) {
			if err := j.DeliverMessage(msg); err != nil {
				wm.logger.Warn("failed to deliver message to enqueued job", "fingerprint", fp, "err", err)
				return opErr("DeliverMessage", fp, ErrMessageDeliveryFailed)
			}
			wm.stats.IncMessagesDeliveredLive()
			return nil
		}
	}

	if j, ok := wm.active[fp]; ok && wm.shouldDeliver(j, msg, fp) {
		if err := j.DeliverMessage(msg); err != nil {
			wm.logger.Warn("failed to deliver message to active job", "fingerprint", fp, "err", err)
			return opErr("DeliverMessage", fp, ErrMessageDeliveryFailed)
		}
		wm.stats.IncMessagesDeliveredLive()
		return nil
	}

	if wm.buffer[fp] == nil {
		wm.buffer[fp] = make(map[SsidIndex][]SignedMessage)
	}
	wm.buffer[fp][msg.Ssid] = append(wm.buffer[fp][msg.Ssid], msg)
	wm.stats.IncMessagesBuffered()
	wm.logger.Info("buffered message for not-yet-existing job", "fingerprint", fp, "ssid", msg.Ssid)
	return nil
}

// shouldDeliver requires session, fingerprint, and ssid to match, and the
// job's associated block id to still be acceptable relative to the
// message's.
func (wm *WorkManager) shouldDeliver(j *Job, msg SignedMessage, fp Fingerprint) bool {
	return j.SessionID == msg.SessionID &&
		j.Fingerprint == fp &&
		j.Ssid == msg.Ssid &&
		wm.blockIDAcceptable(j.AssociatedBlockID, msg.AssociatedBlockID)
}

func (wm *WorkManager) blockIDAcceptable(reference, candidate BlockNumber) bool {
	var diff uint64
	if reference >= candidate {
		diff = uint64(reference - candidate)
	} else {
		diff = uint64(candidate - reference)
	}
	return diff <= wm.cfg.AcceptableBlockWindow
}

// Poll is the reaper/admitter: reap stalled/done jobs, admit from
// enqueued while there's room, then GC the buffer. It is idempotent and
// safe to call concurrently with PushTask/DeliverMessage.
func (wm *WorkManager) Poll() {
	now := wm.clock.LatestBlockNumber()

	wm.mu.Lock()

	before := len(wm.active)
	for fp, j := range wm.active {
		if j.HasStalled(now) {
			wm.logger.Info("job stalled, shutting down", "fingerprint", fp, "now", now)
			j.Close(ShutdownStalled)
			delete(wm.active, fp)
			wm.stats.IncSigningTasksStalled()
			continue
		}
		if j.IsDone() {
			j.Close(ShutdownDropCode)
			delete(wm.active, fp)
			wm.stats.IncSigningTasksCompleted()
		}
	}
	if dropped := before - len(wm.active); dropped > 0 {
		wm.logger.Info("jobs dropped during reap", "count", dropped)
	}

	for len(wm.active) < wm.cfg.MaxActive && len(wm.enqueued) > 0 {
		job := wm.enqueued[0]
		wm.enqueued = wm.enqueued[1:]
		wm.startJobLocked(job)
	}
	wm.stats.SetActiveJobs(len(wm.active))
	wm.stats.SetEnqueuedJobs(len(wm.enqueued))

	wm.gcBufferLocked(now)

	wm.mu.Unlock()
}

func (wm *WorkManager) gcBufferLocked(now BlockNumber) {
	for fp, byssid := range wm.buffer {
		for ssid, queue := range byssid {
			kept := queue[:0]
			dropped := 0
			for _, m := range queue {
				if wm.blockIDAcceptable(now, m.AssociatedBlockID) {
					kept = append(kept, m)
				} else {
					dropped++
				}
			}
			if dropped > 0 {
				wm.logger.Info("removed outdated buffered messages", "fingerprint", fp, "ssid", ssid, "count", dropped)
				for i := 0; i < dropped; i++ {
					wm.stats.IncMessagesDropped()
				}
			}
			if len(kept) == 0 {
				delete(byssid, ssid)
			} else {
				byssid[ssid] = kept
			}
		}
		if len(byssid) == 0 {
			delete(wm.buffer, fp)
		}
	}
}

// startJobLocked calls handle.Start(), drains any buffered messages for
// this job's (fingerprint, ssid), and inserts the job into active and
// spawns its driver. Caller must hold wm.mu.
func (wm *WorkManager) startJobLocked(job *Job) {
	wm.logger.Info("starting job", "fingerprint", job.Fingerprint)
	if err := job.Start(); err != nil {
		wm.logger.Error("failed to start job", "fingerprint", job.Fingerprint, "err", err)
		job.Close(ShutdownStartFailed)
		return
	}

	if byssid, ok := wm.buffer[job.Fingerprint]; ok {
		if queue, ok := byssid[job.Ssid]; ok {
			wm.logger.Info("delivering buffered messages", "fingerprint", job.Fingerprint, "count", len(queue))
			for _, msg := range queue {
				if wm.shouldDeliver(job, msg, job.Fingerprint) {
					if err := job.DeliverMessage(msg); err != nil {
						wm.logger.Error("unable to deliver buffered message", "fingerprint", job.Fingerprint, "err", err)
					} else {
						wm.stats.IncMessagesDeliveredQueued()
					}
				} else {
					wm.logger.Warn("dropping buffered message, no longer acceptable", "fingerprint", job.Fingerprint)
					wm.stats.IncMessagesDropped()
				}
			}
			delete(byssid, job.Ssid)
			if len(byssid) == 0 {
				delete(wm.buffer, job.Fingerprint)
			}
		}
	}

	wm.active[job.Fingerprint] = job
	wm.stats.IncSigningTasksStarted()

	// arm before spawning: the cancel func must be assigned while still
	// holding wm.mu, so a concurrent Close (also under wm.mu) can never
	// observe a nil cancel and leak the goroutine.
	ctx := job.arm(context.Background())
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		job.run(ctx)
	}()
}

// GetActiveSessionsMetadata snapshots every active Job for external
// observability.
func (wm *WorkManager) GetActiveSessionsMetadata(now BlockNumber) []Metadata {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	out := make([]Metadata, 0, len(wm.active))
	for _, j := range wm.active {
		out = append(out, j.metadata(now))
	}
	return out
}

// ForceShutdownAll clears active, enqueued, and buffer, shutting down
// every job's handle via Close.
func (wm *WorkManager) ForceShutdownAll() {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	for _, j := range wm.active {
		j.Close(ShutdownForceAll)
	}
	for _, j := range wm.enqueued {
		j.Close(ShutdownForceAll)
	}
	wm.active = make(map[Fingerprint]*Job)
	wm.enqueued = nil
	wm.buffer = make(map[Fingerprint]map[SsidIndex][]SignedMessage)
	wm.stats.SetActiveJobs(0)
	wm.stats.SetEnqueuedJobs(0)
}

// Wait blocks until the poll driver goroutine and every spawned job
// driver have returned. Intended for tests and graceful shutdown.
func (wm *WorkManager) Wait() { wm.wg.Wait() }
