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

// Package metrics is the fire-and-forget metric sink the signing
// orchestration core reports into, patterned after the original
// dkg-gadget's metric_inc!(dkg_worker, ...) call sites.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Counters holds every counter/gauge the dkgsigning package reports into.
// A nil *Counters is valid and every method becomes a no-op, so callers
// never need to guard against metrics being disabled.
type Counters struct {
	UnsignedProposalsSeen   prometheus.Counter
	CommitteesElected       prometheus.Counter
	SigningTasksStarted     prometheus.Counter
	SigningTasksStalled     prometheus.Counter
	SigningTasksCompleted   prometheus.Counter
	AdmissionOverflows      prometheus.Counter
	MessagesBuffered        prometheus.Counter
	MessagesDeliveredLive   prometheus.Counter
	MessagesDeliveredQueued prometheus.Counter
	MessagesDropped         prometheus.Counter
	ActiveJobs              prometheus.Gauge
	EnqueuedJobs            prometheus.Gauge
}

// NewCounters builds and returns the standard set of counters used by
// this module under the given namespace, e.g. "dkg_signing". It does not
// register them with any prometheus registry.
func NewCounters(namespace string) *Counters {
	c := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
	}
	g := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}
	return &Counters{
		UnsignedProposalsSeen:   c("unsigned_proposals_seen_total", "unsigned proposal batches observed after filtering already-scheduled fingerprints"),
		CommitteesElected:       c("committees_elected_total", "committees successfully selected, whether or not this party is a member"),
		SigningTasksStarted:     c("signing_tasks_started_total", "signing protocol tasks admitted into active"),
		SigningTasksStalled:     c("signing_tasks_stalled_total", "signing protocol tasks evicted for stalling"),
		SigningTasksCompleted:   c("signing_tasks_completed_total", "signing protocol tasks that finished on their own"),
		AdmissionOverflows:      c("admission_overflows_total", "push_task calls rejected because the enqueued queue was full"),
		MessagesBuffered:        c("messages_buffered_total", "peer messages parked because no matching job existed yet"),
		MessagesDeliveredLive:   c("messages_delivered_live_total", "peer messages delivered directly to a live/enqueued job"),
		MessagesDeliveredQueued: c("messages_delivered_queued_total", "buffered peer messages delivered on job start"),
		MessagesDropped:         c("messages_dropped_total", "buffered peer messages dropped as expired or no longer acceptable"),
		ActiveJobs:              g("active_jobs", "current size of the active job set"),
		EnqueuedJobs:            g("enqueued_jobs", "current size of the enqueued job queue"),
	}
}

// Collectors exposes every counter and gauge as a prometheus.Collector so
// the owning process (out of scope for this core) can wire them into its
// own registry.
func (c *Counters) Collectors() []prometheus.Collector {
	if c == nil {
		return nil
	}
	return []prometheus.Collector{
		c.UnsignedProposalsSeen, c.CommitteesElected, c.SigningTasksStarted,
		c.SigningTasksStalled, c.SigningTasksCompleted, c.AdmissionOverflows,
		c.MessagesBuffered, c.MessagesDeliveredLive, c.MessagesDeliveredQueued,
		c.MessagesDropped, c.ActiveJobs, c.EnqueuedJobs,
	}
}

// The Inc*/Set* methods are nil-safe so WorkManager/SigningManager can
// call through a possibly-nil *Counters field without guarding every call.
func (c *Counters) IncUnsignedProposalsSeen() {
	if c != nil {
		c.UnsignedProposalsSeen.Inc()
	}
}
func (c *Counters) IncCommitteesElected() {
	if c != nil {
		c.CommitteesElected.Inc()
	}
}
func (c *Counters) IncSigningTasksStarted() {
	if c != nil {
		c.SigningTasksStarted.Inc()
	}
}
func (c *Counters) IncSigningTasksStalled() {
	if c != nil {
		c.SigningTasksStalled.Inc()
	}
}
func (c *Counters) IncSigningTasksCompleted() {
	if c != nil {
		c.SigningTasksCompleted.Inc()
	}
}
func (c *Counters) IncAdmissionOverflows() {
	if c != nil {
		c.AdmissionOverflows.Inc()
	}
}
func (c *Counters) IncMessagesBuffered() {
	if c != nil {
		c.MessagesBuffered.Inc()
	}
}
func (c *Counters) IncMessagesDeliveredLive() {
	if c != nil {
		c.MessagesDeliveredLive.Inc()
	}
}
func (c *Counters) IncMessagesDeliveredQueued() {
	if c != nil {
		c.MessagesDeliveredQueued.Inc()
	}
}
func (c *Counters) IncMessagesDropped() {
	if c != nil {
		c.MessagesDropped.Inc()
	}
}
func (c *Counters) SetActiveJobs(n int) {
	if c != nil {
		c.ActiveJobs.Set(float64(n))
	}
}
func (c *Counters) SetEnqueuedJobs(n int) {
	if c != nil {
		c.EnqueuedJobs.Set(float64(n))
	}
}
