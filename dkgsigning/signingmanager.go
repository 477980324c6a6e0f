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
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/klaytn/dkg-signing-core/log"
	"github.com/klaytn/dkg-signing-core/metrics"
)

// SigningManager is the per-finalized-block driver: on each new finalized
// header it fetches pending unsigned proposals, deterministically elects
// a committee per candidate signing set, and hands off a signing task to
// the WorkManager whenever the local party is elected.
type SigningManager struct {
	wm              *WorkManager
	chain           ChainClient
	factory         ProtocolFactory
	logger          *log.ModuleLogger
	stats           *metrics.Counters
	maxSsidsPerBatch SsidIndex

	// keygenLock guards against starting signing tasks while a keygen
	// round is in progress. go.uber.org/atomic.Bool avoids a mutex for a
	// single flag.
	keygenLock atomic.Bool
}

// NewSigningManager wires a SigningManager to its WorkManager and
// external collaborators.
func NewSigningManager(wm *WorkManager, chain ChainClient, factory ProtocolFactory, maxSsidsPerBatch SsidIndex, stats *metrics.Counters) *SigningManager {
	return &SigningManager{
		wm:               wm,
		chain:            chain,
		factory:          factory,
		logger:           log.NewModuleLogger(log.DKGSigning),
		stats:            stats,
		maxSsidsPerBatch: maxSsidsPerBatch,
	}
}

// KeygenLock prevents OnBlockFinalized from starting any new signing
// tasks until KeygenUnlock is called. Atomic with respect to concurrent
// finalized-block events.
func (m *SigningManager) KeygenLock() { m.keygenLock.Store(true) }

// KeygenUnlock clears the keygen-lock flag set by KeygenLock.
func (m *SigningManager) KeygenUnlock() { m.keygenLock.Store(false) }

// DeliverMessage forwards a gossiped signed message to the WorkManager,
// using the payload's unsigned-proposal hash as the routing fingerprint.
func (m *SigningManager) DeliverMessage(msg SignedMessage) error {
	if msg.Payload.UnsignedProposalHash == nil {
		return ErrNoFingerprint
	}
	return m.wm.DeliverMessage(msg, *msg.Payload.UnsignedProposalHash)
}

// OnBlockFinalized runs the per-block sweep: check the keygen lock, fetch
// the signing session and local party position, fetch and filter pending
// proposals, then elect and schedule a committee for each one. It is
// idempotent per header: calling it twice for the same header either
// finds no new work (proposals already scheduled) or is safe to retry
// after a transient ChainClient error.
func (m *SigningManager) OnBlockFinalized(ctx context.Context, header BlockHeader) error {
	if m.keygenLock.Load() {
		m.logger.Debug("skipping block-finalized event, keygen is running")
		return nil
	}

	sessionID, dkgPubKey, err := m.chain.GetDKGPubKey(ctx, header)
	if err != nil {
		return opErrBlock("OnBlockFinalized.GetDKGPubKey", err)
	}

	position, inSet, err := m.chain.GetPartyIndex(ctx, header)
	if err != nil {
		return opErrBlock("OnBlockFinalized.GetPartyIndex", err)
	}
	if !inSet {
		m.logger.Info("not in the set of best authorities", "session", sessionID)
		return nil
	}

	batches, err := m.chain.GetUnsignedProposalBatches(ctx, header.Hash())
	if err != nil {
		return opErrBlock("OnBlockFinalized.GetUnsignedProposalBatches", err)
	}

	// Sort by ascending timestamp: oldest proposal first.
	sort.SliceStable(batches, func(i, j int) bool { return batches[i].Timestamp < batches[j].Timestamp })

	surviving := make([]ProposalBatch, 0, len(batches))
	for _, b := range batches {
		fp, err := ComputeFingerprint(b)
		if err != nil {
			m.logger.Warn("failed to compute fingerprint, skipping batch", "err", err)
			continue
		}
		if m.wm.JobExists(fp) {
			continue
		}
		surviving = append(surviving, b)
		m.stats.IncUnsignedProposalsSeen()
	}
	if len(surviving) == 0 {
		return nil
	}

	bestAuthorities, err := m.chain.GetBestAuthorities(ctx, header)
	if err != nil {
		return opErrBlock("OnBlockFinalized.GetBestAuthorities", err)
	}
	threshold, err := m.chain.GetSignatureThreshold(ctx, header)
	if err != nil {
		return opErrBlock("OnBlockFinalized.GetSignatureThreshold", err)
	}
	// authority_public_key is fetched once per call and reused across
	// every proposal/ssid in the sweep, rather than refetched per ssid.
	authorityPubKey := m.chain.AuthorityPublicKey()

	partyI, err := NewPartyID(position, len(bestAuthorities))
	if err != nil {
		return opErrBlock("OnBlockFinalized.NewPartyID", err)
	}

	for _, batch := range surviving {
		if !m.wm.CanSubmitMoreTasks() {
			m.logger.Info("work manager full, stopping sweep early")
			break
		}

		fp, err := ComputeFingerprint(batch)
		if err != nil {
			m.logger.Warn("failed to compute fingerprint mid-sweep, skipping batch", "err", err)
			continue
		}

		if err := m.tryScheduleBatch(ctx, header, batch, fp, sessionID, dkgPubKey, authorityPubKey, partyI, bestAuthorities, threshold); err != nil {
			return err
		}
	}

	return nil
}

// tryScheduleBatch iterates every candidate ssid for one proposal,
// electing a committee for each and, if the local party is elected,
// requesting a signing task from the protocol factory and submitting it
// to the WorkManager.
func (m *SigningManager) tryScheduleBatch(
	ctx context.Context,
	header BlockHeader,
	batch ProposalBatch,
	fp Fingerprint,
	sessionID SessionId,
	dkgPubKey, authorityPubKey []byte,
	partyI PartyId,
	bestAuthorities []AuthorityEntry,
	threshold uint16,
) error {
	unjailed, err := m.chain.GetUnjailedSigners(ctx, bestAuthorities)
	if err != nil {
		return opErrBlock("tryScheduleBatch.GetUnjailedSigners", err)
	}
	jailed, err := m.chain.GetJailedSigners(ctx, bestAuthorities)
	if err != nil {
		return opErrBlock("tryScheduleBatch.GetJailedSigners", err)
	}

	for ssid := SsidIndex(0); ssid < m.maxSsidsPerBatch; ssid++ {
		seed, err := ComputeSeed(dkgPubKey, batch, ssid)
		if err != nil {
			m.logger.Warn("failed to compute seed, skipping ssid", "fingerprint", fp, "ssid", ssid, "err", err)
			continue
		}

		signingSet, err := GenerateSigners(seed, threshold, unjailed, jailed, len(bestAuthorities))
		if err != nil {
			// Per-ssid failure is isolated: log and move on.
			m.logger.Warn("committee selection failed, skipping ssid", "fingerprint", fp, "ssid", ssid, "err", err)
			continue
		}
		m.stats.IncCommitteesElected()

		if !containsParty(signingSet, partyI) {
			continue
		}

		m.logger.Info("elected into signing committee", "session", sessionID, "ssid", ssid, "threshold", threshold, "signers", len(signingSet))

		params := SigningProtocolSetupParameters{
			BestAuthorities:    bestAuthorities,
			AuthorityPublicKey: authorityPubKey,
			PartyI:             partyI,
			SessionID:          sessionID,
			Threshold:          threshold,
			Fingerprint:        fp,
			Batch:              batch,
			SigningSet:         signingSet,
			AssociatedBlockID:  header.Number(),
			Ssid:               ssid,
		}

		handle, driver, err := m.factory.InitializeSigningProtocol(ctx, params)
		if err != nil {
			m.logger.Error("error creating signing protocol", "fingerprint", fp, "err", err)
			return opErr("tryScheduleBatch.InitializeSigningProtocol", fp, errors.Wrapf(ErrProtocolInitFailed, "%s", err))
		}

		// A rotation-priority batch (TypedChainID == None) is
		// force-started to unblock session rotation.
		forceStart := batch.TypedChainID.IsRotationPriority()
		if err := m.wm.PushTask(fp, forceStart, sessionID, ssid, header.Number(), handle, driver); err != nil {
			// A Job is born owning this handle; if it was never admitted,
			// nothing else will ever shut it down. Go has no Drop to do
			// this implicitly, so it is done explicitly here.
			m.logger.Warn("failed to push signing task, shutting down orphaned handle", "fingerprint", fp, "err", err)
			if shutdownErr := handle.Shutdown(ShutdownStartFailed); shutdownErr != nil {
				m.logger.Warn("failed to shut down orphaned handle", "fingerprint", fp, "err", shutdownErr)
			}
		}
	}

	return nil
}

func containsParty(set []PartyId, p PartyId) bool {
	for _, s := range set {
		if s == p {
			return true
		}
	}
	return false
}

// opErrBlock wraps a ChainClient error under the ErrChainQueryFailed
// sentinel so callers can errors.Is against it regardless of op.
func opErrBlock(op string, err error) error {
	return opErr(op, Fingerprint{}, errors.Wrapf(ErrChainQueryFailed, "%s", err))
}
