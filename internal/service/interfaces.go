// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service contains the sync core: the change detector that compares
// local records, the remote directory and the manifest; the conflict
// classifier that decides which both-changed records can be merged
// automatically; the resolution engine that applies decisions; and the
// orchestrator that drives a full round while holding the single sync slot.
package service

import (
	"context"
	"time"

	"github.com/jk278/lifetracker/models"
)

// ChangeDetector partitions one round's worth of records into actions.
// It is pure: identical inputs always produce the identical partition.
type ChangeDetector interface {
	// BuildChangeSet compares the three views of the record set. Records
	// that changed on exactly one side become transfers or deletion
	// propagations; records that changed on both sides land in Disputed
	// for the classifier.
	BuildChangeSet(ctx context.Context, locals []models.RecordState, remotes []models.RemoteObject, manifest map[string]models.ManifestEntry) (models.ChangeSet, error)
}

// ConflictClassifier inspects disputed pairs. Payloads are fetched lazily,
// only for the pairs that reach this step.
type ConflictClassifier interface {
	// Classify splits disputed pairs into auto-merges, manifest-only moves
	// and genuine conflicts that need a decision.
	Classify(ctx context.Context, disputed []models.ChangePair) (models.Classification, error)
}

// ApplyResult accumulates the durable outcome of applying changes or
// resolutions. Manifest mutations are collected here and committed in one
// transaction when the round finalizes, never piecemeal.
type ApplyResult struct {
	// Upserts are manifest entries to write at finalize time.
	Upserts []models.ManifestEntry
	// Deletes are manifest entry ids to drop at finalize time.
	Deletes []string
	// Failed lists records whose application failed; they are skipped this
	// round and re-detected on the next one.
	Failed []*ApplyError
	// Applied counts records whose local/remote writes completed.
	Applied int
}

func (r *ApplyResult) merge(other *ApplyResult) {
	if other == nil {
		return
	}
	r.Upserts = append(r.Upserts, other.Upserts...)
	r.Deletes = append(r.Deletes, other.Deletes...)
	r.Failed = append(r.Failed, other.Failed...)
	r.Applied += other.Applied
}

// ResolutionEngine performs the actual record writes on both sides.
//
// Per record the writes are all-or-nothing: either the local and remote
// copies both land and a manifest mutation is recorded for the round commit,
// or the manifest is left untouched so the record is re-detected next round.
type ResolutionEngine interface {
	// ApplyChanges applies the automatic part of a round: pulls, pushes,
	// deletion propagations, forgotten entries and auto-merged records.
	ApplyChanges(ctx context.Context, set models.ChangeSet, cls models.Classification) (*ApplyResult, error)

	// ResolveConflicts applies one decision per conflicted record. Records
	// without a decision are left pending. Every applied resolution writes
	// an audit row with both pre-resolution hashes.
	ResolveConflicts(ctx context.Context, pairs map[string]models.ChangePair, conflicts []models.ConflictItem, decisions models.ResolutionDecision) (*ApplyResult, error)
}

// ConfigService owns the persisted sync configuration. The password is
// encrypted at rest; callers always see it in plaintext.
type ConfigService interface {
	Config(ctx context.Context) (models.SyncConfig, error)
	SaveConfig(ctx context.Context, cfg models.SyncConfig) error

	// TestConnection probes the remote endpoint described by cfg without
	// touching any record data and returns a human-readable verdict.
	TestConnection(ctx context.Context, cfg models.SyncConfig) (string, error)
}

// SyncManager is the external surface of the sync subsystem.
type SyncManager interface {
	ConfigService

	// Start runs one full sync round. Returns ErrAlreadySyncing while a
	// round (or an unresolved conflict set) holds the sync slot. When
	// conflicts need manual decisions the returned message says so and the
	// slot stays held until Resolve is called.
	Start(ctx context.Context) (string, error)

	// Status returns a copy of the current status snapshot.
	Status() models.SyncStatus

	// PendingConflicts returns the conflicts awaiting Resolve, if any.
	PendingConflicts() []models.ConflictItem

	// Resolve applies decisions to the pending conflicts and finalizes the
	// held round. Returns ErrNoPendingConflicts when nothing is pending.
	Resolve(ctx context.Context, decisions models.ResolutionDecision) (string, error)

	// Suspend takes the sync slot without syncing, so that maintenance
	// (backup, restore) can run with no round in flight. The returned
	// function releases the slot.
	Suspend() (func(), error)

	// SetNextSyncTime publishes the auto-sync job's next scheduled round
	// into the status snapshot.
	SetNextSyncTime(t *time.Time)

	// Events exposes the notification stream.
	Events() <-chan Event
}

// SyncJob runs periodic background rounds through the same entry point as
// a manual "sync now", so both share the single sync slot.
type SyncJob interface {
	Start(ctx context.Context, interval time.Duration)
	Stop()
}
