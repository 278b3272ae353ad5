// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/jk278/lifetracker/internal/adapter"
	"github.com/jk278/lifetracker/internal/config"
	"github.com/jk278/lifetracker/internal/logger"
	"github.com/jk278/lifetracker/internal/store"
	"github.com/jk278/lifetracker/models"
)

// roundDeps are the per-round collaborators. They are built fresh at the
// start of every round from the configuration read at that moment, so a
// config edit mid-round is never observed.
type roundDeps struct {
	transport  adapter.RemoteTransport
	classifier ConflictClassifier
	engine     ResolutionEngine
}

type roundFactory func(cfg models.SyncConfig) roundDeps

// pendingRound is a round paused in conflict-pending: the automatic part is
// applied, the manifest commit is held back, and the sync slot stays taken
// until Resolve settles the remaining conflicts.
type pendingRound struct {
	deps      roundDeps
	pairs     map[string]models.ChangePair
	conflicts []models.ConflictItem
	result    *ApplyResult

	// resolving is set while a Resolve call owns this round; a concurrent
	// Resolve must not apply the same decisions a second time.
	resolving bool
}

type syncManager struct {
	ConfigService

	detector ChangeDetector
	records  store.RecordRepository
	manifest store.ManifestRepository
	newRound roundFactory
	notifier *Notifier
	logger   *logger.Logger

	maxRetries uint64
	backoff    time.Duration

	mu      sync.Mutex
	busy    bool
	status  models.SyncStatus
	pending *pendingRound
}

func NewSyncManager(
	cfgSvc ConfigService,
	detector ChangeDetector,
	records store.RecordRepository,
	manifest store.ManifestRepository,
	newRound roundFactory,
	adapterCfg config.ClientAdapter,
	notifier *Notifier,
	log *logger.Logger,
) SyncManager {
	return &syncManager{
		ConfigService: cfgSvc,
		detector:      detector,
		records:       records,
		manifest:      manifest,
		newRound:      newRound,
		notifier:      notifier,
		logger:        log,
		maxRetries:    adapterCfg.MaxRetries,
		backoff:       adapterCfg.RetryBackoff,
		status:        models.SyncStatus{State: models.SyncStateIdle},
	}
}

func (m *syncManager) Events() <-chan Event {
	return m.notifier.Events()
}

func (m *syncManager) Status() models.SyncStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *syncManager) PendingConflicts() []models.ConflictItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil {
		return nil
	}
	out := make([]models.ConflictItem, len(m.pending.conflicts))
	copy(out, m.pending.conflicts)
	return out
}

// Suspend implements SyncManager. Maintenance holds the same slot a round
// would, so a backup can never observe a half-applied round.
func (m *syncManager) Suspend() (func(), error) {
	if err := m.acquire(); err != nil {
		return nil, err
	}
	return m.release, nil
}

// SetNextSyncTime publishes the auto-sync job's next tick into the status.
func (m *syncManager) SetNextSyncTime(t *time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.NextSyncTime = t
}

// Start implements SyncManager. One round, start to finish:
//
//	Connecting → Fetching → Diffing → Applying → [ConflictPending] →
//	Finalizing
//
// The manifest moves only in Finalizing, in a single transaction, so an
// abort anywhere earlier leaves every touched record re-detectable.
func (m *syncManager) Start(ctx context.Context) (string, error) {
	cfg, err := m.Config(ctx)
	if err != nil {
		return "", fmt.Errorf("load sync config: %w", err)
	}
	if !cfg.Enabled {
		m.setState(models.SyncStateDisabled, "")
		return "", ErrSyncDisabled
	}

	if err := m.acquire(); err != nil {
		return "", err
	}

	m.setSyncing()
	log := logger.FromContext(ctx)
	log.Info().Str("func", "syncManager.Start").Msg("sync round started")

	deps := m.newRound(cfg)

	// ── Connecting ──────────────────────────────────────────────────────

	if err := m.connect(ctx, deps.transport); err != nil {
		m.failAndRelease(err)
		return "", err
	}

	// ── Fetching ────────────────────────────────────────────────────────

	remotes, err := deps.transport.List(ctx)
	if err != nil {
		m.abortAndRelease(fmt.Errorf("list remote records: %w", err))
		return "", err
	}
	locals, err := m.records.GetAllStates(ctx)
	if err != nil {
		m.abortAndRelease(fmt.Errorf("load local states: %w", err))
		return "", err
	}
	manifest, err := m.manifest.GetAll(ctx)
	if err != nil {
		m.abortAndRelease(fmt.Errorf("load manifest: %w", err))
		return "", err
	}

	// ── Diffing ─────────────────────────────────────────────────────────

	set, err := m.detector.BuildChangeSet(ctx, locals, remotes, manifest)
	if err != nil {
		m.abortAndRelease(err)
		return "", err
	}

	cls, err := deps.classifier.Classify(ctx, set.Disputed)
	if err != nil {
		m.abortAndRelease(err)
		return "", err
	}

	// ── Applying (automatic set) ────────────────────────────────────────

	result, err := deps.engine.ApplyChanges(ctx, set, cls)
	if err != nil {
		m.abortAndRelease(err)
		return "", err
	}

	pairs := make(map[string]models.ChangePair, len(set.Disputed))
	for _, pair := range set.Disputed {
		pairs[pair.ID] = pair
	}

	if len(cls.Conflicts) == 0 {
		if err := m.finalize(ctx, result, ReasonSyncCompleted); err != nil {
			return "", err
		}
		m.release()
		return roundMessage(result, 0), nil
	}

	// ── Conflicts with a blanket strategy ───────────────────────────────

	if cfg.ConflictStrategy != models.StrategyManual {
		decisions := blanketDecisions(cls.Conflicts, cfg.ConflictStrategy)

		resolved, err := deps.engine.ResolveConflicts(ctx, pairs, cls.Conflicts, decisions)
		if err != nil {
			m.abortAndRelease(err)
			return "", err
		}
		result.merge(resolved)

		if err := m.finalize(ctx, result, ReasonSyncCompleted); err != nil {
			return "", err
		}
		m.release()
		return roundMessage(result, len(cls.Conflicts)), nil
	}

	// ── ConflictPending: hold the slot until Resolve ────────────────────

	m.mu.Lock()
	m.pending = &pendingRound{
		deps:      deps,
		pairs:     pairs,
		conflicts: cls.Conflicts,
		result:    result,
	}
	m.mu.Unlock()

	log.Info().
		Str("func", "syncManager.Start").
		Int("conflicts", len(cls.Conflicts)).
		Msg("sync round paused on conflicts")

	return fmt.Sprintf("%d conflicts pending", len(cls.Conflicts)), nil
}

// Resolve implements SyncManager. Partial decision sets are allowed: the
// decided conflicts are applied, the rest stay pending and keep the slot.
func (m *syncManager) Resolve(ctx context.Context, decisions models.ResolutionDecision) (string, error) {
	// Claim the held round before touching it: a second Resolve racing this
	// one must not hand the same decisions to the engine again.
	m.mu.Lock()
	pending := m.pending
	if pending == nil {
		m.mu.Unlock()
		return "", ErrNoPendingConflicts
	}
	if pending.resolving {
		m.mu.Unlock()
		return "", ErrAlreadySyncing
	}
	pending.resolving = true
	m.mu.Unlock()

	resolved, err := pending.deps.engine.ResolveConflicts(ctx, pending.pairs, pending.conflicts, decisions)
	if err != nil {
		// cancellation mid-resolve: whatever was applied stays applied and
		// stays pending commit with the rest of the round
		m.mu.Lock()
		pending.result.merge(resolved)
		pending.resolving = false
		m.mu.Unlock()
		return "", err
	}

	var remaining []models.ConflictItem
	for _, conflict := range pending.conflicts {
		if _, decided := decisions[conflict.ID]; !decided {
			remaining = append(remaining, conflict)
		}
	}

	m.mu.Lock()
	pending.result.merge(resolved)
	pending.conflicts = remaining
	if len(remaining) > 0 {
		pending.resolving = false
		m.mu.Unlock()
		return fmt.Sprintf("%d conflicts still pending", len(remaining)), nil
	}
	m.mu.Unlock()

	if err := m.finalize(ctx, pending.result, ReasonConflictsResolved); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.pending = nil
	m.mu.Unlock()
	m.release()

	return roundMessage(pending.result, resolvedCount(decisions)), nil
}

// connect probes the remote endpoint with bounded exponential backoff.
func (m *syncManager) connect(ctx context.Context, transport adapter.RemoteTransport) error {
	backoff := retry.WithMaxRetries(m.maxRetries, retry.NewExponential(m.backoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := transport.TestConnection(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}

	if err := transport.EnsureLayout(ctx); err != nil {
		return fmt.Errorf("prepare remote layout: %w", err)
	}
	return nil
}

// finalize commits every manifest mutation of the round in one transaction.
// A failed commit confirms nothing: the whole round is re-detected next time.
func (m *syncManager) finalize(ctx context.Context, result *ApplyResult, reason string) error {
	if err := m.manifest.CommitRound(ctx, result.Upserts, result.Deletes); err != nil {
		m.failAndRelease(err)
		return err
	}

	now := time.Now()
	m.mu.Lock()
	m.status.State = models.SyncStateIdle
	m.status.IsSyncing = false
	m.status.LastSyncTime = &now
	m.status.ErrorMessage = ""
	m.mu.Unlock()

	if result.Applied > 0 || len(result.Deletes) > 0 {
		m.notifier.dataChanged(reason)
	}
	m.notifier.statusChanged(models.SyncStateIdle)

	return nil
}

func (m *syncManager) acquire() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return ErrAlreadySyncing
	}
	m.busy = true
	return nil
}

func (m *syncManager) release() {
	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()
}

func (m *syncManager) setSyncing() {
	m.mu.Lock()
	m.status.State = models.SyncStateSyncing
	m.status.IsSyncing = true
	m.status.ErrorMessage = ""
	m.mu.Unlock()
	m.notifier.statusChanged(models.SyncStateSyncing)
}

func (m *syncManager) setState(state models.SyncState, errMsg string) {
	m.mu.Lock()
	changed := m.status.State != state
	m.status.State = state
	m.status.IsSyncing = state == models.SyncStateSyncing
	m.status.ErrorMessage = errMsg
	m.mu.Unlock()

	if changed {
		m.notifier.statusChanged(state)
	}
}

// failAndRelease records a round-fatal error and frees the slot.
func (m *syncManager) failAndRelease(err error) {
	m.logger.Err(err).Str("func", "syncManager").Msg("sync round failed")
	m.setState(models.SyncStateError, err.Error())
	m.mu.Lock()
	m.pending = nil
	m.mu.Unlock()
	m.release()
}

// abortAndRelease handles cancellation: not an error state, nothing was
// committed, the next round simply starts over.
func (m *syncManager) abortAndRelease(err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		m.setState(models.SyncStateIdle, "")
		m.release()
		return
	}
	m.failAndRelease(err)
}

// blanketDecisions expands a non-manual strategy into one decision per
// conflict.
func blanketDecisions(conflicts []models.ConflictItem, strategy models.ConflictStrategy) models.ResolutionDecision {
	var choice models.Choice
	switch strategy {
	case models.StrategyLocalWins:
		choice = models.ChoiceUseLocal
	case models.StrategyRemoteWins:
		choice = models.ChoiceUseRemote
	case models.StrategyKeepBoth:
		choice = models.ChoiceKeepBoth
	}

	decisions := make(models.ResolutionDecision, len(conflicts))
	for _, conflict := range conflicts {
		decisions[conflict.ID] = choice
	}
	return decisions
}

func roundMessage(result *ApplyResult, resolved int) string {
	if result.Applied == 0 && len(result.Failed) == 0 && resolved == 0 {
		return "already in sync"
	}
	msg := fmt.Sprintf("synced: %d applied", result.Applied)
	if resolved > 0 {
		msg += fmt.Sprintf(", %d conflicts resolved", resolved)
	}
	if len(result.Failed) > 0 {
		msg += fmt.Sprintf(", %d failed", len(result.Failed))
	}
	return msg
}

func resolvedCount(decisions models.ResolutionDecision) int {
	return len(decisions)
}
