package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jk278/lifetracker/internal/adapter"
	"github.com/jk278/lifetracker/internal/logger"
	"github.com/jk278/lifetracker/internal/store"
	"github.com/jk278/lifetracker/internal/utils"
	"github.com/jk278/lifetracker/models"
)

type resolutionEngine struct {
	records   store.RecordRepository
	audit     store.AuditRepository
	transport adapter.RemoteTransport
	uuid      *utils.UUIDGenerator
	logger    *logger.Logger
}

func NewResolutionEngine(records store.RecordRepository, audit store.AuditRepository, transport adapter.RemoteTransport, log *logger.Logger) ResolutionEngine {
	return &resolutionEngine{
		records:   records,
		audit:     audit,
		transport: transport,
		uuid:      utils.NewUUIDGenerator(),
		logger:    log,
	}
}

// ApplyChanges implements ResolutionEngine.
//
// Cancellation is checked between records; a record whose writes started is
// always finished before the abort takes effect.
func (e *resolutionEngine) ApplyChanges(ctx context.Context, set models.ChangeSet, cls models.Classification) (*ApplyResult, error) {
	result := &ApplyResult{}
	log := logger.FromContext(ctx)

	for _, obj := range set.Pulls {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := e.pull(ctx, obj, result); err != nil {
			e.recordFailure(log, result, obj.ID, err)
		}
	}

	for _, state := range set.Pushes {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := e.push(ctx, state.ID, result); err != nil {
			e.recordFailure(log, result, state.ID, err)
		}
	}

	for _, id := range set.DeleteLocal {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := e.records.SoftDeleteRecord(ctx, id, time.Now()); err != nil {
			e.recordFailure(log, result, id, err)
			continue
		}
		result.Deletes = append(result.Deletes, id)
		result.Applied++
	}

	for _, obj := range set.DeleteRemote {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		e.dropRemote(ctx, log, obj, result)
	}

	// deletions the classifier confirmed against downloaded content
	for _, obj := range cls.DeleteRemote {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		e.dropRemote(ctx, log, obj, result)
	}

	for _, id := range set.Forget {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		// gone on both sides: garbage-collect the local tombstone and the
		// manifest entry
		if err := e.records.HardDeleteRecord(ctx, id); err != nil {
			e.recordFailure(log, result, id, err)
			continue
		}
		result.Deletes = append(result.Deletes, id)
	}

	for _, merged := range cls.Merges {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := e.writeBoth(ctx, merged, result); err != nil {
			e.recordFailure(log, result, merged.ID, err)
			continue
		}
		result.Applied++
	}

	result.Upserts = append(result.Upserts, cls.ManifestOnly...)

	return result, nil
}

// ResolveConflicts implements ResolutionEngine. Conflicts without a
// decision are skipped and stay pending.
func (e *resolutionEngine) ResolveConflicts(ctx context.Context, pairs map[string]models.ChangePair, conflicts []models.ConflictItem, decisions models.ResolutionDecision) (*ApplyResult, error) {
	result := &ApplyResult{}
	log := logger.FromContext(ctx)

	for _, conflict := range conflicts {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		choice, decided := decisions[conflict.ID]
		if !decided {
			continue
		}

		pair, ok := pairs[conflict.ID]
		if !ok {
			e.recordFailure(log, result, conflict.ID, fmt.Errorf("no change pair for conflict"))
			continue
		}

		resultHash, err := e.applyChoice(ctx, pair, conflict, choice, result)
		if err != nil {
			e.recordFailure(log, result, conflict.ID, err)
			continue
		}

		auditEntry := models.SyncAudit{
			RecordID:   conflict.ID,
			Choice:     choice,
			LocalHash:  conflict.LocalHash,
			RemoteHash: conflict.RemoteHash,
			ResultHash: resultHash,
			ResolvedAt: time.Now(),
		}
		if err := e.audit.Append(ctx, auditEntry); err != nil {
			log.Err(err).
				Str("func", "resolutionEngine.ResolveConflicts").
				Str("id", conflict.ID).
				Msg("failed to append audit entry for applied resolution")
		}

		result.Applied++
	}

	return result, nil
}

// applyChoice executes one decision and returns the content hash that ends
// up as the record's agreed state.
func (e *resolutionEngine) applyChoice(ctx context.Context, pair models.ChangePair, conflict models.ConflictItem, choice models.Choice, result *ApplyResult) (string, error) {
	localGone := pair.Local == nil || pair.Local.Deleted
	remoteGone := pair.Remote == nil

	// with one side deleted, keep_both collapses to keeping the live copy
	if choice == models.ChoiceKeepBoth && (localGone || remoteGone) {
		if localGone {
			choice = models.ChoiceUseRemote
		} else {
			choice = models.ChoiceUseLocal
		}
	}

	switch choice {
	case models.ChoiceUseLocal:
		return e.resolveUseLocal(ctx, pair, result)
	case models.ChoiceUseRemote:
		return e.resolveUseRemote(ctx, pair, result)
	case models.ChoiceMerge:
		return e.resolveMerge(ctx, pair, result)
	case models.ChoiceKeepBoth:
		return e.resolveKeepBoth(ctx, pair, result)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownChoice, choice)
	}
}

func (e *resolutionEngine) resolveUseLocal(ctx context.Context, pair models.ChangePair, result *ApplyResult) (string, error) {
	if pair.Local == nil || pair.Local.Deleted {
		// the local side of this conflict is a deletion: propagate it
		if pair.Remote != nil {
			if err := e.transport.Delete(ctx, pair.Remote.Path); err != nil {
				return "", fmt.Errorf("delete remote copy: %w", err)
			}
		}
		if err := e.records.HardDeleteRecord(ctx, pair.ID); err != nil {
			return "", fmt.Errorf("drop local tombstone: %w", err)
		}
		result.Deletes = append(result.Deletes, pair.ID)
		return "", nil
	}

	record, err := e.records.GetRecord(ctx, pair.ID)
	if err != nil {
		return "", fmt.Errorf("load local record: %w", err)
	}

	obj, err := e.transport.Put(ctx, record)
	if err != nil {
		return "", fmt.Errorf("push local record: %w", err)
	}

	result.Upserts = append(result.Upserts, manifestFor(record, record.Hash, obj.ModifiedAt))
	return record.Hash, nil
}

func (e *resolutionEngine) resolveUseRemote(ctx context.Context, pair models.ChangePair, result *ApplyResult) (string, error) {
	if pair.Remote == nil {
		// the remote side of this conflict is a deletion: propagate it
		if err := e.records.SoftDeleteRecord(ctx, pair.ID, time.Now()); err != nil {
			return "", fmt.Errorf("delete local copy: %w", err)
		}
		result.Deletes = append(result.Deletes, pair.ID)
		return "", nil
	}

	record, err := e.transport.Get(ctx, pair.Remote.Path)
	if err != nil {
		return "", fmt.Errorf("fetch remote record: %w", err)
	}
	if record.Hash == "" {
		record.Hash = utils.HashPayload(record.Payload)
	}

	if err := e.records.SaveRecords(ctx, record); err != nil {
		return "", fmt.Errorf("save remote record locally: %w", err)
	}

	result.Upserts = append(result.Upserts, manifestFor(record, record.Hash, pair.Remote.ModifiedAt))
	return record.Hash, nil
}

func (e *resolutionEngine) resolveMerge(ctx context.Context, pair models.ChangePair, result *ApplyResult) (string, error) {
	if pair.Local == nil || pair.Local.Deleted || pair.Remote == nil {
		return "", fmt.Errorf("merge needs both copies present")
	}
	if pair.Base == nil {
		return "", fmt.Errorf("merge needs a common ancestor")
	}

	local, err := e.records.GetRecord(ctx, pair.ID)
	if err != nil {
		return "", fmt.Errorf("load local record: %w", err)
	}
	remote, err := e.transport.Get(ctx, pair.Remote.Path)
	if err != nil {
		return "", fmt.Errorf("fetch remote record: %w", err)
	}

	base, baseOK := decodeObject(pair.Base.BasePayload)
	localObj, localOK := decodeObject(local.Payload)
	remoteObj, remoteOK := decodeObject(remote.Payload)
	if !baseOK || !localOK || !remoteOK {
		return "", fmt.Errorf("payloads are not field-mergeable")
	}

	// on overlapping fields the local value wins
	mergedPayload, err := mergePayloads(base, deltaSince(base, localObj), deltaSince(base, remoteObj))
	if err != nil {
		return "", err
	}

	merged := local
	merged.Payload = mergedPayload
	merged.Hash = utils.HashPayload(mergedPayload)
	merged.ModifiedAt = time.Now()

	if err := e.writeBoth(ctx, merged, result); err != nil {
		return "", err
	}
	return merged.Hash, nil
}

func (e *resolutionEngine) resolveKeepBoth(ctx context.Context, pair models.ChangePair, result *ApplyResult) (string, error) {
	local, err := e.records.GetRecord(ctx, pair.ID)
	if err != nil {
		return "", fmt.Errorf("load local record: %w", err)
	}

	// the local copy survives under a fresh id, the remote copy keeps the
	// original one
	duplicate := local
	duplicate.ID = e.uuid.Generate()
	duplicate.Name = local.Name + " (copy)"
	duplicate.ModifiedAt = time.Now()

	if err := e.writeBoth(ctx, duplicate, result); err != nil {
		return "", fmt.Errorf("duplicate local copy: %w", err)
	}

	remote, err := e.transport.Get(ctx, pair.Remote.Path)
	if err != nil {
		return "", fmt.Errorf("fetch remote record: %w", err)
	}
	if remote.Hash == "" {
		remote.Hash = utils.HashPayload(remote.Payload)
	}
	if err := e.records.SaveRecords(ctx, remote); err != nil {
		return "", fmt.Errorf("save remote record locally: %w", err)
	}

	result.Upserts = append(result.Upserts, manifestFor(remote, remote.Hash, pair.Remote.ModifiedAt))
	return remote.Hash, nil
}

// pull copies one remote record into the local store.
func (e *resolutionEngine) pull(ctx context.Context, obj models.RemoteObject, result *ApplyResult) error {
	record, err := e.transport.Get(ctx, obj.Path)
	if err != nil {
		return fmt.Errorf("fetch remote record: %w", err)
	}
	if record.Hash == "" {
		record.Hash = utils.HashPayload(record.Payload)
	}

	if err := e.records.SaveRecords(ctx, record); err != nil {
		return fmt.Errorf("save pulled record: %w", err)
	}

	result.Upserts = append(result.Upserts, manifestFor(record, record.Hash, obj.ModifiedAt))
	result.Applied++
	return nil
}

// push uploads one local record to the remote directory.
func (e *resolutionEngine) push(ctx context.Context, id string, result *ApplyResult) error {
	record, err := e.records.GetRecord(ctx, id)
	if err != nil {
		return fmt.Errorf("load local record: %w", err)
	}

	obj, err := e.transport.Put(ctx, record)
	if err != nil {
		return fmt.Errorf("push record: %w", err)
	}

	result.Upserts = append(result.Upserts, manifestFor(record, record.Hash, obj.ModifiedAt))
	result.Applied++
	return nil
}

// dropRemote propagates a local deletion to the remote directory.
func (e *resolutionEngine) dropRemote(ctx context.Context, log *logger.Logger, obj models.RemoteObject, result *ApplyResult) {
	if err := e.transport.Delete(ctx, obj.Path); err != nil {
		e.recordFailure(log, result, obj.ID, err)
		return
	}
	result.Deletes = append(result.Deletes, obj.ID)
	result.Applied++
}

// writeBoth lands record on both sides and records the manifest move. The
// caller counts the record as applied; writeBoth itself does not.
func (e *resolutionEngine) writeBoth(ctx context.Context, record models.RecordSnapshot, result *ApplyResult) error {
	if err := e.records.SaveRecords(ctx, record); err != nil {
		return fmt.Errorf("save record locally: %w", err)
	}

	obj, err := e.transport.Put(ctx, record)
	if err != nil {
		return fmt.Errorf("push record: %w", err)
	}

	result.Upserts = append(result.Upserts, manifestFor(record, record.Hash, obj.ModifiedAt))
	return nil
}

func (e *resolutionEngine) recordFailure(log *logger.Logger, result *ApplyResult, id string, cause error) {
	applyErr := &ApplyError{ID: id, Cause: cause}
	log.Err(cause).
		Str("func", "resolutionEngine").
		Str("id", id).
		Msg("record application failed, skipping")
	result.Failed = append(result.Failed, applyErr)
}
