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

type conflictClassifier struct {
	records   store.RecordRepository
	transport adapter.RemoteTransport
	logger    *logger.Logger
}

func NewConflictClassifier(records store.RecordRepository, transport adapter.RemoteTransport, log *logger.Logger) ConflictClassifier {
	return &conflictClassifier{
		records:   records,
		transport: transport,
		logger:    log,
	}
}

// Classify implements ConflictClassifier.
//
// Payloads are fetched here, lazily: only the pairs the detector could not
// settle from hashes alone pay the download cost. Per pair the verdict is,
// in order:
//
//  1. identical content on both sides → manifest-only move, no conflict;
//  2. deletion against an edit → timestamp conflict (nothing to diff),
//     unless the surviving side only looked changed because its listed hash
//     was unrecoverable and its content matches the last agreed state — then
//     the deletion propagates;
//  3. no common ancestor → fresh_data conflict;
//  4. disjoint (or value-identical) field edits since the ancestor →
//     auto-merge, no conflict surfaced;
//  5. overlapping field edits that disagree → content conflict;
//  6. payloads the field machinery cannot diff → timestamp conflict.
//
// Timestamp conflicts carry a later-modified-wins SuggestedChoice. It is
// advisory only; nothing here ever applies it.
func (c *conflictClassifier) Classify(ctx context.Context, disputed []models.ChangePair) (models.Classification, error) {
	var cls models.Classification
	log := logger.FromContext(ctx)

	for _, pair := range disputed {
		if err := ctx.Err(); err != nil {
			return models.Classification{}, err
		}

		verdict, err := c.classifyPair(ctx, pair)
		if err != nil {
			return models.Classification{}, fmt.Errorf("classify record %s: %w", pair.ID, err)
		}

		switch {
		case verdict.merged != nil:
			cls.Merges = append(cls.Merges, *verdict.merged)
		case verdict.manifestOnly != nil:
			cls.ManifestOnly = append(cls.ManifestOnly, *verdict.manifestOnly)
		case verdict.deleteRemote != nil:
			cls.DeleteRemote = append(cls.DeleteRemote, *verdict.deleteRemote)
		default:
			log.Debug().
				Str("func", "conflictClassifier.Classify").
				Str("id", pair.ID).
				Str("conflict_type", string(verdict.conflict.ConflictType)).
				Msg("conflict surfaced")
			cls.Conflicts = append(cls.Conflicts, verdict.conflict)
		}
	}

	return cls, nil
}

type pairVerdict struct {
	merged       *models.RecordSnapshot
	manifestOnly *models.ManifestEntry
	deleteRemote *models.RemoteObject
	conflict     models.ConflictItem
}

func (c *conflictClassifier) classifyPair(ctx context.Context, pair models.ChangePair) (pairVerdict, error) {
	localGone := pair.Local == nil || pair.Local.Deleted
	remoteGone := pair.Remote == nil

	// deletion against an edit: nothing to diff, the user must pick a side
	if localGone || remoteGone {
		// A listing without a recoverable hash marked the remote changed on
		// suspicion alone. Download the content before surfacing a conflict;
		// an unchanged remote means the local deletion simply propagates.
		// (Local hashes always come from the store, so the mirrored case
		// cannot arise.)
		if localGone && !remoteGone && pair.InManifest && pair.Remote.Hash == "" {
			remote, err := c.transport.Get(ctx, pair.Remote.Path)
			if err != nil {
				return pairVerdict{}, fmt.Errorf("load remote record: %w", err)
			}
			if utils.HashPayload(remote.Payload) == pair.Base.LastRemoteHash {
				return pairVerdict{deleteRemote: pair.Remote}, nil
			}
		}
		return pairVerdict{conflict: c.deletionConflict(ctx, pair, localGone)}, nil
	}

	local, err := c.records.GetRecord(ctx, pair.ID)
	if err != nil {
		return pairVerdict{}, fmt.Errorf("load local record: %w", err)
	}

	remote, err := c.transport.Get(ctx, pair.Remote.Path)
	if err != nil {
		return pairVerdict{}, fmt.Errorf("load remote record: %w", err)
	}
	if remote.Hash == "" {
		remote.Hash = utils.HashPayload(remote.Payload)
	}

	// identical content: both sides already agree, only the manifest moves
	if local.Hash == remote.Hash {
		entry := manifestFor(local, local.Hash, remote.ModifiedAt)
		return pairVerdict{manifestOnly: &entry}, nil
	}

	if !pair.InManifest {
		return pairVerdict{conflict: c.freshDataConflict(local, remote)}, nil
	}

	base, baseOK := decodeObject(pair.Base.BasePayload)
	localObj, localOK := decodeObject(local.Payload)
	remoteObj, remoteOK := decodeObject(remote.Payload)

	// opaque payloads degrade to a timestamp conflict
	if !baseOK || !localOK || !remoteOK {
		return pairVerdict{conflict: c.timestampConflict(local, remote)}, nil
	}

	localDelta := deltaSince(base, localObj)
	remoteDelta := deltaSince(base, remoteObj)

	if len(conflictingKeys(localDelta, remoteDelta)) > 0 {
		return pairVerdict{conflict: c.contentConflict(local, remote, localDelta, remoteDelta)}, nil
	}

	mergedPayload, err := mergePayloads(base, localDelta, remoteDelta)
	if err != nil {
		return pairVerdict{}, fmt.Errorf("auto-merge: %w", err)
	}

	merged := local
	merged.Payload = mergedPayload
	merged.Hash = utils.HashPayload(mergedPayload)
	if remote.ModifiedAt.After(merged.ModifiedAt) {
		merged.ModifiedAt = remote.ModifiedAt
	}

	return pairVerdict{merged: &merged}, nil
}

func (c *conflictClassifier) deletionConflict(ctx context.Context, pair models.ChangePair, localGone bool) models.ConflictItem {
	item := models.ConflictItem{
		ID:           pair.ID,
		Type:         pair.Type,
		ConflictType: models.ConflictTimestamp,
	}

	if pair.Local != nil {
		item.Name = pair.Local.Name
		item.LocalModified = pair.Local.ModifiedAt
		item.LocalHash = pair.Local.Hash
	}
	if localGone {
		item.LocalPreview = deletedPreview
	} else if record, err := c.records.GetRecord(ctx, pair.ID); err == nil {
		item.LocalPreview = previewFromSnapshot(record)
	}

	if pair.Remote == nil {
		item.RemotePreview = deletedPreview
	} else {
		remoteModified := pair.Remote.ModifiedAt
		item.RemoteModified = &remoteModified
		item.RemoteHash = pair.Remote.Hash
		item.FileSize = pair.Remote.Size
		if record, err := c.transport.Get(ctx, pair.Remote.Path); err == nil {
			if item.Name == "" {
				item.Name = record.Name
			}
			item.RemotePreview = previewFromSnapshot(record)
		}
	}

	item.SuggestedChoice = suggestChoice(item)
	return item
}

func (c *conflictClassifier) freshDataConflict(local, remote models.RecordSnapshot) models.ConflictItem {
	item := baseConflict(local, remote)
	item.ConflictType = models.ConflictFreshData
	item.LocalPreview = previewFromSnapshot(local)
	item.RemotePreview = previewFromSnapshot(remote)
	item.SuggestedChoice = suggestChoice(item)
	return item
}

func (c *conflictClassifier) timestampConflict(local, remote models.RecordSnapshot) models.ConflictItem {
	item := baseConflict(local, remote)
	item.ConflictType = models.ConflictTimestamp
	item.LocalPreview = previewFromSnapshot(local)
	item.RemotePreview = previewFromSnapshot(remote)
	item.SuggestedChoice = suggestChoice(item)
	return item
}

func (c *conflictClassifier) contentConflict(local, remote models.RecordSnapshot, localDelta, remoteDelta fieldDelta) models.ConflictItem {
	item := baseConflict(local, remote)
	item.ConflictType = models.ConflictContent
	item.LocalPreview = previewFromDelta(local.Name, localDelta)
	item.RemotePreview = previewFromDelta(remote.Name, remoteDelta)
	item.SuggestedChoice = suggestChoice(item)
	return item
}

func baseConflict(local, remote models.RecordSnapshot) models.ConflictItem {
	remoteModified := remote.ModifiedAt
	return models.ConflictItem{
		ID:             local.ID,
		Type:           local.Type,
		Name:           local.Name,
		LocalModified:  local.ModifiedAt,
		RemoteModified: &remoteModified,
		FileSize:       int64(len(remote.Payload)),
		LocalHash:      local.Hash,
		RemoteHash:     remote.Hash,
	}
}

// suggestChoice is the later-modified-wins hint attached to every conflict.
func suggestChoice(item models.ConflictItem) models.Choice {
	if item.RemoteModified != nil && item.RemoteModified.After(item.LocalModified) {
		return models.ChoiceUseRemote
	}
	return models.ChoiceUseLocal
}

// manifestFor builds the manifest entry that records snapshot's content as
// the new agreed state on both sides.
func manifestFor(record models.RecordSnapshot, remoteHash string, remoteModified time.Time) models.ManifestEntry {
	return models.ManifestEntry{
		ID:                 record.ID,
		Type:               record.Type,
		LastLocalHash:      record.Hash,
		LastLocalModified:  record.ModifiedAt,
		LastRemoteHash:     remoteHash,
		LastRemoteModified: remoteModified,
		BasePayload:        record.Payload,
	}
}
