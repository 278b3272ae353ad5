package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jk278/lifetracker/internal/logger"
	"github.com/jk278/lifetracker/internal/mock"
	"github.com/jk278/lifetracker/internal/utils"
	"github.com/jk278/lifetracker/models"
)

// ─────────────────────────── helpers ───────────────────────────

type engineMocks struct {
	records   *mock.MockRecordRepository
	audit     *mock.MockAuditRepository
	transport *mock.MockRemoteTransport
}

func newEngine(t *testing.T) (ResolutionEngine, engineMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := engineMocks{
		records:   mock.NewMockRecordRepository(ctrl),
		audit:     mock.NewMockAuditRepository(ctrl),
		transport: mock.NewMockRemoteTransport(ctrl),
	}
	return NewResolutionEngine(m.records, m.audit, m.transport, logger.Nop()), m
}

var engineNow = time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)

func pairs(ps ...models.ChangePair) map[string]models.ChangePair {
	out := make(map[string]models.ChangePair, len(ps))
	for _, p := range ps {
		out[p.ID] = p
	}
	return out
}

func conflictFor(pair models.ChangePair) models.ConflictItem {
	item := models.ConflictItem{
		ID:   pair.ID,
		Type: pair.Type,
	}
	if pair.Local != nil {
		item.LocalHash = pair.Local.Hash
	}
	if pair.Remote != nil {
		item.RemoteHash = pair.Remote.Hash
	}
	return item
}

// ─────────────────────────── ApplyChanges ───────────────────────────

// TestApplyChanges_PullSavesAndRecordsManifestMove verifies that a pulled
// record lands in the local store and queues a manifest upsert recording
// the new common state.
func TestApplyChanges_PullSavesAndRecordsManifestMove(t *testing.T) {
	e, m := newEngine(t)

	record := snapshot("rec-1", "Report", `{"name":"Report"}`, engineNow)
	obj := models.RemoteObject{
		ID:         "rec-1",
		Type:       models.EntityTask,
		Path:       "/lifetracker/task/rec-1.json",
		Hash:       record.Hash,
		ModifiedAt: engineNow,
	}

	m.transport.EXPECT().Get(gomock.Any(), obj.Path).Return(record, nil)
	m.records.EXPECT().SaveRecords(gomock.Any(), record).Return(nil)

	result, err := e.ApplyChanges(testContext(), models.ChangeSet{Pulls: []models.RemoteObject{obj}}, models.Classification{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Empty(t, result.Failed)
	require.Len(t, result.Upserts, 1)
	assert.Equal(t, record.Hash, result.Upserts[0].LastLocalHash)
	assert.Equal(t, record.Hash, result.Upserts[0].LastRemoteHash)
	assert.Equal(t, record.Payload, result.Upserts[0].BasePayload)
}

// TestApplyChanges_PullComputesMissingHash verifies that a pulled record
// without a content hash gets one computed before being saved.
func TestApplyChanges_PullComputesMissingHash(t *testing.T) {
	e, m := newEngine(t)

	record := snapshot("rec-1", "Report", `{"name":"Report"}`, engineNow)
	wantHash := record.Hash
	record.Hash = ""
	obj := models.RemoteObject{ID: "rec-1", Path: "/lifetracker/task/rec-1.json"}

	m.transport.EXPECT().Get(gomock.Any(), obj.Path).Return(record, nil)
	m.records.EXPECT().SaveRecords(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, saved ...models.RecordSnapshot) error {
			require.Len(t, saved, 1)
			assert.Equal(t, wantHash, saved[0].Hash)
			return nil
		})

	result, err := e.ApplyChanges(testContext(), models.ChangeSet{Pulls: []models.RemoteObject{obj}}, models.Classification{})

	require.NoError(t, err)
	require.Len(t, result.Upserts, 1)
	assert.Equal(t, wantHash, result.Upserts[0].LastLocalHash)
}

// TestApplyChanges_PushUploadsLocalRecord verifies the push path: load from
// the store, upload, queue the manifest move.
func TestApplyChanges_PushUploadsLocalRecord(t *testing.T) {
	e, m := newEngine(t)

	record := snapshot("rec-1", "Report", `{"name":"Report"}`, engineNow)
	state := models.RecordState{ID: "rec-1", Hash: record.Hash}
	uploaded := models.RemoteObject{ID: "rec-1", ModifiedAt: engineNow.Add(time.Second)}

	m.records.EXPECT().GetRecord(gomock.Any(), "rec-1").Return(record, nil)
	m.transport.EXPECT().Put(gomock.Any(), record).Return(uploaded, nil)

	result, err := e.ApplyChanges(testContext(), models.ChangeSet{Pushes: []models.RecordState{state}}, models.Classification{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	require.Len(t, result.Upserts, 1)
	assert.Equal(t, uploaded.ModifiedAt, result.Upserts[0].LastRemoteModified)
}

// TestApplyChanges_Deletions verifies all three delete flavours: remote
// deletion propagating locally, local deletion propagating remotely, and
// both-sides-gone garbage collection.
func TestApplyChanges_Deletions(t *testing.T) {
	e, m := newEngine(t)

	obj := models.RemoteObject{ID: "rec-2", Path: "/lifetracker/task/rec-2.json"}
	set := models.ChangeSet{
		DeleteLocal:  []string{"rec-1"},
		DeleteRemote: []models.RemoteObject{obj},
		Forget:       []string{"rec-3"},
	}

	m.records.EXPECT().SoftDeleteRecord(gomock.Any(), "rec-1", gomock.Any()).Return(nil)
	m.transport.EXPECT().Delete(gomock.Any(), obj.Path).Return(nil)
	m.records.EXPECT().HardDeleteRecord(gomock.Any(), "rec-3").Return(nil)

	result, err := e.ApplyChanges(testContext(), set, models.Classification{})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rec-1", "rec-2", "rec-3"}, result.Deletes)
	// garbage collection does not count as applied data movement
	assert.Equal(t, 2, result.Applied)
}

// TestApplyChanges_ClassifierConfirmedDeletionPropagates verifies that a
// deletion the classifier confirmed against downloaded content is applied
// like any other remote deletion.
func TestApplyChanges_ClassifierConfirmedDeletionPropagates(t *testing.T) {
	e, m := newEngine(t)

	obj := models.RemoteObject{ID: "rec-1", Path: "/lifetracker/task/rec-1.json"}

	m.transport.EXPECT().Delete(gomock.Any(), obj.Path).Return(nil)

	result, err := e.ApplyChanges(testContext(), models.ChangeSet{},
		models.Classification{DeleteRemote: []models.RemoteObject{obj}})

	require.NoError(t, err)
	assert.Equal(t, []string{"rec-1"}, result.Deletes)
	assert.Equal(t, 1, result.Applied)
	assert.Empty(t, result.Upserts)
}

// TestApplyChanges_CancelledBeforeGarbageCollection verifies that a
// cancelled context stops the round before the both-sides-gone cleanup runs.
func TestApplyChanges_CancelledBeforeGarbageCollection(t *testing.T) {
	e, _ := newEngine(t)

	ctx, cancel := context.WithCancel(testContext())
	cancel()

	result, err := e.ApplyChanges(ctx, models.ChangeSet{Forget: []string{"rec-1"}}, models.Classification{})

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Deletes)
}

// TestApplyChanges_MergedRecordLandsOnBothSides verifies that an
// auto-merged record is written locally and uploaded.
func TestApplyChanges_MergedRecordLandsOnBothSides(t *testing.T) {
	e, m := newEngine(t)

	merged := snapshot("rec-1", "Report", `{"name":"Report","done":true}`, engineNow)
	uploaded := models.RemoteObject{ID: "rec-1", ModifiedAt: engineNow}

	m.records.EXPECT().SaveRecords(gomock.Any(), merged).Return(nil)
	m.transport.EXPECT().Put(gomock.Any(), merged).Return(uploaded, nil)

	result, err := e.ApplyChanges(testContext(), models.ChangeSet{}, models.Classification{Merges: []models.RecordSnapshot{merged}})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	require.Len(t, result.Upserts, 1)
	assert.Equal(t, merged.Hash, result.Upserts[0].LastLocalHash)
}

// TestApplyChanges_ManifestOnlyEntriesPassThrough verifies that
// manifest-only verdicts reach the result untouched without any store or
// transport traffic.
func TestApplyChanges_ManifestOnlyEntriesPassThrough(t *testing.T) {
	e, _ := newEngine(t)

	entry := models.ManifestEntry{ID: "rec-1", LastLocalHash: "h1"}

	result, err := e.ApplyChanges(testContext(), models.ChangeSet{}, models.Classification{ManifestOnly: []models.ManifestEntry{entry}})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Applied)
	assert.Equal(t, []models.ManifestEntry{entry}, result.Upserts)
}

// TestApplyChanges_FailureIsolation verifies that one record failing does
// not stop the others: the failure is recorded per id and the round goes
// on.
func TestApplyChanges_FailureIsolation(t *testing.T) {
	e, m := newEngine(t)

	good := snapshot("rec-2", "Report", `{"name":"Report"}`, engineNow)
	objBad := models.RemoteObject{ID: "rec-1", Path: "/lifetracker/task/rec-1.json"}
	objGood := models.RemoteObject{ID: "rec-2", Path: "/lifetracker/task/rec-2.json"}

	m.transport.EXPECT().Get(gomock.Any(), objBad.Path).Return(models.RecordSnapshot{}, assert.AnError)
	m.transport.EXPECT().Get(gomock.Any(), objGood.Path).Return(good, nil)
	m.records.EXPECT().SaveRecords(gomock.Any(), good).Return(nil)

	result, err := e.ApplyChanges(testContext(), models.ChangeSet{Pulls: []models.RemoteObject{objBad, objGood}}, models.Classification{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "rec-1", result.Failed[0].ID)
	assert.ErrorIs(t, result.Failed[0], assert.AnError)
	require.Len(t, result.Upserts, 1)
	assert.Equal(t, "rec-2", result.Upserts[0].ID)
}

// ─────────────────────────── ResolveConflicts ───────────────────────────

// TestResolveConflicts_UndecidedStayPending verifies that conflicts without
// a decision are skipped entirely.
func TestResolveConflicts_UndecidedStayPending(t *testing.T) {
	e, _ := newEngine(t)

	local := snapshot("rec-1", "Report", `{"name":"Report"}`, engineNow)
	remote := snapshot("rec-1", "Report", `{"name":"Other"}`, engineNow)
	pair := disputedPair(local, remote, nil)

	result, err := e.ResolveConflicts(testContext(), pairs(pair), []models.ConflictItem{conflictFor(pair)}, nil)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Applied)
	assert.Empty(t, result.Failed)
}

// TestResolveConflicts_UseLocal verifies that use_local pushes the local
// copy, queues a manifest move with matching hashes on both sides and
// appends an audit row.
func TestResolveConflicts_UseLocal(t *testing.T) {
	e, m := newEngine(t)

	local := snapshot("rec-1", "Report", `{"name":"Report","done":true}`, engineNow)
	remote := snapshot("rec-1", "Report", `{"name":"Report"}`, engineNow.Add(-time.Hour))
	pair := disputedPair(local, remote, basePayloadEntry("rec-1", `{"name":"Report"}`))
	conflict := conflictFor(pair)
	uploaded := models.RemoteObject{ID: "rec-1", ModifiedAt: engineNow.Add(time.Second)}

	m.records.EXPECT().GetRecord(gomock.Any(), "rec-1").Return(local, nil)
	m.transport.EXPECT().Put(gomock.Any(), local).Return(uploaded, nil)
	m.audit.EXPECT().Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, entry models.SyncAudit) error {
			assert.Equal(t, "rec-1", entry.RecordID)
			assert.Equal(t, models.ChoiceUseLocal, entry.Choice)
			assert.Equal(t, conflict.LocalHash, entry.LocalHash)
			assert.Equal(t, conflict.RemoteHash, entry.RemoteHash)
			assert.Equal(t, local.Hash, entry.ResultHash)
			assert.False(t, entry.ResolvedAt.IsZero())
			return nil
		})

	result, err := e.ResolveConflicts(testContext(), pairs(pair),
		[]models.ConflictItem{conflict}, models.ResolutionDecision{"rec-1": models.ChoiceUseLocal})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	require.Len(t, result.Upserts, 1)
	entry := result.Upserts[0]
	assert.Equal(t, local.Hash, entry.LastLocalHash)
	assert.Equal(t, local.Hash, entry.LastRemoteHash)
}

// TestResolveConflicts_UseLocalDeletion verifies that picking a deleted
// local side removes the remote copy and drops the local tombstone.
func TestResolveConflicts_UseLocalDeletion(t *testing.T) {
	e, m := newEngine(t)

	local := snapshot("rec-1", "Report", `{"name":"Report"}`, engineNow)
	local.Deleted = true
	remote := snapshot("rec-1", "Report", `{"name":"Report","done":true}`, engineNow)
	pair := disputedPair(local, remote, basePayloadEntry("rec-1", `{"name":"Report"}`))

	m.transport.EXPECT().Delete(gomock.Any(), pair.Remote.Path).Return(nil)
	m.records.EXPECT().HardDeleteRecord(gomock.Any(), "rec-1").Return(nil)
	m.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	result, err := e.ResolveConflicts(testContext(), pairs(pair),
		[]models.ConflictItem{conflictFor(pair)}, models.ResolutionDecision{"rec-1": models.ChoiceUseLocal})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, []string{"rec-1"}, result.Deletes)
	assert.Empty(t, result.Upserts)
}

// TestResolveConflicts_UseRemote verifies that use_remote fetches and saves
// the remote copy and aligns the manifest to its hash.
func TestResolveConflicts_UseRemote(t *testing.T) {
	e, m := newEngine(t)

	local := snapshot("rec-1", "Report", `{"name":"Report"}`, engineNow)
	remote := snapshot("rec-1", "Report", `{"name":"Report","done":true}`, engineNow.Add(time.Hour))
	pair := disputedPair(local, remote, nil)

	m.transport.EXPECT().Get(gomock.Any(), pair.Remote.Path).Return(remote, nil)
	m.records.EXPECT().SaveRecords(gomock.Any(), remote).Return(nil)
	m.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	result, err := e.ResolveConflicts(testContext(), pairs(pair),
		[]models.ConflictItem{conflictFor(pair)}, models.ResolutionDecision{"rec-1": models.ChoiceUseRemote})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	require.Len(t, result.Upserts, 1)
	assert.Equal(t, remote.Hash, result.Upserts[0].LastLocalHash)
	assert.Equal(t, remote.Hash, result.Upserts[0].LastRemoteHash)
}

// TestResolveConflicts_UseRemoteDeletion verifies that picking a vanished
// remote side soft-deletes the local copy.
func TestResolveConflicts_UseRemoteDeletion(t *testing.T) {
	e, m := newEngine(t)

	local := snapshot("rec-1", "Report", `{"name":"Report"}`, engineNow)
	localState := models.RecordState{ID: "rec-1", Type: models.EntityTask, Hash: local.Hash}
	pair := models.ChangePair{ID: "rec-1", Local: &localState, InManifest: true,
		Base: basePayloadEntry("rec-1", `{"name":"Report"}`)}

	m.records.EXPECT().SoftDeleteRecord(gomock.Any(), "rec-1", gomock.Any()).Return(nil)
	m.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	result, err := e.ResolveConflicts(testContext(), pairs(pair),
		[]models.ConflictItem{conflictFor(pair)}, models.ResolutionDecision{"rec-1": models.ChoiceUseRemote})

	require.NoError(t, err)
	assert.Equal(t, []string{"rec-1"}, result.Deletes)
}

// TestResolveConflicts_Merge verifies the manual merge path: both deltas
// are applied over the common ancestor with the local value winning on
// overlap, and the result lands on both sides.
func TestResolveConflicts_Merge(t *testing.T) {
	e, m := newEngine(t)

	base := basePayloadEntry("rec-1", `{"name":"Report","done":false}`)
	local := snapshot("rec-1", "Report", `{"name":"Local title","done":false}`, engineNow)
	remote := snapshot("rec-1", "Report", `{"name":"Remote title","done":true}`, engineNow)
	pair := disputedPair(local, remote, base)

	var saved models.RecordSnapshot
	m.records.EXPECT().GetRecord(gomock.Any(), "rec-1").Return(local, nil)
	m.transport.EXPECT().Get(gomock.Any(), pair.Remote.Path).Return(remote, nil)
	m.records.EXPECT().SaveRecords(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, records ...models.RecordSnapshot) error {
			require.Len(t, records, 1)
			saved = records[0]
			return nil
		})
	m.transport.EXPECT().Put(gomock.Any(), gomock.Any()).Return(models.RemoteObject{ID: "rec-1"}, nil)
	m.audit.EXPECT().Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, entry models.SyncAudit) error {
			assert.Equal(t, models.ChoiceMerge, entry.Choice)
			assert.Equal(t, saved.Hash, entry.ResultHash)
			return nil
		})

	result, err := e.ResolveConflicts(testContext(), pairs(pair),
		[]models.ConflictItem{conflictFor(pair)}, models.ResolutionDecision{"rec-1": models.ChoiceMerge})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(saved.Payload, &payload))
	assert.Equal(t, "Local title", payload["name"])
	assert.Equal(t, true, payload["done"])
	assert.Equal(t, utils.HashPayload(saved.Payload), saved.Hash)
}

// TestResolveConflicts_MergeWithoutAncestorFails verifies that merge is
// refused for pairs with no common ancestor; the failure is recorded and
// the conflict stays unresolved.
func TestResolveConflicts_MergeWithoutAncestorFails(t *testing.T) {
	e, _ := newEngine(t)

	local := snapshot("rec-1", "Report", `{"name":"Report"}`, engineNow)
	remote := snapshot("rec-1", "Report", `{"name":"Other"}`, engineNow)
	pair := disputedPair(local, remote, nil)

	result, err := e.ResolveConflicts(testContext(), pairs(pair),
		[]models.ConflictItem{conflictFor(pair)}, models.ResolutionDecision{"rec-1": models.ChoiceMerge})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Applied)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "rec-1", result.Failed[0].ID)
}

// TestResolveConflicts_KeepBoth verifies that keep_both pushes the local
// copy under a fresh id with a "(copy)" name suffix and keeps the remote
// copy under the original id.
func TestResolveConflicts_KeepBoth(t *testing.T) {
	e, m := newEngine(t)

	local := snapshot("rec-1", "Report", `{"name":"Report"}`, engineNow)
	remote := snapshot("rec-1", "Report", `{"name":"Report","done":true}`, engineNow)
	pair := disputedPair(local, remote, basePayloadEntry("rec-1", `{"name":"Report"}`))

	var duplicate models.RecordSnapshot
	m.records.EXPECT().GetRecord(gomock.Any(), "rec-1").Return(local, nil)
	m.records.EXPECT().SaveRecords(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, records ...models.RecordSnapshot) error {
			require.Len(t, records, 1)
			duplicate = records[0]
			return nil
		})
	m.transport.EXPECT().Put(gomock.Any(), gomock.Any()).Return(models.RemoteObject{}, nil)
	m.transport.EXPECT().Get(gomock.Any(), pair.Remote.Path).Return(remote, nil)
	m.records.EXPECT().SaveRecords(gomock.Any(), remote).Return(nil)
	m.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	result, err := e.ResolveConflicts(testContext(), pairs(pair),
		[]models.ConflictItem{conflictFor(pair)}, models.ResolutionDecision{"rec-1": models.ChoiceKeepBoth})

	require.NoError(t, err)
	assert.NotEmpty(t, duplicate.ID)
	assert.NotEqual(t, "rec-1", duplicate.ID)
	assert.Equal(t, "Report (copy)", duplicate.Name)
	// both the duplicate and the surviving original get manifest entries
	require.Len(t, result.Upserts, 2)
	assert.Equal(t, duplicate.ID, result.Upserts[0].ID)
	assert.Equal(t, "rec-1", result.Upserts[1].ID)
}

// TestResolveConflicts_KeepBothCollapsesWhenOneSideGone verifies that
// keep_both with a vanished remote copy degrades to keeping the live local
// side; no duplicate is created.
func TestResolveConflicts_KeepBothCollapsesWhenOneSideGone(t *testing.T) {
	e, m := newEngine(t)

	local := snapshot("rec-1", "Report", `{"name":"Report"}`, engineNow)
	localState := models.RecordState{ID: "rec-1", Type: models.EntityTask, Hash: local.Hash}
	pair := models.ChangePair{ID: "rec-1", Local: &localState, InManifest: true,
		Base: basePayloadEntry("rec-1", `{"name":"Report"}`)}

	m.records.EXPECT().GetRecord(gomock.Any(), "rec-1").Return(local, nil)
	m.transport.EXPECT().Put(gomock.Any(), local).Return(models.RemoteObject{ID: "rec-1"}, nil)
	m.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	result, err := e.ResolveConflicts(testContext(), pairs(pair),
		[]models.ConflictItem{conflictFor(pair)}, models.ResolutionDecision{"rec-1": models.ChoiceKeepBoth})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	require.Len(t, result.Upserts, 1)
	assert.Equal(t, "rec-1", result.Upserts[0].ID)
}

// TestResolveConflicts_UnknownChoice verifies that an unrecognized decision
// value is recorded as a per-record failure.
func TestResolveConflicts_UnknownChoice(t *testing.T) {
	e, _ := newEngine(t)

	local := snapshot("rec-1", "Report", `{"name":"Report"}`, engineNow)
	remote := snapshot("rec-1", "Report", `{"name":"Other"}`, engineNow)
	pair := disputedPair(local, remote, nil)

	result, err := e.ResolveConflicts(testContext(), pairs(pair),
		[]models.ConflictItem{conflictFor(pair)}, models.ResolutionDecision{"rec-1": "flip_coin"})

	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.ErrorIs(t, result.Failed[0], ErrUnknownChoice)
}

// TestResolveConflicts_AuditFailureDoesNotUndoResolution verifies that a
// failed audit append is logged but the resolution itself still counts.
func TestResolveConflicts_AuditFailureDoesNotUndoResolution(t *testing.T) {
	e, m := newEngine(t)

	local := snapshot("rec-1", "Report", `{"name":"Report"}`, engineNow)
	remote := snapshot("rec-1", "Report", `{"name":"Other"}`, engineNow)
	pair := disputedPair(local, remote, nil)

	m.records.EXPECT().GetRecord(gomock.Any(), "rec-1").Return(local, nil)
	m.transport.EXPECT().Put(gomock.Any(), local).Return(models.RemoteObject{}, nil)
	m.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(assert.AnError)

	result, err := e.ResolveConflicts(testContext(), pairs(pair),
		[]models.ConflictItem{conflictFor(pair)}, models.ResolutionDecision{"rec-1": models.ChoiceUseLocal})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Empty(t, result.Failed)
}
