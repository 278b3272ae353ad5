package store

import (
	"context"
	"time"

	"github.com/jk278/lifetracker/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/storages_mock.go -package=mock

// RecordRepository is the low-level repository over the local records table.
// The sync core uses it for lazy payload loads and for applying pulled
// changes; the rest of the application shares the same table through its own
// CRUD transactions.
type RecordRepository interface {
	// SaveRecords upserts one or more full record snapshots.
	SaveRecords(ctx context.Context, records ...models.RecordSnapshot) error

	// GetRecord loads a single record snapshot by id. Returns
	// [ErrRecordNotFound] if no row exists.
	GetRecord(ctx context.Context, id string) (models.RecordSnapshot, error)

	// GetAllStates returns the lightweight descriptors of every record,
	// including soft-deleted ones, for the change detector.
	GetAllStates(ctx context.Context) ([]models.RecordState, error)

	// ListRecords returns full snapshots matching the filter. The sync core
	// loads records one by one; the filtered view serves the application's
	// own listings over the shared table.
	ListRecords(ctx context.Context, filter RecordFilter) ([]models.RecordSnapshot, error)

	// SoftDeleteRecord marks a record deleted without removing the row, so
	// the deletion can still propagate to the remote side.
	SoftDeleteRecord(ctx context.Context, id string, at time.Time) error

	// HardDeleteRecord removes the row. Used once a deletion has been
	// propagated (or arrived from) the remote side.
	HardDeleteRecord(ctx context.Context, id string) error
}

// RecordFilter narrows ListRecords. Zero values mean "no constraint".
type RecordFilter struct {
	Type           models.EntityType
	ModifiedSince  time.Time
	IncludeDeleted bool
	Limit          uint64
}

// ManifestRepository persists the last common state per record. It shares
// the database handle with RecordRepository so a round's manifest commit and
// the records it refers to can never diverge across a crash.
type ManifestRepository interface {
	// GetAll returns every manifest entry keyed by record id.
	GetAll(ctx context.Context) (map[string]models.ManifestEntry, error)

	// CommitRound applies all manifest updates of one sync round in a
	// single transaction: upserts and deletions commit together or not at
	// all. Returns [ErrManifestCommit]-wrapped errors on failure.
	CommitRound(ctx context.Context, upserts []models.ManifestEntry, deletes []string) error

	// Upsert writes a single entry outside a round commit. Sync rounds go
	// through CommitRound only; this serves maintenance tooling that edits
	// individual entries (restore, record import).
	Upsert(ctx context.Context, entry models.ManifestEntry) error

	// Delete removes a single entry outside a round commit.
	Delete(ctx context.Context, id string) error
}

// SettingsRepository is a small key/value store for persisted application
// settings such as the serialized sync configuration.
type SettingsRepository interface {
	// Get returns the raw value for key, or [ErrSettingNotFound].
	Get(ctx context.Context, key string) (string, error)

	// Set upserts the raw value for key.
	Set(ctx context.Context, key, value string) error
}

// AuditRepository records applied conflict resolutions. The audit trail is
// append-only and keeps both pre-resolution hashes of every decision.
type AuditRepository interface {
	// Append inserts one audit row.
	Append(ctx context.Context, entry models.SyncAudit) error

	// List returns audit rows matching the filter, newest first. It backs
	// the resolution-history view; the sync core only appends.
	List(ctx context.Context, filter AuditFilter) ([]models.SyncAudit, error)
}

// AuditFilter narrows List. Zero values mean "no constraint".
type AuditFilter struct {
	RecordID string
	Since    time.Time
	Limit    uint64
}
