package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jk278/lifetracker/internal/logger"
	"github.com/jk278/lifetracker/models"
)

type manifestRepository struct {
	*DB
	logger *logger.Logger
}

func NewManifestRepository(db *DB, logger *logger.Logger) ManifestRepository {
	return &manifestRepository{
		DB:     db,
		logger: logger,
	}
}

func (m *manifestRepository) GetAll(ctx context.Context) (map[string]models.ManifestEntry, error) {
	log := logger.FromContext(ctx)

	rows, err := m.DB.QueryContext(ctx, getAllManifestEntries)
	if err != nil {
		log.Err(err).
			Str("func", "manifestRepository.GetAll").
			Msg("failed to execute query for manifest entries")
		return nil, fmt.Errorf("failed to query manifest entries: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]models.ManifestEntry)
	for rows.Next() {
		var entry models.ManifestEntry
		var basePayload sql.NullString

		scanErr := rows.Scan(
			&entry.ID,
			&entry.Type,
			&entry.LastLocalHash,
			&entry.LastLocalModified,
			&entry.LastRemoteHash,
			&entry.LastRemoteModified,
			&basePayload,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "manifestRepository.GetAll").
				Msg("failed to scan manifest row")
			return nil, fmt.Errorf("failed to scan manifest row: %w", scanErr)
		}

		if basePayload.Valid {
			entry.BasePayload = []byte(basePayload.String)
		}
		entries[entry.ID] = entry
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("manifest iteration: %w", rowsErr)
	}

	return entries, nil
}

// CommitRound writes the whole round's manifest changes inside one
// transaction. A crash or error anywhere in the batch leaves the previous
// manifest intact, so every record touched this round is re-detected on the
// next one instead of being silently marked synced.
func (m *manifestRepository) CommitRound(ctx context.Context, upserts []models.ManifestEntry, deletes []string) error {
	log := logger.FromContext(ctx)

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %w", ErrManifestCommit, err)
	}
	defer tx.Rollback()

	for _, entry := range upserts {
		if err := execUpsertManifest(ctx, tx, entry); err != nil {
			log.Err(err).
				Str("func", "manifestRepository.CommitRound").
				Str("id", entry.ID).
				Msg("manifest upsert failed, rolling back round")
			return fmt.Errorf("%w: upsert %s: %w", ErrManifestCommit, entry.ID, err)
		}
	}

	for _, id := range deletes {
		if _, err := tx.ExecContext(ctx, deleteManifestEntry, id); err != nil {
			log.Err(err).
				Str("func", "manifestRepository.CommitRound").
				Str("id", id).
				Msg("manifest delete failed, rolling back round")
			return fmt.Errorf("%w: delete %s: %w", ErrManifestCommit, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrManifestCommit, err)
	}

	return nil
}

func (m *manifestRepository) Upsert(ctx context.Context, entry models.ManifestEntry) error {
	log := logger.FromContext(ctx)

	if err := execUpsertManifest(ctx, m.DB, entry); err != nil {
		log.Err(err).
			Str("func", "manifestRepository.Upsert").
			Str("id", entry.ID).
			Msg("failed to upsert manifest entry")
		return fmt.Errorf("failed to upsert manifest entry (id=%s): %w", entry.ID, err)
	}

	return nil
}

func (m *manifestRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	if _, err := m.DB.ExecContext(ctx, deleteManifestEntry, id); err != nil {
		log.Err(err).
			Str("func", "manifestRepository.Delete").
			Str("id", id).
			Msg("failed to delete manifest entry")
		return fmt.Errorf("failed to delete manifest entry (id=%s): %w", id, err)
	}

	return nil
}

// execer is satisfied by both *sql.DB (via DB) and *sql.Tx, so single
// upserts and round commits share the same statement.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execUpsertManifest(ctx context.Context, ex execer, entry models.ManifestEntry) error {
	var basePayload any
	if len(entry.BasePayload) > 0 {
		basePayload = string(entry.BasePayload)
	}

	_, err := ex.ExecContext(ctx, upsertManifestEntry,
		entry.ID,
		entry.Type,
		entry.LastLocalHash,
		entry.LastLocalModified,
		entry.LastRemoteHash,
		entry.LastRemoteModified,
		basePayload,
	)
	return err
}
