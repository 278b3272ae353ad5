package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jk278/lifetracker/internal/logger"
	"github.com/jk278/lifetracker/models"
)

type auditRepository struct {
	*DB
	logger *logger.Logger
}

func NewAuditRepository(db *DB, logger *logger.Logger) AuditRepository {
	return &auditRepository{
		DB:     db,
		logger: logger,
	}
}

func (a *auditRepository) Append(ctx context.Context, entry models.SyncAudit) error {
	_, err := a.DB.ExecContext(ctx, insertAuditEntry,
		entry.RecordID,
		string(entry.Choice),
		entry.LocalHash,
		entry.RemoteHash,
		entry.ResultHash,
		entry.ResolvedAt,
	)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "auditRepository.Append").
			Str("record_id", entry.RecordID).
			Msg("failed to append audit entry")
		return fmt.Errorf("failed to append audit entry for record %s: %w", entry.RecordID, err)
	}

	return nil
}

func (a *auditRepository) List(ctx context.Context, filter AuditFilter) ([]models.SyncAudit, error) {
	builder := sq.
		Select("record_id", "choice", "local_hash", "remote_hash", "result_hash", "resolved_at").
		From("sync_audit").
		OrderBy("resolved_at DESC", "id DESC")

	if filter.RecordID != "" {
		builder = builder.Where(sq.Eq{"record_id": filter.RecordID})
	}
	if !filter.Since.IsZero() {
		builder = builder.Where(sq.GtOrEq{"resolved_at": filter.Since})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit query: %w", err)
	}

	rows, err := a.DB.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "auditRepository.List").
			Msg("failed to list audit entries")
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []models.SyncAudit
	for rows.Next() {
		var (
			entry  models.SyncAudit
			choice string
		)
		if err := rows.Scan(
			&entry.RecordID,
			&choice,
			&entry.LocalHash,
			&entry.RemoteHash,
			&entry.ResultHash,
			&entry.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.Choice = models.Choice(choice)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}

	return entries, nil
}
