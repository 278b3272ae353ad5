package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jk278/lifetracker/internal/logger"
	"github.com/jk278/lifetracker/models"
)

type recordRepository struct {
	*DB
	logger *logger.Logger
}

func NewRecordRepository(db *DB, logger *logger.Logger) RecordRepository {
	return &recordRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *recordRepository) SaveRecords(ctx context.Context, records ...models.RecordSnapshot) error {
	log := logger.FromContext(ctx)

	for _, item := range records {
		_, err := r.DB.ExecContext(ctx, saveRecord,
			item.ID,
			item.Type,
			item.Name,
			string(item.Payload),
			item.Hash,
			item.ModifiedAt,
			item.Deleted,
		)
		if err != nil {
			log.Err(err).
				Str("func", "recordRepository.SaveRecords").
				Str("id", item.ID).
				Msg("failed to execute upsert for record")
			return fmt.Errorf("failed to save record (id=%s): %w", item.ID, err)
		}
	}

	return nil
}

func (r *recordRepository) GetRecord(ctx context.Context, id string) (models.RecordSnapshot, error) {
	log := logger.FromContext(ctx)

	var item models.RecordSnapshot
	var payload string

	row := r.DB.QueryRowContext(ctx, getRecord, id)
	err := row.Scan(
		&item.ID,
		&item.Type,
		&item.Name,
		&payload,
		&item.Hash,
		&item.ModifiedAt,
		&item.Deleted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RecordSnapshot{}, ErrRecordNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.GetRecord").
			Str("id", id).
			Msg("failed to scan record row")
		return models.RecordSnapshot{}, fmt.Errorf("failed to scan record row: %w", err)
	}

	item.Payload = []byte(payload)
	return item, nil
}

func (r *recordRepository) GetAllStates(ctx context.Context) ([]models.RecordState, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, getAllRecordStates)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.GetAllStates").
			Msg("failed to execute query for record states")
		return nil, fmt.Errorf("failed to query record states: %w", err)
	}
	defer rows.Close()

	var states []models.RecordState
	for rows.Next() {
		var st models.RecordState

		scanErr := rows.Scan(
			&st.ID,
			&st.Type,
			&st.Name,
			&st.Hash,
			&st.ModifiedAt,
			&st.Deleted,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "recordRepository.GetAllStates").
				Msg("failed to scan record state row")
			return nil, fmt.Errorf("failed to scan record state row: %w", scanErr)
		}

		states = append(states, st)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "recordRepository.GetAllStates").
			Msg("row iteration error")
		return nil, fmt.Errorf("record states iteration: %w", rowsErr)
	}

	return states, nil
}

func (r *recordRepository) ListRecords(ctx context.Context, filter RecordFilter) ([]models.RecordSnapshot, error) {
	log := logger.FromContext(ctx)

	builder := sq.Select("id", "entity_type", "name", "payload", "hash", "modified_at", "deleted").
		From("records").
		OrderBy("modified_at DESC")

	if filter.Type != "" {
		builder = builder.Where(sq.Eq{"entity_type": filter.Type})
	}
	if !filter.ModifiedSince.IsZero() {
		builder = builder.Where(sq.GtOrEq{"modified_at": filter.ModifiedSince})
	}
	if !filter.IncludeDeleted {
		builder = builder.Where(sq.Eq{"deleted": false})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list records query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.ListRecords").
			Msg("failed to execute list records query")
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var items []models.RecordSnapshot
	for rows.Next() {
		var item models.RecordSnapshot
		var payload string

		scanErr := rows.Scan(
			&item.ID,
			&item.Type,
			&item.Name,
			&payload,
			&item.Hash,
			&item.ModifiedAt,
			&item.Deleted,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "recordRepository.ListRecords").
				Msg("failed to scan record row")
			return nil, fmt.Errorf("failed to scan record row: %w", scanErr)
		}

		item.Payload = []byte(payload)
		items = append(items, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("records iteration: %w", rowsErr)
	}

	return items, nil
}

func (r *recordRepository) SoftDeleteRecord(ctx context.Context, id string, at time.Time) error {
	log := logger.FromContext(ctx)

	if _, err := r.DB.ExecContext(ctx, softDeleteRecord, at, id); err != nil {
		log.Err(err).
			Str("func", "recordRepository.SoftDeleteRecord").
			Str("id", id).
			Msg("failed to soft-delete record")
		return fmt.Errorf("failed to soft-delete record (id=%s): %w", id, err)
	}

	return nil
}

func (r *recordRepository) HardDeleteRecord(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	if _, err := r.DB.ExecContext(ctx, hardDeleteRecord, id); err != nil {
		log.Err(err).
			Str("func", "recordRepository.HardDeleteRecord").
			Str("id", id).
			Msg("failed to delete record")
		return fmt.Errorf("failed to delete record (id=%s): %w", id, err)
	}

	return nil
}
