package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jk278/lifetracker/internal/logger"
)

type settingsRepository struct {
	*DB
	logger *logger.Logger
}

func NewSettingsRepository(db *DB, logger *logger.Logger) SettingsRepository {
	return &settingsRepository{
		DB:     db,
		logger: logger,
	}
}

func (s *settingsRepository) Get(ctx context.Context, key string) (string, error) {
	var value string

	err := s.DB.QueryRowContext(ctx, getSetting, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "settingsRepository.Get").
			Str("key", key).
			Msg("failed to read setting")
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}

	return value, nil
}

func (s *settingsRepository) Set(ctx context.Context, key, value string) error {
	if _, err := s.DB.ExecContext(ctx, upsertSetting, key, value); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "settingsRepository.Set").
			Str("key", key).
			Msg("failed to write setting")
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}

	return nil
}
