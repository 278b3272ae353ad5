package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jk278/lifetracker/internal/adapter"
	"github.com/jk278/lifetracker/internal/crypto"
	"github.com/jk278/lifetracker/internal/logger"
	"github.com/jk278/lifetracker/internal/store"
	"github.com/jk278/lifetracker/models"
)

const (
	settingSyncConfig = "sync_config"
	settingSyncSalt   = "sync_salt"
)

// syncConfigService persists the sync configuration in the settings table.
// The WebDAV password is the only secret: it is encrypted with a key derived
// from the application secret before the row is written, and decrypted on
// the way out. Everything else is stored as plain JSON.
type syncConfigService struct {
	settings     store.SettingsRepository
	keychain     crypto.KeyChainService
	secret       string
	defaults     models.SyncConfig
	newTransport func(models.SyncConfig) adapter.RemoteTransport
	logger       *logger.Logger
}

func NewSyncConfigService(
	settings store.SettingsRepository,
	keychain crypto.KeyChainService,
	secret string,
	defaults models.SyncConfig,
	newTransport func(models.SyncConfig) adapter.RemoteTransport,
	log *logger.Logger,
) ConfigService {
	return &syncConfigService{
		settings:     settings,
		keychain:     keychain,
		secret:       secret,
		defaults:     defaults,
		newTransport: newTransport,
		logger:       log,
	}
}

func (s *syncConfigService) Config(ctx context.Context) (models.SyncConfig, error) {
	raw, err := s.settings.Get(ctx, settingSyncConfig)
	if errors.Is(err, store.ErrSettingNotFound) {
		return s.defaults, nil
	}
	if err != nil {
		return models.SyncConfig{}, fmt.Errorf("read sync config: %w", err)
	}

	var cfg models.SyncConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return models.SyncConfig{}, fmt.Errorf("decode sync config: %w", err)
	}

	if cfg.Password != "" {
		key, err := s.encryptionKey(ctx)
		if err != nil {
			return models.SyncConfig{}, err
		}
		plain, err := s.keychain.DecryptString(cfg.Password, key)
		if err != nil {
			return models.SyncConfig{}, fmt.Errorf("decrypt stored password: %w", err)
		}
		cfg.Password = plain
	}

	return cfg, nil
}

func (s *syncConfigService) SaveConfig(ctx context.Context, cfg models.SyncConfig) error {
	if err := validateSyncConfig(&cfg); err != nil {
		return err
	}

	stored := cfg
	if stored.Password != "" {
		key, err := s.encryptionKey(ctx)
		if err != nil {
			return err
		}
		encrypted, err := s.keychain.EncryptString(stored.Password, key)
		if err != nil {
			return fmt.Errorf("encrypt password: %w", err)
		}
		stored.Password = encrypted
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode sync config: %w", err)
	}

	if err := s.settings.Set(ctx, settingSyncConfig, string(raw)); err != nil {
		return fmt.Errorf("persist sync config: %w", err)
	}

	logger.FromContext(ctx).Debug().
		Str("func", "syncConfigService.SaveConfig").
		Bool("enabled", cfg.Enabled).
		Msg("sync config saved")

	return nil
}

func (s *syncConfigService) TestConnection(ctx context.Context, cfg models.SyncConfig) (string, error) {
	if cfg.RemoteURL == "" {
		return "", fmt.Errorf("%w: remote URL is required", ErrInvalidSyncConfig)
	}

	transport := s.newTransport(cfg)
	if err := transport.TestConnection(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", ErrConnection, err)
	}

	return "connection succeeded", nil
}

// encryptionKey derives the credentials-at-rest key. The salt is generated
// once and stored next to the ciphertext; the key itself never touches disk.
func (s *syncConfigService) encryptionKey(ctx context.Context) ([]byte, error) {
	var salt []byte

	stored, err := s.settings.Get(ctx, settingSyncSalt)
	switch {
	case errors.Is(err, store.ErrSettingNotFound):
		salt, err = s.keychain.GenerateSalt()
		if err != nil {
			return nil, fmt.Errorf("generate salt: %w", err)
		}
		if err := s.settings.Set(ctx, settingSyncSalt, base64.StdEncoding.EncodeToString(salt)); err != nil {
			return nil, fmt.Errorf("persist salt: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("read salt: %w", err)
	default:
		salt, err = base64.StdEncoding.DecodeString(stored)
		if err != nil {
			return nil, fmt.Errorf("decode stored salt: %w", err)
		}
	}

	return s.keychain.DeriveKey(s.secret, salt), nil
}

// validateSyncConfig normalizes cfg in place and rejects configurations a
// round could not run with.
func validateSyncConfig(cfg *models.SyncConfig) error {
	if cfg.Provider == "" {
		cfg.Provider = models.ProviderWebDAV
	}
	if cfg.ConflictStrategy == "" {
		cfg.ConflictStrategy = models.StrategyManual
	}
	if cfg.SyncIntervalMinutes < 5 {
		cfg.SyncIntervalMinutes = 5
	}

	switch cfg.ConflictStrategy {
	case models.StrategyManual, models.StrategyLocalWins, models.StrategyRemoteWins, models.StrategyKeepBoth:
	default:
		return fmt.Errorf("%w: unknown conflict strategy %q", ErrInvalidSyncConfig, cfg.ConflictStrategy)
	}

	if !cfg.Enabled {
		return nil
	}

	if cfg.Provider != models.ProviderWebDAV {
		return fmt.Errorf("%w: unsupported provider %q", ErrInvalidSyncConfig, cfg.Provider)
	}
	if cfg.RemoteURL == "" {
		return fmt.Errorf("%w: remote URL is required", ErrInvalidSyncConfig)
	}
	if cfg.Username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidSyncConfig)
	}

	return nil
}
