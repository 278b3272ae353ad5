package config

import (
	"fmt"
	"time"

	"github.com/jk278/lifetracker/models"
)

// ClientApp holds application settings derived from the shared structured
// config.
type ClientApp struct {
	// SecretKey is the local secret for credentials-at-rest encryption.
	SecretKey string
}

// ClientAdapter holds network settings used by the remote transport layer.
type ClientAdapter struct {
	// RequestTimeout is the default timeout for outbound remote requests.
	RequestTimeout time.Duration
	// MaxRetries bounds reconnect attempts at the start of a sync round.
	MaxRetries uint64
	// RetryBackoff is the base delay of the reconnect backoff.
	RetryBackoff time.Duration
}

// ClientDB contains local database connection settings.
type ClientDB struct {
	// DSN is the SQLite file path.
	DSN string
}

// ClientStorage groups storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientConfig is the top-level runtime configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level settings.
	App ClientApp
	// Adapter contains transport timeouts and retry budget.
	Adapter ClientAdapter
	// Storage contains storage settings.
	Storage ClientStorage
	// Sync is the bootstrap sync configuration. It seeds the persisted
	// configuration on first start.
	Sync models.SyncConfig
}

// GetClientConfig builds and validates the runtime config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps the fields
// relevant to the tracker runtime, fills conservative defaults for unset
// transport settings, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			SecretKey: cfg.App.SecretKey,
		},
		Adapter: ClientAdapter{
			RequestTimeout: cfg.Adapter.RequestTimeout,
			MaxRetries:     cfg.Adapter.MaxRetries,
			RetryBackoff:   cfg.Adapter.RetryBackoff,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Sync: models.SyncConfig{
			Enabled:             cfg.Sync.Enabled,
			Provider:            models.SyncProvider(cfg.Sync.Provider),
			AutoSync:            cfg.Sync.AutoSync,
			SyncIntervalMinutes: cfg.Sync.IntervalMinutes,
			ConflictStrategy:    models.ConflictStrategy(cfg.Sync.ConflictStrategy),
			RemoteURL:           cfg.Sync.RemoteURL,
			RemoteDir:           cfg.Sync.RemoteDir,
			Username:            cfg.Sync.Username,
			Password:            cfg.Sync.Password,
		},
	}

	clientCfg.applyDefaults()

	return clientCfg, clientCfg.validate()
}

// applyDefaults fills transport and sync fields the user is allowed to omit.
func (cfg *ClientConfig) applyDefaults() {
	if cfg.Adapter.RequestTimeout == 0 {
		cfg.Adapter.RequestTimeout = 15 * time.Second
	}
	if cfg.Adapter.MaxRetries == 0 {
		cfg.Adapter.MaxRetries = 3
	}
	if cfg.Adapter.RetryBackoff == 0 {
		cfg.Adapter.RetryBackoff = time.Second
	}
	if cfg.Sync.Provider == "" {
		cfg.Sync.Provider = models.ProviderWebDAV
	}
	if cfg.Sync.ConflictStrategy == "" {
		cfg.Sync.ConflictStrategy = models.StrategyManual
	}
	if cfg.Sync.SyncIntervalMinutes < 5 {
		cfg.Sync.SyncIntervalMinutes = 5
	}
}
