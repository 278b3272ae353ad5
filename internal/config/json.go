package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and a
// string-friendly [Duration] wrapper so that config files can spell
// durations as "30s" or "1m".
type StructuredJSONConfig struct {
	App struct {
		SecretKey string `json:"secret_key"`
		Version   string `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Adapter struct {
		RequestTimeout Duration `json:"request_timeout"`
		MaxRetries     uint64   `json:"max_retries"`
		RetryBackoff   Duration `json:"retry_backoff"`
	} `json:"adapter,omitempty"`

	Sync struct {
		Enabled          bool   `json:"enabled"`
		Provider         string `json:"provider"`
		AutoSync         bool   `json:"auto_sync"`
		IntervalMinutes  uint32 `json:"sync_interval_minutes"`
		ConflictStrategy string `json:"conflict_strategy"`
		RemoteURL        string `json:"remote_url"`
		RemoteDir        string `json:"remote_dir"`
		Username         string `json:"username"`
		Password         string `json:"password"`
	} `json:"sync,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			SecretKey: jsonCfg.App.SecretKey,
			Version:   jsonCfg.App.Version,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Adapter: Adapter{
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
			MaxRetries:     jsonCfg.Adapter.MaxRetries,
			RetryBackoff:   time.Duration(jsonCfg.Adapter.RetryBackoff),
		},
		Sync: Sync{
			Enabled:          jsonCfg.Sync.Enabled,
			Provider:         jsonCfg.Sync.Provider,
			AutoSync:         jsonCfg.Sync.AutoSync,
			IntervalMinutes:  jsonCfg.Sync.IntervalMinutes,
			ConflictStrategy: jsonCfg.Sync.ConflictStrategy,
			RemoteURL:        jsonCfg.Sync.RemoteURL,
			RemoteDir:        jsonCfg.Sync.RemoteDir,
			Username:         jsonCfg.Sync.Username,
			Password:         jsonCfg.Sync.Password,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON
// unmarshaling from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return errors.New("invalid duration")
	}
}
