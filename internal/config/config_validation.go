// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "strings"

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Currently a no-op placeholder; structural validation happens on the
// derived [ClientConfig], which is what the runtime actually consumes.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.RequestTimeout == 0 || cfg.Adapter.MaxRetries == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Sync.Enabled {
		if cfg.Sync.Provider != "webdav" {
			return ErrInvalidSyncConfigs
		}
		if cfg.Sync.RemoteURL == "" || cfg.Sync.Username == "" {
			return ErrInvalidSyncConfigs
		}
		switch cfg.Sync.ConflictStrategy {
		case "manual", "local_wins", "remote_wins", "keep_both":
		default:
			return ErrInvalidSyncConfigs
		}
		if cfg.App.SecretKey == "" {
			// credentials cannot be persisted without a key to wrap them
			return ErrInvalidAppConfigs
		}
	}

	return nil
}
