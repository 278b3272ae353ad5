package config

import "errors"

// Validation errors returned by [ClientConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid remote transport settings
	// (for example, missing request timeout or zero retry budget).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates invalid local storage settings
	// (for example, empty DSN or unsupported in-memory DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAppConfigs indicates invalid application-level settings
	// (for example, a missing secret key while sync is enabled).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidSyncConfigs indicates incomplete or inconsistent sync
	// settings (unknown provider or strategy, missing endpoint).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
)
