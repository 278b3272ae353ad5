// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// lifetracker application. It aggregates all sub-configurations and is
// populated by merging values from environment variables, command-line
// flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the local secret key
	// and the application version.
	App App `envPrefix:"APP_"`

	// Storage holds configuration for the embedded local database.
	Storage Storage `envPrefix:"STORAGE_"`

	// Adapter holds timeout and retry settings for the remote transport.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Sync holds the bootstrap synchronization settings. They seed the
	// persisted sync configuration on first start; afterwards the settings
	// stored in the local database take precedence.
	Sync Sync `envPrefix:"SYNC_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// SecretKey is the local secret from which the credentials-at-rest
	// encryption key is derived. Must be kept confidential.
	// Env: APP_SECRET_KEY
	SecretKey string `env:"SECRET_KEY"`

	// Version is the semantic version string of the running application
	// (e.g. "1.2.3").
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage groups the configuration for the persistence backends used by the
// application.
type Storage struct {
	// DB holds the embedded database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the embedded SQLite database.
type DB struct {
	// DSN is the SQLite file path used to open the database connection
	// (e.g. "/home/user/.lifetracker/tracker.db").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Adapter holds timeout and retry settings for outbound remote requests.
type Adapter struct {
	// RequestTimeout is the maximum duration allowed for a single remote
	// request before the client cancels it (e.g. "30s", "1m").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// MaxRetries bounds the reconnect attempts made while establishing the
	// remote session at the start of a sync round.
	// Env: ADAPTER_MAX_RETRIES
	MaxRetries uint64 `env:"MAX_RETRIES"`

	// RetryBackoff is the base delay of the exponential backoff between
	// reconnect attempts (e.g. "1s").
	// Env: ADAPTER_RETRY_BACKOFF
	RetryBackoff time.Duration `env:"RETRY_BACKOFF"`
}

// Sync holds the bootstrap synchronization settings.
type Sync struct {
	// Enabled turns the sync subsystem on.
	// Env: SYNC_ENABLED
	Enabled bool `env:"ENABLED"`

	// Provider names the remote backend type. Only "webdav" is supported.
	// Env: SYNC_PROVIDER
	Provider string `env:"PROVIDER"`

	// AutoSync enables the interval-triggered background sync job.
	// Env: SYNC_AUTO
	AutoSync bool `env:"AUTO"`

	// IntervalMinutes is the auto-sync period; values below 5 are clamped.
	// Env: SYNC_INTERVAL_MINUTES
	IntervalMinutes uint32 `env:"INTERVAL_MINUTES"`

	// ConflictStrategy selects the blanket conflict policy: "manual",
	// "local_wins", "remote_wins", or "keep_both".
	// Env: SYNC_CONFLICT_STRATEGY
	ConflictStrategy string `env:"CONFLICT_STRATEGY"`

	// RemoteURL is the WebDAV endpoint (e.g. "https://dav.example.com").
	// Env: SYNC_REMOTE_URL
	RemoteURL string `env:"REMOTE_URL"`

	// RemoteDir is the directory under RemoteURL holding this tracker's
	// objects (e.g. "lifetracker").
	// Env: SYNC_REMOTE_DIR
	RemoteDir string `env:"REMOTE_DIR"`

	// Username and Password are the WebDAV basic-auth credentials.
	// Env: SYNC_USERNAME / SYNC_PASSWORD
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (earlier sources win for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
