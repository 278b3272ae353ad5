// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestParseEnv_AllFields(t *testing.T) {
	// Arrange
	envVars := map[string]string{
		"CONFIG": "/path/to/config.json",

		"APP_SECRET_KEY": "local_secret",
		"APP_VERSION":    "1.2.3",

		"ADAPTER_REQUEST_TIMEOUT": "30s",
		"ADAPTER_MAX_RETRIES":     "5",
		"ADAPTER_RETRY_BACKOFF":   "2s",

		// Storage has nested prefixes: STORAGE_ + DB_
		"STORAGE_DB_DATABASE_URI": "/var/lib/lifetracker/tracker.db",

		"SYNC_ENABLED":           "true",
		"SYNC_PROVIDER":          "webdav",
		"SYNC_AUTO":              "true",
		"SYNC_INTERVAL_MINUTES":  "15",
		"SYNC_CONFLICT_STRATEGY": "manual",
		"SYNC_REMOTE_URL":        "https://dav.example.com",
		"SYNC_REMOTE_DIR":        "lifetracker",
		"SYNC_USERNAME":          "alice",
		"SYNC_PASSWORD":          "s3cret",
	}
	setEnvVars(t, envVars)

	// Act
	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	// Assert
	require.NoError(t, err)

	assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)

	assert.Equal(t, "local_secret", cfg.App.SecretKey)
	assert.Equal(t, "1.2.3", cfg.App.Version)

	assert.Equal(t, 30*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, uint64(5), cfg.Adapter.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Adapter.RetryBackoff)

	assert.Equal(t, "/var/lib/lifetracker/tracker.db", cfg.Storage.DB.DSN)

	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, "webdav", cfg.Sync.Provider)
	assert.True(t, cfg.Sync.AutoSync)
	assert.Equal(t, uint32(15), cfg.Sync.IntervalMinutes)
	assert.Equal(t, "manual", cfg.Sync.ConflictStrategy)
	assert.Equal(t, "https://dav.example.com", cfg.Sync.RemoteURL)
	assert.Equal(t, "lifetracker", cfg.Sync.RemoteDir)
	assert.Equal(t, "alice", cfg.Sync.Username)
	assert.Equal(t, "s3cret", cfg.Sync.Password)
}

func TestParseEnv_PartialFields(t *testing.T) {
	// Arrange
	envVars := map[string]string{
		"APP_SECRET_KEY":  "local_secret",
		"SYNC_REMOTE_URL": "https://dav.example.com",
	}
	setEnvVars(t, envVars)

	// Act
	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	// Assert
	require.NoError(t, err)

	assert.Equal(t, "local_secret", cfg.App.SecretKey)
	assert.Empty(t, cfg.App.Version)

	assert.Equal(t, "https://dav.example.com", cfg.Sync.RemoteURL)
	assert.False(t, cfg.Sync.Enabled)
	assert.Zero(t, cfg.Sync.IntervalMinutes)

	assert.Zero(t, cfg.Adapter.RequestTimeout)
	assert.Empty(t, cfg.Storage.DB.DSN)
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	setEnvVars(t, map[string]string{
		"ADAPTER_REQUEST_TIMEOUT": "not-a-duration",
	})

	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	assert.Error(t, err)
}
