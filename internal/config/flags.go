package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-d database path (SQLite file)
//	-c/-config json file path with configs
//	-secret-key local secret for credentials-at-rest encryption
//	-request-timeout remote request timeout (e.g., "30s", "1m")
//	-max-retries reconnect attempts for the remote session
//	-retry-backoff base backoff between reconnect attempts
//	-sync-enabled enable the sync subsystem
//	-auto-sync enable interval-triggered background sync
//	-sync-interval auto-sync interval in minutes (min 5)
//	-conflict-strategy manual|local_wins|remote_wins|keep_both
//	-remote-url WebDAV endpoint URL
//	-remote-dir remote directory for tracker objects
//	-sync-user / -sync-password WebDAV basic-auth credentials
func ParseFlags() *StructuredConfig {
	var databaseDSN string
	var jsonConfigPath string
	var secretKey string
	var requestTimeout time.Duration
	var maxRetries uint64
	var retryBackoff time.Duration
	var syncEnabled bool
	var autoSync bool
	var syncInterval uint
	var conflictStrategy string
	var remoteURL string
	var remoteDir string
	var syncUser string
	var syncPassword string

	flag.StringVar(&databaseDSN, "d", "", "Database path")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&secretKey, "secret-key", "", "Local secret key")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Remote request timeout (e.g., 30s, 1m)")
	flag.Uint64Var(&maxRetries, "max-retries", 0, "Remote reconnect attempts")
	flag.DurationVar(&retryBackoff, "retry-backoff", 0, "Base backoff between reconnect attempts")
	flag.BoolVar(&syncEnabled, "sync-enabled", false, "Enable synchronization")
	flag.BoolVar(&autoSync, "auto-sync", false, "Enable background auto-sync")
	flag.UintVar(&syncInterval, "sync-interval", 0, "Auto-sync interval in minutes")
	flag.StringVar(&conflictStrategy, "conflict-strategy", "", "Conflict strategy")
	flag.StringVar(&remoteURL, "remote-url", "", "WebDAV endpoint URL")
	flag.StringVar(&remoteDir, "remote-dir", "", "Remote directory")
	flag.StringVar(&syncUser, "sync-user", "", "WebDAV username")
	flag.StringVar(&syncPassword, "sync-password", "", "WebDAV password")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			SecretKey: secretKey,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Adapter: Adapter{
			RequestTimeout: requestTimeout,
			MaxRetries:     maxRetries,
			RetryBackoff:   retryBackoff,
		},
		Sync: Sync{
			Enabled:          syncEnabled,
			AutoSync:         autoSync,
			IntervalMinutes:  uint32(syncInterval),
			ConflictStrategy: conflictStrategy,
			RemoteURL:        remoteURL,
			RemoteDir:        remoteDir,
			Username:         syncUser,
			Password:         syncPassword,
		},
		JSONFilePath: jsonConfigPath,
	}
}
