package models

import "time"

// SyncProvider names the remote backend type. WebDAV is the only provider
// currently implemented.
type SyncProvider string

const (
	ProviderWebDAV SyncProvider = "webdav"
)

// ConflictStrategy selects how conflicts discovered during a round are
// resolved when the user has not asked to decide per item.
type ConflictStrategy string

const (
	// StrategyManual surfaces conflicts and pauses the round until the user
	// supplies per-item decisions.
	StrategyManual ConflictStrategy = "manual"
	// StrategyLocalWins resolves every conflict in favour of the local copy.
	StrategyLocalWins ConflictStrategy = "local_wins"
	// StrategyRemoteWins resolves every conflict in favour of the remote copy.
	StrategyRemoteWins ConflictStrategy = "remote_wins"
	// StrategyKeepBoth keeps both copies, renaming the local one.
	StrategyKeepBoth ConflictStrategy = "keep_both"
)

// SyncConfig holds the user-editable synchronization settings. It is read
// once at the start of a round; edits made mid-round take effect on the
// next round.
type SyncConfig struct {
	Enabled             bool             `json:"enabled"`
	Provider            SyncProvider     `json:"provider"`
	AutoSync            bool             `json:"auto_sync"`
	SyncIntervalMinutes uint32           `json:"sync_interval_minutes"`
	ConflictStrategy    ConflictStrategy `json:"conflict_strategy"`

	// RemoteURL is the WebDAV endpoint, RemoteDir the directory under it
	// that holds this tracker's objects.
	RemoteURL string `json:"remote_url"`
	RemoteDir string `json:"remote_dir"`
	Username  string `json:"username"`
	// Password is held in plaintext only in memory; the settings store
	// persists it encrypted.
	Password string `json:"password,omitempty"`
}

// Interval returns the configured auto-sync period, clamped to the
// five-minute minimum.
func (c SyncConfig) Interval() time.Duration {
	minutes := c.SyncIntervalMinutes
	if minutes < 5 {
		minutes = 5
	}
	return time.Duration(minutes) * time.Minute
}

// SyncState is the externally visible state of the sync subsystem.
type SyncState string

const (
	SyncStateDisabled SyncState = "disabled"
	SyncStateIdle     SyncState = "idle"
	SyncStateSyncing  SyncState = "syncing"
	SyncStateError    SyncState = "error"
)

// SyncStatus is the process-wide sync status snapshot. Exactly one logical
// instance exists; it is mutated only by the orchestrator and copied out to
// readers.
type SyncStatus struct {
	State        SyncState  `json:"state"`
	IsSyncing    bool       `json:"is_syncing"`
	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
	NextSyncTime *time.Time `json:"next_sync_time,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}
