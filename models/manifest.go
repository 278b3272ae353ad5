package models

import (
	"encoding/json"
	"time"
)

// ManifestEntry records the last state both sides agreed on for one record.
// It is the sync system's only durable memory: a side counts as "changed"
// exactly when its current hash differs from the hash stored here.
//
// BasePayload keeps the agreed payload itself so that field-level deltas
// since the last sync can be computed for three-way merging. It may be nil
// for records whose payload was never an inspectable JSON object.
type ManifestEntry struct {
	ID                 string          `json:"id"`
	Type               EntityType      `json:"type"`
	LastLocalHash      string          `json:"last_local_hash"`
	LastLocalModified  time.Time       `json:"last_local_modified"`
	LastRemoteHash     string          `json:"last_remote_hash"`
	LastRemoteModified time.Time       `json:"last_remote_modified"`
	BasePayload        json.RawMessage `json:"base_payload,omitempty"`
}

// SyncAudit is one row of the resolution audit trail. Both pre-resolution
// hashes are always recorded, so every resolution leaves a verifiable trace
// of the payloads that existed before it was applied.
type SyncAudit struct {
	RecordID   string    `json:"record_id"`
	Choice     Choice    `json:"choice"`
	LocalHash  string    `json:"local_hash"`
	RemoteHash string    `json:"remote_hash,omitempty"`
	ResultHash string    `json:"result_hash"`
	ResolvedAt time.Time `json:"resolved_at"`
}
