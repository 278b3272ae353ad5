package models

import (
	"encoding/json"
	"time"
)

// EntityType identifies which tracker table a record belongs to.
type EntityType string

const (
	EntityTask        EntityType = "task"
	EntityCategory    EntityType = "category"
	EntityAccount     EntityType = "account"
	EntityTransaction EntityType = "transaction"
	EntityNote        EntityType = "note"
)

// AllEntityTypes lists every entity type in a stable order.
var AllEntityTypes = []EntityType{
	EntityTask,
	EntityCategory,
	EntityAccount,
	EntityTransaction,
	EntityNote,
}

// RecordSnapshot is a full copy of a single tracker record as seen by the
// sync core. The payload is the record's JSON object form; the store treats
// it as opaque except for the display name.
type RecordSnapshot struct {
	// ID is the stable record identifier, unique across devices.
	ID string `json:"id"`

	// Type names the entity table the record belongs to.
	Type EntityType `json:"type"`

	// Name is the human-readable display name used in conflict previews.
	Name string `json:"name"`

	// Payload holds the record content as a JSON object.
	Payload json.RawMessage `json:"payload"`

	// Hash is the canonical content hash of Payload.
	Hash string `json:"hash"`

	// ModifiedAt is the record's last-modified timestamp.
	ModifiedAt time.Time `json:"modified_at"`

	// Deleted marks a soft-deleted record awaiting sync propagation.
	Deleted bool `json:"deleted"`
}

// RecordState is the lightweight descriptor of a local record used by the
// change detector. Full payloads are loaded lazily, only for records that
// actually need classification or transfer.
type RecordState struct {
	ID         string     `json:"id"`
	Type       EntityType `json:"type"`
	Name       string     `json:"name"`
	Hash       string     `json:"hash"`
	ModifiedAt time.Time  `json:"modified_at"`
	Deleted    bool       `json:"deleted"`
}

// RemoteObject describes one record object in the remote WebDAV directory.
// Content is fetched lazily via the transport's Get.
type RemoteObject struct {
	ID         string     `json:"id"`
	Type       EntityType `json:"type"`
	Path       string     `json:"path"`
	Hash       string     `json:"hash"`
	ModifiedAt time.Time  `json:"modified_at"`
	Size       int64      `json:"size"`
}
