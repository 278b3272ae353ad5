package models

import "time"

// ConflictType refines a "both sides changed" record into a subtype.
type ConflictType string

const (
	// ConflictFreshData marks a record created independently on both sides
	// before any common ancestor existed.
	ConflictFreshData ConflictType = "fresh_data"
	// ConflictTimestamp marks a pair where both sides changed but no
	// field-level diff is obtainable (opaque payloads, or a deletion against
	// an edit).
	ConflictTimestamp ConflictType = "timestamp"
	// ConflictContent marks overlapping field-level changes that differ in
	// value.
	ConflictContent ConflictType = "content"
)

// Choice is a single conflict resolution decision.
type Choice string

const (
	ChoiceUseLocal  Choice = "use_local"
	ChoiceUseRemote Choice = "use_remote"
	ChoiceMerge     Choice = "merge"
	ChoiceKeepBoth  Choice = "keep_both"
)

// ResolutionDecision maps record ids to the chosen resolution.
type ResolutionDecision map[string]Choice

// ConflictItem is one unresolved conflict surfaced to the caller. Items are
// derived fresh every round from store + remote + manifest and are never
// persisted: a restart mid-conflict simply re-derives them.
type ConflictItem struct {
	ID             string       `json:"id"`
	Type           EntityType   `json:"type"`
	Name           string       `json:"name"`
	ConflictType   ConflictType `json:"conflict_type"`
	LocalModified  time.Time    `json:"local_modified"`
	RemoteModified *time.Time   `json:"remote_modified,omitempty"`

	// LocalPreview and RemotePreview are bounded-size human-readable
	// summaries, never full payloads.
	LocalPreview  string `json:"local_preview"`
	RemotePreview string `json:"remote_preview"`

	FileSize   int64  `json:"file_size"`
	LocalHash  string `json:"local_hash"`
	RemoteHash string `json:"remote_hash,omitempty"`

	// SuggestedChoice is the later-modified-wins hint reported alongside a
	// timestamp conflict. It is advisory only and never auto-applied.
	SuggestedChoice Choice `json:"suggested_choice,omitempty"`
}
