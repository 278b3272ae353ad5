package models

// ChangePair is a record that changed on both sides since the last common
// state (or exists on both sides with no common state at all). Pairs carry
// descriptors only; payloads are fetched lazily during classification.
type ChangePair struct {
	ID   string
	Type EntityType

	// Local is nil when the record does not exist locally. A soft-deleted
	// local record is present with Local.Deleted set.
	Local *RecordState

	// Remote is nil when the record no longer exists in the remote
	// directory.
	Remote *RemoteObject

	// InManifest reports whether a previous sync established a common state
	// for this record. Pairs without one are fresh-data candidates.
	InManifest bool

	// Base is the manifest entry when InManifest is true.
	Base *ManifestEntry
}

// ChangeSet is the change detector's deterministic partition of one round.
// Everything except Disputed is safe to apply without user input.
type ChangeSet struct {
	// Pulls are remote records to copy into the local store.
	Pulls []RemoteObject
	// Pushes are local records to upload to the remote directory.
	Pushes []RecordState
	// DeleteLocal lists ids whose remote deletion propagates locally.
	DeleteLocal []string
	// DeleteRemote lists remote objects whose local deletion propagates
	// remotely.
	DeleteRemote []RemoteObject
	// Forget lists ids deleted on both sides; only the manifest entry goes.
	Forget []string
	// Disputed holds both-changed pairs awaiting the conflict classifier.
	Disputed []ChangePair
}

// IsEmpty reports whether the round has nothing at all to do.
func (c ChangeSet) IsEmpty() bool {
	return len(c.Pulls) == 0 && len(c.Pushes) == 0 &&
		len(c.DeleteLocal) == 0 && len(c.DeleteRemote) == 0 &&
		len(c.Forget) == 0 && len(c.Disputed) == 0
}

// Classification is the conflict classifier's verdict over the disputed
// pairs of one round.
type Classification struct {
	// Merges are auto-merged records (disjoint or value-identical field
	// deltas) that must be written to both sides.
	Merges []RecordSnapshot
	// ManifestOnly are pairs whose copies turned out identical; only the
	// manifest needs to move to the new common state.
	ManifestOnly []ManifestEntry
	// DeleteRemote are remote objects a local deletion propagates to after
	// all: the listing could not prove the remote changed, and its content
	// matched the last agreed state.
	DeleteRemote []RemoteObject
	// Conflicts are the pairs that genuinely need a resolution decision.
	Conflicts []ConflictItem
}
