package service

import (
	"context"
	"sort"

	"github.com/jk278/lifetracker/models"
)

// changeDetector is the concrete implementation of ChangeDetector.
// It performs a purely in-memory comparison of the three record views;
// no storage layer or logger is required because the operation is
// stateless and produces no side effects.
type changeDetector struct{}

func NewChangeDetector() ChangeDetector {
	return &changeDetector{}
}

// BuildChangeSet implements ChangeDetector.
//
// It indexes all three inputs by record id, then walks the sorted union of
// ids so that identical inputs always yield the identical partition — map
// iteration order and wall-clock time never influence the outcome.
//
// Per id the decision is three-valued on each side: unchanged, changed, or
// deleted. "Changed" means the side's current hash differs from the hash
// the manifest recorded for that side; without a manifest entry every
// existing side counts as changed (the record is fresh there).
//
// ctx cancellation is checked once per iteration so that callers can abort
// early on large record sets.
func (d *changeDetector) BuildChangeSet(
	ctx context.Context,
	locals []models.RecordState,
	remotes []models.RemoteObject,
	manifest map[string]models.ManifestEntry,
) (models.ChangeSet, error) {
	var set models.ChangeSet

	localIndex := make(map[string]models.RecordState, len(locals))
	for _, l := range locals {
		localIndex[l.ID] = l
	}

	remoteIndex := make(map[string]models.RemoteObject, len(remotes))
	for _, r := range remotes {
		remoteIndex[r.ID] = r
	}

	ids := unionIDs(localIndex, remoteIndex, manifest)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return models.ChangeSet{}, err
		}

		local, hasLocal := localIndex[id]
		remote, hasRemote := remoteIndex[id]
		entry, inManifest := manifest[id]

		// A soft-deleted local record counts as absent for transfer
		// purposes but its deletion still needs propagating.
		localGone := !hasLocal || local.Deleted

		if !inManifest {
			switch {
			case localGone && !hasRemote:
				// Never synced and gone (or born deleted) — nothing to do.

			case !localGone && !hasRemote:
				// Fresh local record the remote has never seen → push.
				set.Pushes = append(set.Pushes, local)

			case localGone && hasRemote && !hasLocal:
				// Fresh remote record this device has never seen → pull.
				set.Pulls = append(set.Pulls, remote)

			default:
				// Exists on both sides with no common ancestor (or a local
				// soft-delete against a fresh remote copy) → classifier.
				set.Disputed = append(set.Disputed, makePair(id, local, hasLocal, remote, hasRemote, nil))
			}
			continue
		}

		localChanged := localGone || local.Hash != entry.LastLocalHash
		// An empty remote hash means the transport could not recover it
		// cheaply; treat the side as changed and let the classifier collapse
		// the pair if the content turns out identical.
		remoteChanged := !hasRemote || remote.Hash == "" || remote.Hash != entry.LastRemoteHash

		e := entry
		switch {
		case !localChanged && !remoteChanged:
			// Both sides still match the last agreed state — no action.

		case localChanged && !remoteChanged:
			if localGone {
				// Local deletion propagates to the remote directory.
				set.DeleteRemote = append(set.DeleteRemote, remote)
			} else {
				set.Pushes = append(set.Pushes, local)
			}

		case !localChanged && remoteChanged:
			if !hasRemote {
				// Remote deletion propagates to the local store.
				set.DeleteLocal = append(set.DeleteLocal, id)
			} else {
				set.Pulls = append(set.Pulls, remote)
			}

		default: // both changed
			if localGone && !hasRemote {
				// Deleted on both sides independently — only the manifest
				// entry remains to clean up.
				set.Forget = append(set.Forget, id)
			} else {
				// Deletion against an edit, or two concurrent edits →
				// classifier.
				set.Disputed = append(set.Disputed, makePair(id, local, hasLocal, remote, hasRemote, &e))
			}
		}
	}

	return set, nil
}

func makePair(id string, local models.RecordState, hasLocal bool, remote models.RemoteObject, hasRemote bool, base *models.ManifestEntry) models.ChangePair {
	pair := models.ChangePair{
		ID:         id,
		InManifest: base != nil,
		Base:       base,
	}
	if hasLocal {
		l := local
		pair.Local = &l
		pair.Type = l.Type
	}
	if hasRemote {
		r := remote
		pair.Remote = &r
		if pair.Type == "" {
			pair.Type = r.Type
		}
	}
	if pair.Type == "" && base != nil {
		pair.Type = base.Type
	}
	return pair
}

func unionIDs(locals map[string]models.RecordState, remotes map[string]models.RemoteObject, manifest map[string]models.ManifestEntry) []string {
	seen := make(map[string]struct{}, len(locals)+len(remotes))
	for id := range locals {
		seen[id] = struct{}{}
	}
	for id := range remotes {
		seen[id] = struct{}{}
	}
	for id := range manifest {
		seen[id] = struct{}{}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
