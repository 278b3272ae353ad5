package service

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"dario.cat/mergo"
)

// fieldDelta is the set of top-level field edits one side made since the
// last agreed payload.
type fieldDelta struct {
	Changed map[string]any
	Removed []string
}

func (d fieldDelta) isEmpty() bool {
	return len(d.Changed) == 0 && len(d.Removed) == 0
}

// touches reports whether the delta modifies key in any way.
func (d fieldDelta) touches(key string) bool {
	if _, ok := d.Changed[key]; ok {
		return true
	}
	for _, r := range d.Removed {
		if r == key {
			return true
		}
	}
	return false
}

// decodeObject decodes raw as a JSON object. The second return value is
// false for arrays, scalars, null and malformed input — payloads that the
// field-level machinery cannot diff.
func decodeObject(raw json.RawMessage) (map[string]any, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// deltaSince computes the top-level field edits that turn base into current.
func deltaSince(base, current map[string]any) fieldDelta {
	delta := fieldDelta{Changed: make(map[string]any)}

	for key, value := range current {
		baseValue, existed := base[key]
		if !existed || !reflect.DeepEqual(baseValue, value) {
			delta.Changed[key] = value
		}
	}
	for key := range base {
		if _, still := current[key]; !still {
			delta.Removed = append(delta.Removed, key)
		}
	}
	sort.Strings(delta.Removed)

	return delta
}

// conflictingKeys returns the keys both deltas touch with disagreeing
// outcomes, sorted. Keys both sides changed to the same value (or both
// removed) do not conflict.
func conflictingKeys(local, remote fieldDelta) []string {
	var keys []string

	for key, localValue := range local.Changed {
		if remoteValue, ok := remote.Changed[key]; ok {
			if !reflect.DeepEqual(localValue, remoteValue) {
				keys = append(keys, key)
			}
			continue
		}
		if remote.touches(key) {
			// remote removed what local edited
			keys = append(keys, key)
		}
	}
	for _, key := range local.Removed {
		if _, ok := remote.Changed[key]; ok {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)
	return keys
}

// mergePayloads applies both deltas on top of the base payload and returns
// the merged object. On keys both sides changed, the local value wins —
// callers gate on conflictingKeys first when that matters.
func mergePayloads(base map[string]any, local, remote fieldDelta) (json.RawMessage, error) {
	merged := make(map[string]any, len(base))
	if err := mergo.Merge(&merged, base); err != nil {
		return nil, fmt.Errorf("copy base payload: %w", err)
	}

	if err := mergo.Merge(&merged, remote.Changed, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("apply remote delta: %w", err)
	}
	if err := mergo.Merge(&merged, local.Changed, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("apply local delta: %w", err)
	}

	// mergo only ever adds or overrides; removals are applied by hand.
	for _, key := range remote.Removed {
		if !local.touches(key) {
			delete(merged, key)
		}
	}
	for _, key := range local.Removed {
		if _, reAdded := local.Changed[key]; !reAdded {
			delete(merged, key)
		}
	}

	out, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode merged payload: %w", err)
	}
	return out, nil
}
