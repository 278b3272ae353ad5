package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jk278/lifetracker/models"
)

// maxPreviewLen bounds conflict previews; full payloads are never surfaced.
const maxPreviewLen = 160

const deletedPreview = "(deleted)"

// previewFromDelta summarizes one side of a content conflict: the record
// name plus the fields that side edited since the last agreed state.
func previewFromDelta(name string, delta fieldDelta) string {
	var parts []string

	changed := make([]string, 0, len(delta.Changed))
	for key := range delta.Changed {
		changed = append(changed, key)
	}
	sort.Strings(changed)

	if len(changed) > 0 {
		parts = append(parts, "changed: "+strings.Join(changed, ", "))
	}
	if len(delta.Removed) > 0 {
		parts = append(parts, "removed: "+strings.Join(delta.Removed, ", "))
	}
	if len(parts) == 0 {
		parts = append(parts, "no field changes")
	}

	return truncatePreview(name + ": " + strings.Join(parts, "; "))
}

// previewFromSnapshot summarizes a record when no delta is available
// (fresh-data and timestamp conflicts): name, type and modification time.
func previewFromSnapshot(record models.RecordSnapshot) string {
	if record.Deleted {
		return truncatePreview(record.Name + " " + deletedPreview)
	}
	return truncatePreview(fmt.Sprintf("%s (%s, modified %s)",
		record.Name, record.Type, record.ModifiedAt.Format("2006-01-02 15:04")))
}

func truncatePreview(s string) string {
	if len(s) <= maxPreviewLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxPreviewLen {
		return s
	}
	return string(runes[:maxPreviewLen-1]) + "…"
}
