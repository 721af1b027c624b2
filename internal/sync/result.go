package sync

import "storesync/internal/models"

// FieldChange records one field's transition between the previously
// synced snapshot and the value just pushed.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// SubResult is the outcome of one secondary sub-sync (images, features,
// compatibilities, ...). A failed sub-sync never reverts the primary.
type SubResult struct {
	Name string `json:"name"`
	Err  error  `json:"-"`
}

func (r SubResult) Ok() bool {
	return r.Err == nil
}

// SyncResult is what one (entity, shop) unit reports back to the caller.
// Skipped is distinct from both success and failure: it means the
// checksum matched and nothing was pushed.
type SyncResult struct {
	Success       bool                   `json:"success"`
	Skipped       bool                   `json:"skipped"`
	Operation     models.SyncOperation   `json:"operation"`
	ExternalID    *int                   `json:"external_id"`
	Message       string                 `json:"message"`
	Checksum      string                 `json:"checksum"`
	ChangedFields map[string]FieldChange `json:"changed_fields,omitempty"`
	SubResults    []SubResult            `json:"sub_results,omitempty"`
}

// diffSnapshots reports fields whose value changed between the last
// synced snapshot and the current one, including added and removed keys.
func diffSnapshots(previous, current map[string]string) map[string]FieldChange {
	if previous == nil {
		return nil
	}
	changes := make(map[string]FieldChange)
	for key, newValue := range current {
		if oldValue, ok := previous[key]; !ok || oldValue != newValue {
			changes[key] = FieldChange{Old: previous[key], New: newValue}
		}
	}
	for key, oldValue := range previous {
		if _, ok := current[key]; !ok {
			changes[key] = FieldChange{Old: oldValue, New: ""}
		}
	}
	if len(changes) == 0 {
		return nil
	}
	return changes
}
