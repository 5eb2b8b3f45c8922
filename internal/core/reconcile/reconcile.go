// Package reconcile compares original and enriched record sets and emits
// the per-record field diffs worth pushing back to the store.
package reconcile

import (
	"github.com/agenthands/cobalt/internal/core/model"
)

// Collect returns one Diff per enriched record that differs from its
// original on any of the given fields. A new value is accepted only when
// non-empty; a field counts as changed when the old value is empty or
// stringwise different. Enriched rows without a matching original are
// ignored.
func Collect(original, enriched []model.Record, fields []string) []model.Diff {
	byID := make(map[string]model.Record, len(original))
	for _, rec := range original {
		if id := rec.ID(); id != "" {
			byID[id] = rec
		}
	}

	var diffs []model.Diff
	for _, rec := range enriched {
		orig, ok := byID[rec.ID()]
		if !ok {
			continue
		}
		changes := make(map[string]model.FieldChange)
		for _, f := range fields {
			newV, present := rec[f]
			if !present || model.IsEmpty(newV) {
				continue
			}
			oldV := orig[f]
			if model.IsEmpty(oldV) || model.ValueString(oldV) != model.ValueString(newV) {
				changes[f] = model.FieldChange{Old: oldV, New: newV}
			}
		}
		if len(changes) > 0 {
			diffs = append(diffs, model.Diff{ID: rec.ID(), Changes: changes})
		}
	}
	return diffs
}
