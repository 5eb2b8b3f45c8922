package model

import "sort"

// FieldChange is an (old, new) value pair for one field of one record.
type FieldChange struct {
	Old any
	New any
}

// Diff lists the field-level changes proposed for a single record.
type Diff struct {
	ID      string
	Changes map[string]FieldChange
}

// NewValues returns the update payload: field -> accepted new value.
func (d Diff) NewValues() map[string]any {
	out := make(map[string]any, len(d.Changes))
	for f, c := range d.Changes {
		out[f] = c.New
	}
	return out
}

// ChangedFields returns the changed field names, sorted for stable output.
func (d Diff) ChangedFields() []string {
	out := make([]string, 0, len(d.Changes))
	for f := range d.Changes {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// EnrichmentResult maps the fixed enrichment output fields to derived
// values for one record. An empty (but non-nil) result marks a record that
// was skipped or whose lookup yielded nothing usable.
type EnrichmentResult map[string]any
