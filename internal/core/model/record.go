package model

import (
	"fmt"
	"math"
	"strings"
)

// IDField is the reserved identifier key present on every fetched record.
const IDField = "Id"

// Record is a dynamically shaped CRM row: field name -> scalar value.
// Values come out of JSON decoding, so they are string, float64, bool or nil.
type Record map[string]any

// ID returns the record identifier, or "" when the record has none.
func (r Record) ID() string {
	return r.GetString(IDField)
}

// GetString returns the field rendered as a string, or "" when the field is
// absent or empty. Numbers are rendered without a trailing ".0".
func (r Record) GetString(field string) string {
	v, ok := r[field]
	if !ok || IsEmpty(v) {
		return ""
	}
	return ValueString(v)
}

// Has reports whether the field carries a non-empty value.
func (r Record) Has(field string) bool {
	v, ok := r[field]
	return ok && !IsEmpty(v)
}

// Truthy reports whether the field holds a value that reads as true
// (bool true, non-zero number, or a "true"-ish string).
func (r Record) Truthy(field string) bool {
	switch v := r[field].(type) {
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case int:
		return v != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "true" || s == "1" || s == "yes"
	default:
		return false
	}
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge copies every key src carries onto r, overwriting only those keys.
func (r Record) Merge(src Record) {
	for k, v := range src {
		r[k] = v
	}
}

// IsEmpty reports whether a field value counts as absent: nil, NaN, or an
// empty string.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case float64:
		return math.IsNaN(t)
	default:
		return false
	}
}

// ValueString renders a scalar for comparison and CSV output. Whole floats
// drop the fractional part so 4.0 and "4" compare equal.
func ValueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", t)
	}
}

// MergeSets folds partial record sets into one record per identifier.
// Later partials overwrite only the fields they carry. Records without an
// identifier are dropped. Order of the result follows first appearance.
func MergeSets(sets ...[]Record) []Record {
	merged := make(map[string]Record)
	var order []string
	for _, set := range sets {
		for _, rec := range set {
			id := rec.ID()
			if id == "" {
				continue
			}
			dst, ok := merged[id]
			if !ok {
				dst = Record{IDField: id}
				merged[id] = dst
				order = append(order, id)
			}
			dst.Merge(rec)
		}
	}
	out := make([]Record, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	return out
}
