package crm

import (
	"fmt"
	"strings"
)

// BuildSelect assembles a SOQL SELECT over the given fields, optionally
// filtered to an identifier batch. The Id field is always selected first.
func BuildSelect(object string, fields []string, idBatch []string) string {
	seen := map[string]bool{"Id": true}
	cols := []string{"Id"}
	for _, f := range fields {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		cols = append(cols, f)
	}
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), object)
	if len(idBatch) > 0 {
		q += fmt.Sprintf(" WHERE Id IN (%s)", quoteIDs(idBatch))
	}
	return q
}

// BuildIDSelect selects only identifiers, optionally bounded.
func BuildIDSelect(object string, limit int) string {
	q := fmt.Sprintf("SELECT Id FROM %s", object)
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	return q
}

// BuildChildSelect finds records of object whose parentField points at any
// of the given identifiers.
func BuildChildSelect(object, parentField string, parentIDs []string) string {
	return fmt.Sprintf("SELECT Id FROM %s WHERE %s IN (%s)", object, parentField, quoteIDs(parentIDs))
}

func quoteIDs(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = "'" + strings.ReplaceAll(id, "'", "\\'") + "'"
	}
	return strings.Join(quoted, ", ")
}
