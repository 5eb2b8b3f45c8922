// Package report persists run artifacts: record-set CSV backups, the
// change report, and the merge summary JSON.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/cobalt/internal/core/apply"
	"github.com/agenthands/cobalt/internal/core/dedupe"
	"github.com/agenthands/cobalt/internal/core/model"
)

// WriteRecordsCSV writes a record set with Id first and the remaining
// columns sorted, so backups diff cleanly between runs.
func WriteRecordsCSV(path string, records []model.Record) error {
	colSet := make(map[string]bool)
	for _, rec := range records {
		for k := range rec {
			if k != model.IDField {
				colSet[k] = true
			}
		}
	}
	cols := make([]string, 0, len(colSet))
	for k := range colSet {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	header := append([]string{model.IDField}, cols...)

	f, err := create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv %s: %w", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		row := make([]string, len(header))
		for i, col := range header {
			row[i] = model.ValueString(rec[col])
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteChangeReport writes one row per proposed diff and one per applied
// status, mirroring the operator-facing report layout.
func WriteChangeReport(path string, diffs []model.Diff, statuses []apply.Status) error {
	f, err := create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"Id", "changed_fields", "status", "updated_fields"}); err != nil {
		return err
	}
	for _, d := range diffs {
		if err := w.Write([]string{d.ID, strings.Join(d.ChangedFields(), ","), "", ""}); err != nil {
			return err
		}
	}
	for _, s := range statuses {
		if err := w.Write([]string{s.ID, "", s.Status, strings.Join(s.UpdatedFields, ",")}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteMergeSummary dumps the duplicate-resolution outcome as JSON.
func WriteMergeSummary(path string, summaries []dedupe.GroupSummary) error {
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write merge summary %s: %w", path, err)
	}
	return nil
}

// create opens path for writing, making parent directories as needed.
func create(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

// Backup is WriteRecordsCSV with a log line; failures are reported but
// never abort the run.
func Backup(path string, records []model.Record, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := WriteRecordsCSV(path, records); err != nil {
		log.Error("failed to write backup csv", zap.String("path", path), zap.Error(err))
		return
	}
	log.Info("backup written", zap.String("path", path), zap.Int("rows", len(records)))
}
