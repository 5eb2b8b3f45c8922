// Package apply pushes accepted diffs back to the record store.
package apply

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/crm"
)

// Statuses reported per record.
const (
	StatusUpdated = "updated"
	StatusDryRun  = "dry-run"
	StatusError   = "error"
)

// Status is the outcome of one record's update.
type Status struct {
	ID            string   `json:"id"`
	Status        string   `json:"status"`
	UpdatedFields []string `json:"updated_fields,omitempty"`
	Error         string   `json:"error,omitempty"`
}

type Applier struct {
	store  crm.Store
	object string
	log    *zap.Logger
}

func NewApplier(store crm.Store, object string, log *zap.Logger) *Applier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Applier{store: store, object: object, log: log}
}

// Apply issues one update per diff across a bounded pool. In dry-run mode
// no remote call is made. A record's failure is captured in its status and
// never aborts the others.
func (a *Applier) Apply(ctx context.Context, diffs []model.Diff, dryRun bool, workers int) []Status {
	if workers <= 0 {
		workers = 5
	}
	results := make([]Status, len(diffs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, d := range diffs {
		i, d := i, d
		g.Go(func() error {
			results[i] = a.applyOne(gCtx, d, dryRun)
			return nil
		})
	}
	_ = g.Wait()

	var errs int
	for _, r := range results {
		if r.Status == StatusError {
			errs++
		}
	}
	a.log.Info("applied updates",
		zap.Int("records", len(diffs)),
		zap.Bool("dry_run", dryRun),
		zap.Int("errors", errs))
	return results
}

func (a *Applier) applyOne(ctx context.Context, d model.Diff, dryRun bool) Status {
	st := Status{ID: d.ID, UpdatedFields: d.ChangedFields()}
	if dryRun {
		st.Status = StatusDryRun
		return st
	}
	if err := a.store.Update(ctx, a.object, d.ID, d.NewValues()); err != nil {
		a.log.Warn("record update failed", zap.String("id", d.ID), zap.Error(err))
		return Status{ID: d.ID, Status: StatusError, Error: err.Error()}
	}
	st.Status = StatusUpdated
	return st
}
