// Package core wires the pipeline stages together: fetch, enrich,
// reconcile, apply, and optionally deduplicate.
package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agenthands/cobalt/internal/core/apply"
	"github.com/agenthands/cobalt/internal/core/dedupe"
	"github.com/agenthands/cobalt/internal/core/enrich"
	"github.com/agenthands/cobalt/internal/core/fetch"
	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/core/reconcile"
	"github.com/agenthands/cobalt/internal/crm"
	"github.com/agenthands/cobalt/internal/places"
	"github.com/agenthands/cobalt/internal/report"
)

type Cleaner struct {
	Store    crm.Store
	Fetcher  *fetch.Fetcher
	Enricher *enrich.Enricher
	Applier  *apply.Applier
	Resolver *dedupe.Resolver
	Log      *zap.Logger
}

func NewCleaner(store crm.Store, searcher places.Searcher, log *zap.Logger) *Cleaner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cleaner{
		Store:    store,
		Fetcher:  fetch.NewFetcher(store, model.AccountObject, model.AccountFields, log.Named("fetch")),
		Enricher: enrich.NewEnricher(searcher, log.Named("enrich")),
		Applier:  apply.NewApplier(store, model.AccountObject, log.Named("apply")),
		Resolver: dedupe.NewResolver(store, model.AccountObject, log.Named("dedupe")),
		Log:      log,
	}
}

// RunOptions bound one cleaner run. DryRun suppresses every remote write;
// Merge enables the duplicate-resolution pass after updates.
type RunOptions struct {
	Limit        int
	DryRun       bool
	Merge        bool
	EnrichOnly   bool
	Fetch        fetch.Options
	Enrich       enrich.Options
	ApplyWorkers int

	BackupPath       string
	EnrichedPath     string
	ReportPath       string
	MergeSummaryPath string
}

// RunResult summarizes a run for reports and the HTTP surface.
type RunResult struct {
	RunID    string                `json:"run_id"`
	DryRun   bool                  `json:"dry_run"`
	Fetched  int                   `json:"fetched"`
	Diffs    []model.Diff          `json:"-"`
	Changed  int                   `json:"changed"`
	Statuses []apply.Status        `json:"statuses,omitempty"`
	Groups   []dedupe.GroupSummary `json:"groups,omitempty"`
	Started  time.Time             `json:"started"`
	Finished time.Time             `json:"finished"`
}

// Run executes the stage-synchronous pipeline. Each stage fully completes
// before the next begins; only fetch failure is fatal, everything after
// degrades per record.
func (c *Cleaner) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	result := &RunResult{
		RunID:   uuid.New().String(),
		DryRun:  opts.DryRun,
		Started: time.Now().UTC(),
	}
	log := c.Log.With(zap.String("run_id", result.RunID), zap.Bool("dry_run", opts.DryRun))

	fetchOpts := opts.Fetch
	fetchOpts.Limit = opts.Limit
	records, err := c.Fetcher.Fetch(ctx, fetchOpts)
	if err != nil {
		return nil, err
	}
	result.Fetched = len(records)
	if len(records) == 0 {
		log.Info("no records fetched")
		result.Finished = time.Now().UTC()
		return result, nil
	}

	if opts.BackupPath != "" {
		report.Backup(opts.BackupPath, records, log)
	}

	enriched := c.Enricher.Enrich(ctx, records, opts.Enrich)
	if opts.EnrichedPath != "" {
		report.Backup(opts.EnrichedPath, enriched, log)
	}

	result.Diffs = reconcile.Collect(records, enriched, model.EnrichmentFields)
	result.Changed = len(result.Diffs)
	log.Info("reconciled changes", zap.Int("records_changed", result.Changed))

	result.Statuses = c.Applier.Apply(ctx, result.Diffs, opts.DryRun, opts.ApplyWorkers)
	if opts.ReportPath != "" {
		if err := report.WriteChangeReport(opts.ReportPath, result.Diffs, result.Statuses); err != nil {
			log.Error("failed to write change report", zap.Error(err))
		} else {
			log.Info("change report written", zap.String("path", opts.ReportPath))
		}
	}

	if opts.EnrichOnly {
		result.Finished = time.Now().UTC()
		return result, nil
	}

	if opts.Merge {
		after := enriched
		if !opts.DryRun {
			// Committed updates changed the store; work from fresh rows.
			log.Info("re-fetching records post-update")
			after, err = c.Fetcher.Fetch(ctx, fetchOpts)
			if err != nil {
				return result, err
			}
		}
		result.Groups = c.Resolver.Resolve(ctx, after, opts.DryRun)
		if opts.MergeSummaryPath != "" {
			if err := report.WriteMergeSummary(opts.MergeSummaryPath, result.Groups); err != nil {
				log.Error("failed to write merge summary", zap.Error(err))
			} else {
				log.Info("merge summary written", zap.String("path", opts.MergeSummaryPath))
			}
		}
	}

	result.Finished = time.Now().UTC()
	log.Info("run complete",
		zap.Int("fetched", result.Fetched),
		zap.Int("changed", result.Changed),
		zap.Int("duplicate_groups", len(result.Groups)))
	return result, nil
}
