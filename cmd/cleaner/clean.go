package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/cobalt/internal/core"
	"github.com/agenthands/cobalt/internal/core/enrich"
	"github.com/agenthands/cobalt/internal/core/fetch"
)

// clean is the full pipeline: fetch, backup, enrich, reconcile, apply,
// report, and optionally merge duplicates. Dry-run unless --commit.
func newCleanCmd() *cobra.Command {
	var (
		limit        int
		backup       string
		enrichedPath string
		reportPath   string
		summaryPath  string
		workers      int
		commit       bool
		merge        bool
		enrichOnly   bool
	)
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Enrich accounts, push changed fields, optionally merge duplicates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cleaner, err := newCleaner(ctx)
			if err != nil {
				return err
			}
			// The flag wins when set explicitly; otherwise config values apply.
			enrichWorkers, applyWorkers := workers, workers
			if !cmd.Flags().Changed("workers") {
				if cfg.Enrich.Workers > 0 {
					enrichWorkers = cfg.Enrich.Workers
				}
				if cfg.Apply.Workers > 0 {
					applyWorkers = cfg.Apply.Workers
				}
			}
			result, err := cleaner.Run(ctx, core.RunOptions{
				Limit:      limit,
				DryRun:     !commit,
				Merge:      merge,
				EnrichOnly: enrichOnly,
				Fetch: fetch.Options{
					ChunkSize:   cfg.Fetch.ChunkSize,
					IDBatchSize: cfg.Fetch.IDBatchSize,
					Workers:     cfg.Fetch.Workers,
				},
				Enrich: enrich.Options{
					Workers: enrichWorkers,
					Policy:  enrichPolicy(cfg.Enrich.MaxRetries, cfg.Enrich.BackoffFactor, cfg.Enrich.PauseSeconds),
				},
				ApplyWorkers:     applyWorkers,
				BackupPath:       backup,
				EnrichedPath:     enrichedPath,
				ReportPath:       reportPath,
				MergeSummaryPath: summaryPath,
			})
			if err != nil {
				return err
			}
			fmt.Printf("run=%s fetched=%d changed=%d groups=%d dry_run=%v\n",
				result.RunID, result.Fetched, result.Changed, len(result.Groups), result.DryRun)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "limit accounts to process (0 = all)")
	cmd.Flags().StringVar(&backup, "backup", "accounts_backup.csv", "backup CSV path")
	cmd.Flags().StringVar(&enrichedPath, "enriched", "", "enriched record set CSV path (empty = skip)")
	cmd.Flags().StringVar(&reportPath, "report", "cleaner_report.csv", "change report CSV path")
	cmd.Flags().StringVar(&summaryPath, "merge-summary", "merge_summary.json", "merge summary JSON path")
	cmd.Flags().IntVar(&workers, "workers", 6, "parallel workers for lookups and updates")
	cmd.Flags().BoolVar(&commit, "commit", false, "apply updates and deletions (otherwise dry-run)")
	cmd.Flags().BoolVar(&merge, "merge", false, "run duplicate resolution after enrichment")
	cmd.Flags().BoolVar(&enrichOnly, "enrich-only", false, "stop after the update step")
	return cmd
}
