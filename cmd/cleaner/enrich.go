package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/cobalt/internal/core"
	"github.com/agenthands/cobalt/internal/core/enrich"
	"github.com/agenthands/cobalt/internal/core/fetch"
)

// enrich fetches accounts and fills missing place data, writing the
// enriched set to CSV without touching the store.
func newEnrichCmd() *cobra.Command {
	var (
		limit       int
		chunkSize   int
		idBatchSize int
		workers     int
		serpWorkers int
		pause       float64
		maxRetries  int
		backoff     float64
		output      string
	)
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fetch accounts and enrich missing place data (no writes)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cleaner, err := newCleaner(ctx)
			if err != nil {
				return err
			}
			result, err := cleaner.Run(ctx, core.RunOptions{
				Limit:      limit,
				DryRun:     true,
				EnrichOnly: true,
				Fetch: fetch.Options{
					ChunkSize:   chunkSize,
					IDBatchSize: idBatchSize,
					Workers:     workers,
				},
				Enrich: enrich.Options{
					Workers: serpWorkers,
					Policy:  enrichPolicy(maxRetries, backoff, pause),
				},
				EnrichedPath: output,
			})
			if err != nil {
				return err
			}
			fmt.Printf("fetched=%d changed=%d output=%s\n", result.Fetched, result.Changed, output)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "how many accounts to fetch (0 = all)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", fetch.DefaultChunkSize, "fields per query chunk")
	cmd.Flags().IntVar(&idBatchSize, "id-batch-size", fetch.DefaultIDBatchSize, "ids per filter batch")
	cmd.Flags().IntVar(&workers, "workers", fetch.DefaultWorkers, "parallel fetch queries")
	cmd.Flags().IntVar(&serpWorkers, "serp-workers", 5, "parallel lookup calls")
	cmd.Flags().Float64Var(&pause, "pause", 0.2, "seconds to pause after each lookup attempt")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 3, "lookup retry budget")
	cmd.Flags().Float64Var(&backoff, "backoff", 1.0, "lookup backoff factor in seconds")
	cmd.Flags().StringVar(&output, "output", "out/enriched.csv", "enriched CSV path")
	return cmd
}
