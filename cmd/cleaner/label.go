package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/cobalt/internal/core/label"
	"github.com/agenthands/cobalt/internal/llm"
)

func newLabelCmd() *cobra.Command {
	var (
		input  string
		output string
		useLLM bool
	)
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Propose labels for an internal-issue CSV export",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var client llm.Client
			if useLLM {
				var err error
				client, err = llm.NewClient(ctx, cfg.LLM)
				if err != nil {
					logger.Warn("llm fallback unavailable, labelling heuristically", zap.Error(err))
				}
			}
			proposer := label.NewProposer(client, logger.Named("label"))
			out, err := proposer.ProcessCSV(ctx, input, output)
			if err != nil {
				return err
			}
			fmt.Printf("wrote labeled CSV to: %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "input CSV path")
	cmd.Flags().StringVar(&output, "output", "", "output CSV path (default out/<base>_labeled.csv)")
	cmd.Flags().BoolVar(&useLLM, "llm", false, "ask the configured LLM when heuristics are unsure")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
