package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/cobalt/internal/config"
)

var (
	cfgPath string
	verbose bool
	cfg     *config.Config
	logger  *zap.Logger
)

func main() {
	root := &cobra.Command{
		Use:           "cleaner",
		Short:         "Fetch, enrich and clean CRM account records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err == nil {
				fmt.Fprintln(os.Stderr, "loaded .env")
			}
			var err error
			if verbose {
				logger, err = zap.NewDevelopment()
			} else {
				logger, err = zap.NewProduction()
			}
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)

			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "config/config.toml", "path to TOML config")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(newEnrichCmd(), newLabelCmd(), newCleanCmd(), newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
