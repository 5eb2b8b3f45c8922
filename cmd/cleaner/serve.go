package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/cobalt/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose dry-run pipeline previews over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cleaner, err := newCleaner(ctx)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if addr == "" {
				addr = ":8080"
			}
			srv := server.New(cleaner, logger.Named("server"))
			logger.Info("starting server", zap.String("addr", addr))
			return srv.SetupRouter().Run(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config or :8080)")
	return cmd
}
