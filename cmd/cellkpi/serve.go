package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blctm/gigagreen/internal/server"
	"github.com/blctm/gigagreen/pkg/cellkpi"
)

type serveFlags struct {
	addr string
}

func newServeCmd(root *rootFlags) *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session upload API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closer, err := root.load()
			if err != nil {
				return err
			}
			defer closer.Close()

			if flags.addr != "" {
				cfg.Server.Addr = flags.addr
			}
			pipeline, err := cellkpi.NewPipeline(cfg.PipelineOptions(logger))
			if err != nil {
				return fmt.Errorf("invalid protocol: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.New(cfg.Server, pipeline, logger).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&flags.addr, "addr", "", "Listen address (overrides configuration)")
	return cmd
}
