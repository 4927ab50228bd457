// Package main provides the CLI entry point for cellkpi.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/blctm/gigagreen/internal/config"
	"github.com/blctm/gigagreen/internal/infrastructure"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "cellkpi",
		Short: "Summarize battery cycling workbooks into KPI tables",
		Long: `cellkpi reads battery cycling test workbooks, computes the KPIs of
the test protocol for each cell and combines them into one summary table.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(
		newSummarizeCmd(flags),
		newServeCmd(flags),
		newProtocolCmd(flags),
	)
	return rootCmd
}

// load reads the configuration and builds the logger it describes.
func (f *rootFlags) load() (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	logger, closer, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, closer, nil
}
