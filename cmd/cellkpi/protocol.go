package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/blctm/gigagreen/internal/config"
)

func newProtocolCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "protocol",
		Short: "Print the active KPI protocol as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg.ActiveProtocol())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
