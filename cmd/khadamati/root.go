package main

import (
	"github.com/khadamati/khadamati/config"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "khadamati",
		Short:         "Khadamati service request server",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (yaml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newInitdbCmd(opts),
		newSeedCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() (*config.AppConfig, error) {
	return config.LoadConfig(o.configFile)
}
