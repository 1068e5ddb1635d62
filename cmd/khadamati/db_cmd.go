package main

import (
	"github.com/khadamati/khadamati/internal/app"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func openApp(opts *rootOptions) (*app.Application, error) {
	cfg, err := opts.load()
	if err != nil {
		return nil, err
	}
	a := app.NewApplication(cfg)
	if err := a.Open(cfg); err != nil {
		return nil, err
	}
	return a, nil
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var track bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Release()
			if err := a.MigrateDB(track); err != nil {
				return errors.Wrap(err, "migrate")
			}
			zap.L().Info("database schema migrated")
			return nil
		},
	}
	cmd.Flags().BoolVar(&track, "track", false, "log every migration statement")
	return cmd
}

func newInitdbCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "initdb",
		Short: "Drop and recreate every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return errors.New("initdb deletes all data; pass --force to continue")
			}
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Release()
			a.InitDb()
			zap.L().Warn("database reinitialized")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "confirm data loss")
	return cmd
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalog (providers, categories, services)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Release()
			if err := a.MigrateDB(false); err != nil {
				return errors.Wrap(err, "migrate")
			}
			return a.SeedDemo(cmd.Context())
		},
	}
}
