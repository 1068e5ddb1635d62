package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/khadamati/khadamati/internal/api"
	"github.com/khadamati/khadamati/internal/app"
	"github.com/khadamati/khadamati/internal/webserver"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		return err
	}
	defer application.Release()

	srv := webserver.NewServer(application)
	api.Register(srv)

	return runServer(ctx, srv)
}

type server interface {
	Start(ctx context.Context) error
}

// runServer blocks until srv returns, either on its own or because ctx ended.
func runServer(ctx context.Context, srv server) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	err := g.Wait()
	zap.L().Info("server stopped", zap.Error(err))
	return err
}
