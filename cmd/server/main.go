package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/testsabirweb/slack_render/internal/app"
	"github.com/testsabirweb/slack_render/internal/config"
	"github.com/testsabirweb/slack_render/internal/logging"
	"github.com/testsabirweb/slack_render/pkg/api"
	"github.com/testsabirweb/slack_render/pkg/pipeline"
	"github.com/testsabirweb/slack_render/pkg/render"
	"github.com/testsabirweb/slack_render/pkg/store"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "server",
		Short:        "Serve rendered Slack channels over HTTP and WebSocket",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ./config.yaml)")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting slack-render server")

	source, err := app.NewSource(cfg, logger)
	if err != nil {
		logger.Error("invalid source", zap.Error(err))
		return err
	}

	dir, err := source.Load(ctx)
	if err != nil {
		logger.Error("failed to load directory", zap.String("source", cfg.Source.Type), zap.Error(err))
		return err
	}

	// The server always reads from memory, whatever store the render CLI uses
	memory := store.NewMemoryAttacher()
	p := pipeline.New(memory, logger, pipeline.Config{
		Concurrency: cfg.Render.Concurrency,
		Sanitize:    cfg.Render.Sanitize,
	})
	if _, err := p.Run(ctx, dir); err != nil {
		logger.Error("render failed", zap.Error(err))
		return err
	}

	renderer := render.NewRenderer(dir.Users, app.RenderOptions(cfg)...)
	server := api.NewServer(renderer, memory, pipeline.FieldName, logger)

	if err := server.Serve(ctx, cfg.Server.Addr()); err != nil {
		logger.Error("server failed", zap.Error(err))
		return err
	}

	logger.Info("server exited")
	return nil
}
