package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/testsabirweb/slack_render/internal/app"
	"github.com/testsabirweb/slack_render/internal/config"
	"github.com/testsabirweb/slack_render/internal/logging"
	"github.com/testsabirweb/slack_render/pkg/pipeline"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "render",
		Short: "Render a Slack export to HTML and attach it to channel nodes",
		Long: `render loads users and public channels from a Slack export, a CSV export
or the Slack Web API, renders every message to HTML and stores the result
on each channel node under "normalizedMessages".`,
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

	attacher, err := app.NewAttacher(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", zap.String("store", cfg.Store.Type), zap.Error(err))
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := attacher.Close(closeCtx); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}()

	p := pipeline.New(attacher, logger, pipeline.Config{
		Concurrency: cfg.Render.Concurrency,
		Sanitize:    cfg.Render.Sanitize,
	})

	stats, err := p.Run(ctx, dir)
	if err != nil {
		logger.Error("render failed", zap.Error(err))
		return err
	}

	fmt.Println("\n=== Render Complete ===")
	fmt.Printf("Duration: %s\n", stats.Duration().Round(time.Millisecond))
	fmt.Printf("Channels: %d\n", stats.Channels)
	fmt.Printf("Messages: %d\n", stats.Messages)
	fmt.Printf("Resolved authors: %d\n", stats.ResolvedAuthors)
	fmt.Printf("Unresolved authors: %d\n", stats.UnresolvedAuthors)
	fmt.Printf("Store: %s\n", cfg.Store.Type)

	return nil
}
