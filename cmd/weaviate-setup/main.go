package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/testsabirweb/slack_render/internal/config"
	"github.com/testsabirweb/slack_render/internal/logging"
	"github.com/testsabirweb/slack_render/pkg/store"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "weaviate-setup",
		Short:        "Create the SlackChannel class in Weaviate",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ./config.yaml)")

	if err := rootCmd.Execute(); err != nil {
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

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	// Create Weaviate client
	fmt.Printf("Connecting to Weaviate at %s://%s...\n", cfg.Weaviate.Scheme, cfg.Weaviate.Host)
	attacher, err := store.NewWeaviateAttacher(cfg.Weaviate.Scheme, cfg.Weaviate.Host, cfg.Weaviate.APIKey, logger)
	if err != nil {
		logger.Error("failed to create weaviate client", zap.Error(err))
		return err
	}

	// Check health
	fmt.Println("Checking Weaviate health...")
	if err := attacher.HealthCheck(ctx); err != nil {
		logger.Error("weaviate health check failed", zap.Error(err))
		return err
	}
	fmt.Println("✓ Weaviate is healthy")

	// Initialize schema
	fmt.Printf("Initializing %s schema...\n", store.ChannelClass)
	if err := attacher.Initialize(ctx); err != nil {
		logger.Error("failed to initialize schema", zap.Error(err))
		return err
	}
	fmt.Println("✓ Schema initialized successfully")

	fmt.Println("\nWeaviate setup completed successfully!")
	return nil
}
