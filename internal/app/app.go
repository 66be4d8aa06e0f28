// Package app wires configured sources and stores for the binaries.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/testsabirweb/slack_render/internal/config"
	"github.com/testsabirweb/slack_render/pkg/ingestion"
	"github.com/testsabirweb/slack_render/pkg/render"
	"github.com/testsabirweb/slack_render/pkg/store"
)

// NewSource returns the Directory source selected by cfg.Source.Type
func NewSource(cfg *config.Config, logger *zap.Logger) (ingestion.Source, error) {
	switch cfg.Source.Type {
	case "export":
		return ingestion.NewExportSource(cfg.Source.Path, logger), nil
	case "csv":
		return ingestion.NewCSVSource(cfg.Source.Path, cfg.Source.UsersPath, logger), nil
	case "slack":
		return ingestion.NewSlackAPISource(cfg.Source.SlackToken, logger), nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", cfg.Source.Type)
	}
}

// NewAttacher opens the store selected by cfg.Store.Type. The caller closes it.
func NewAttacher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.FieldAttacher, error) {
	switch cfg.Store.Type {
	case "memory":
		return store.NewMemoryAttacher(), nil
	case "sqlite":
		attacher, err := store.NewSQLiteAttacher(cfg.SQLite.Path, logger)
		if err != nil {
			return nil, err
		}
		return attacher, nil
	case "weaviate":
		attacher, err := store.NewWeaviateAttacher(cfg.Weaviate.Scheme, cfg.Weaviate.Host, cfg.Weaviate.APIKey, logger)
		if err != nil {
			return nil, err
		}
		if err := attacher.Initialize(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize weaviate schema: %w", err)
		}
		return attacher, nil
	case "neo4j":
		attacher, err := store.NewNeo4jAttacher(ctx, cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.Database, logger)
		if err != nil {
			return nil, err
		}
		return attacher, nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Store.Type)
	}
}

// RenderOptions returns the renderer options implied by cfg
func RenderOptions(cfg *config.Config) []render.Option {
	var opts []render.Option
	if cfg.Render.Sanitize {
		opts = append(opts, render.WithSanitizer(render.NewSanitizer()))
	}
	return opts
}
