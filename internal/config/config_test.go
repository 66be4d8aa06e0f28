package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "source:\n  path: ./export\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, "export", cfg.Source.Type)
	assert.Equal(t, "./export", cfg.Source.Path)
	assert.Equal(t, 4, cfg.Render.Concurrency)
	assert.False(t, cfg.Render.Sanitize)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, "http", cfg.Weaviate.Scheme)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: text
server:
  host: 127.0.0.1
  port: 9000
source:
  type: csv
  path: messages.csv
  users_path: users.json
render:
  sanitize: true
  concurrency: 8
store:
  type: sqlite
sqlite:
  path: /tmp/render.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, "csv", cfg.Source.Type)
	assert.Equal(t, "users.json", cfg.Source.UsersPath)
	assert.True(t, cfg.Render.Sanitize)
	assert.Equal(t, 8, cfg.Render.Concurrency)
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Equal(t, "/tmp/render.db", cfg.SQLite.Path)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "source:\n  path: ./export\nserver:\n  port: 9000\n")
	t.Setenv("SLACKRENDER_SERVER_PORT", "9100")
	t.Setenv("SLACKRENDER_STORE_TYPE", "neo4j")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "neo4j", cfg.Store.Type)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Log:      LogConfig{Level: "info", Format: "json"},
			Server:   ServerConfig{Port: 8080},
			Source:   SourceConfig{Type: "export", Path: "./export"},
			Render:   RenderConfig{Concurrency: 4},
			Store:    StoreConfig{Type: "memory"},
			SQLite:   SQLiteConfig{Path: "x.db"},
			Weaviate: WeaviateConfig{Scheme: "http", Host: "localhost:8000"},
			Neo4j:    Neo4jConfig{URI: "neo4j://localhost:7687"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: true},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "unknown source", mutate: func(c *Config) { c.Source.Type = "zip" }, wantErr: true},
		{name: "export without path", mutate: func(c *Config) { c.Source.Path = "" }, wantErr: true},
		{name: "csv without users", mutate: func(c *Config) { c.Source.Type = "csv" }, wantErr: true},
		{name: "slack without token", mutate: func(c *Config) { c.Source.Type = "slack" }, wantErr: true},
		{
			name: "slack with token",
			mutate: func(c *Config) {
				c.Source = SourceConfig{Type: "slack", SlackToken: "xoxb-1"}
			},
		},
		{name: "zero concurrency", mutate: func(c *Config) { c.Render.Concurrency = 0 }, wantErr: true},
		{name: "unknown store", mutate: func(c *Config) { c.Store.Type = "redis" }, wantErr: true},
		{name: "bad weaviate scheme", mutate: func(c *Config) { c.Weaviate.Scheme = "ftp" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
