// Package config loads the application configuration from an optional YAML
// file and SLACKRENDER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. SLACKRENDER_SERVER_PORT
const EnvPrefix = "SLACKRENDER"

// Config holds the application configuration
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Source   SourceConfig   `mapstructure:"source"`
	Render   RenderConfig   `mapstructure:"render"`
	Store    StoreConfig    `mapstructure:"store"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Weaviate WeaviateConfig `mapstructure:"weaviate"`
	Neo4j    Neo4jConfig    `mapstructure:"neo4j"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"min=1,max=65535"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SourceConfig selects where the Directory is loaded from
type SourceConfig struct {
	Type       string `mapstructure:"type" validate:"oneof=export csv slack"`
	Path       string `mapstructure:"path" validate:"required_unless=Type slack"`
	UsersPath  string `mapstructure:"users_path" validate:"required_if=Type csv"`
	SlackToken string `mapstructure:"slack_token" validate:"required_if=Type slack"`
}

// RenderConfig holds rendering pipeline configuration
type RenderConfig struct {
	Sanitize    bool `mapstructure:"sanitize"`
	Concurrency int  `mapstructure:"concurrency" validate:"min=1,max=64"`
}

// StoreConfig selects where rendered messages are attached
type StoreConfig struct {
	Type string `mapstructure:"type" validate:"oneof=memory sqlite weaviate neo4j"`
}

// SQLiteConfig holds SQLite store configuration
type SQLiteConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// WeaviateConfig holds Weaviate-specific configuration
type WeaviateConfig struct {
	Scheme string `mapstructure:"scheme" validate:"oneof=http https"`
	Host   string `mapstructure:"host" validate:"required"`
	APIKey string `mapstructure:"api_key"`
}

// Neo4jConfig holds Neo4j-specific configuration
type Neo4jConfig struct {
	URI      string `mapstructure:"uri" validate:"required"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// setDefaults sets default values for optional configuration parameters
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)

	v.SetDefault("source.type", "export")
	v.SetDefault("source.path", "")
	v.SetDefault("source.users_path", "")
	v.SetDefault("source.slack_token", "")

	v.SetDefault("render.sanitize", false)
	v.SetDefault("render.concurrency", 4)

	v.SetDefault("store.type", "memory")

	v.SetDefault("sqlite.path", "slack_render.db")

	v.SetDefault("weaviate.scheme", "http")
	v.SetDefault("weaviate.host", "localhost:8000")
	v.SetDefault("weaviate.api_key", "")

	v.SetDefault("neo4j.uri", "neo4j://localhost:7687")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.password", "")
	v.SetDefault("neo4j.database", "")
}

// Load loads configuration from defaults, the optional config file at path
// and SLACKRENDER_* environment variables, in increasing priority
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
