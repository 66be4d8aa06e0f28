package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate/entities/models"
	"go.uber.org/zap"

	slackmodels "github.com/testsabirweb/slack_render/pkg/models"
)

// ChannelClass is the Weaviate class holding one object per channel node
const ChannelClass = "SlackChannel"

// channelNamespace seeds the deterministic object IDs of channel nodes
var channelNamespace = uuid.MustParse("6f1c3e2a-3b0d-4c55-9a4e-5d7b8f0c2e91")

// ChannelObjectID returns the Weaviate object ID for the channel with the
// given internal ID
func ChannelObjectID(nodeID string) string {
	return uuid.NewSHA1(channelNamespace, []byte(nodeID)).String()
}

// WeaviateAttacher attaches fields as properties of SlackChannel objects
type WeaviateAttacher struct {
	client *weaviate.Client
	scheme string
	host   string
	logger *zap.Logger
}

// NewWeaviateAttacher creates a new Weaviate-backed attacher
func NewWeaviateAttacher(scheme, host, apiKey string, logger *zap.Logger) (*WeaviateAttacher, error) {
	if host == "" {
		return nil, fmt.Errorf("weaviate host cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := weaviate.Config{
		Scheme: scheme,
		Host:   host,
	}

	// Add API key authentication if provided
	if apiKey != "" {
		cfg.AuthConfig = auth.ApiKey{Value: apiKey}
	}

	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	return &WeaviateAttacher{
		client: client,
		scheme: scheme,
		host:   host,
		logger: logger.Named("weaviate"),
	}, nil
}

// Initialize creates the SlackChannel class if it does not exist yet
func (a *WeaviateAttacher) Initialize(ctx context.Context) error {
	exists, err := a.client.Schema().ClassExistenceChecker().
		WithClassName(ChannelClass).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check class existence: %w", err)
	}

	if exists {
		return nil
	}

	classObj := &models.Class{
		Class:       ChannelClass,
		Description: "A public Slack channel and its rendered messages",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{
				Name:        "nodeId",
				DataType:    []string{"text"},
				Description: "Internal node ID of the channel",
			},
			{
				Name:        "channelId",
				DataType:    []string{"text"},
				Description: "Slack channel ID",
			},
			{
				Name:        "name",
				DataType:    []string{"text"},
				Description: "Channel name",
			},
			{
				Name:        "normalizedMessages",
				DataType:    []string{"text"},
				Description: "Rendered messages as a JSON array",
			},
		},
	}

	err = a.client.Schema().ClassCreator().
		WithClass(classObj).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create class schema: %w", err)
	}

	a.logger.Info("created weaviate class", zap.String("class", ChannelClass))
	return nil
}

// AttachField implements FieldAttacher. The channel object is created on
// first use and merged into afterwards.
func (a *WeaviateAttacher) AttachField(ctx context.Context, channel slackmodels.Channel, name string, value []slackmodels.NormalizedMessage) error {
	if value == nil {
		value = []slackmodels.NormalizedMessage{}
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	id := ChannelObjectID(channel.ID)
	properties := map[string]interface{}{
		"nodeId":    channel.ID,
		"channelId": channel.ChannelID,
		"name":      channel.Name,
		name:        string(payload),
	}

	exists, err := a.client.Data().Checker().
		WithClassName(ChannelClass).
		WithID(id).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to look up channel object %s: %w", id, err)
	}

	if exists {
		err = a.client.Data().Updater().
			WithMerge().
			WithClassName(ChannelClass).
			WithID(id).
			WithProperties(properties).
			Do(ctx)
	} else {
		_, err = a.client.Data().Creator().
			WithClassName(ChannelClass).
			WithID(id).
			WithProperties(properties).
			Do(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to attach %s to channel object %s: %w", name, id, err)
	}

	a.logger.Debug("field attached",
		zap.String("object_id", id),
		zap.String("channel_id", channel.ChannelID),
		zap.String("field", name))
	return nil
}

// HealthCheck verifies Weaviate connection
func (a *WeaviateAttacher) HealthCheck(ctx context.Context) error {
	ready, err := a.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate health check failed: %w", err)
	}

	if !ready {
		return fmt.Errorf("weaviate is not ready")
	}

	return nil
}

// Close implements FieldAttacher. The Weaviate client holds no resources.
func (a *WeaviateAttacher) Close(ctx context.Context) error {
	return nil
}
