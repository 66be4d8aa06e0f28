package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/testsabirweb/slack_render/pkg/models"
)

// Neo4jAttacher sets attached fields as properties of (:SlackChannel) nodes
type Neo4jAttacher struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// NewNeo4jAttacher connects to the Neo4j server at uri
func NewNeo4jAttacher(ctx context.Context, uri, username, password, database string, logger *zap.Logger) (*Neo4jAttacher, error) {
	if uri == "" {
		return nil, fmt.Errorf("neo4j uri cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	return &Neo4jAttacher{
		driver:   driver,
		database: database,
		logger:   logger.Named("neo4j"),
	}, nil
}

// AttachField implements FieldAttacher. The channel node is matched by its
// internal ID and created when missing.
func (a *Neo4jAttacher) AttachField(ctx context.Context, channel models.Channel, name string, value []models.NormalizedMessage) error {
	if value == nil {
		value = []models.NormalizedMessage{}
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	session := a.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: a.database,
	})
	defer session.Close(ctx)

	query := `
		MERGE (c:SlackChannel {id: $nodeId})
		SET c.channelId = $channelId, c.name = $name
		SET c += $fields
	`
	params := map[string]interface{}{
		"nodeId":    channel.ID,
		"channelId": channel.ChannelID,
		"name":      channel.Name,
		"fields":    map[string]interface{}{name: string(payload)},
	}

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to attach %s to channel node %s: %w", name, channel.ID, err)
	}

	a.logger.Debug("field attached",
		zap.String("node_id", channel.ID),
		zap.String("field", name))
	return nil
}

// HealthCheck implements FieldAttacher
func (a *Neo4jAttacher) HealthCheck(ctx context.Context) error {
	if err := a.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("neo4j health check failed: %w", err)
	}
	return nil
}

// Close implements FieldAttacher
func (a *Neo4jAttacher) Close(ctx context.Context) error {
	return a.driver.Close(ctx)
}
