// Package store attaches computed fields to channel nodes in an external
// store. Each backend keeps one value per (channel, field) pair and replaces
// it on every attach.
package store

import (
	"context"

	"github.com/testsabirweb/slack_render/pkg/models"
)

// FieldAttacher associates a computed value with an existing channel node
type FieldAttacher interface {
	// AttachField stores value under name on the node for channel,
	// replacing any previous value
	AttachField(ctx context.Context, channel models.Channel, name string, value []models.NormalizedMessage) error

	// HealthCheck verifies the connection to the backing store
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the attacher
	Close(ctx context.Context) error
}
