package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/testsabirweb/slack_render/pkg/models"
)

// ChannelInfo summarises a channel node held by a MemoryAttacher
type ChannelInfo struct {
	ID           string `json:"id"`
	ChannelID    string `json:"channel_id"`
	Name         string `json:"name,omitempty"`
	MessageCount int    `json:"message_count"`
}

// MemoryAttacher keeps attached fields in memory. It backs the HTTP server
// and tests.
type MemoryAttacher struct {
	mu       sync.RWMutex
	channels map[string]models.Channel                        // keyed by Slack channel ID
	fields   map[string]map[string][]models.NormalizedMessage // channel ID -> field -> value
}

// NewMemoryAttacher creates an empty in-memory store
func NewMemoryAttacher() *MemoryAttacher {
	return &MemoryAttacher{
		channels: make(map[string]models.Channel),
		fields:   make(map[string]map[string][]models.NormalizedMessage),
	}
}

// AttachField implements FieldAttacher
func (m *MemoryAttacher) AttachField(ctx context.Context, channel models.Channel, name string, value []models.NormalizedMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	node := channel
	node.Messages = nil
	m.channels[channel.ChannelID] = node

	if m.fields[channel.ChannelID] == nil {
		m.fields[channel.ChannelID] = make(map[string][]models.NormalizedMessage)
	}
	m.fields[channel.ChannelID][name] = cloneMessages(value)
	return nil
}

// Field returns the value attached under name to the channel with the given
// Slack channel ID
func (m *MemoryAttacher) Field(channelID, name string) ([]models.NormalizedMessage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fields, ok := m.fields[channelID]
	if !ok {
		return nil, false
	}
	value, ok := fields[name]
	if !ok {
		return nil, false
	}
	return cloneMessages(value), true
}

// Channels lists the channel nodes that have at least one field attached,
// ordered by Slack channel ID. MessageCount is taken from field.
func (m *MemoryAttacher) Channels(field string) []ChannelInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]ChannelInfo, 0, len(m.channels))
	for id, ch := range m.channels {
		infos = append(infos, ChannelInfo{
			ID:           ch.ID,
			ChannelID:    id,
			Name:         ch.Name,
			MessageCount: len(m.fields[id][field]),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ChannelID < infos[j].ChannelID
	})
	return infos
}

// cloneMessages copies value down to the Files slices and author pointers
func cloneMessages(value []models.NormalizedMessage) []models.NormalizedMessage {
	if value == nil {
		return nil
	}
	out := make([]models.NormalizedMessage, len(value))
	for i, msg := range value {
		msg.Files = slices.Clone(msg.Files)
		if msg.User != nil {
			user := *msg.User
			msg.User = &user
		}
		out[i] = msg
	}
	return out
}

// HealthCheck implements FieldAttacher
func (m *MemoryAttacher) HealthCheck(ctx context.Context) error {
	return nil
}

// Close implements FieldAttacher
func (m *MemoryAttacher) Close(ctx context.Context) error {
	return nil
}
