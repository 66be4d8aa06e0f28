package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testsabirweb/slack_render/pkg/models"
)

func testChannel(id string) models.Channel {
	return models.Channel{
		ID:        "node-" + id,
		ChannelID: id,
		Name:      "chan-" + id,
		Messages:  []models.Message{{Text: "raw", Timestamp: "1.0"}},
	}
}

func TestMemoryAttacher_AttachAndRead(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryAttacher()

	value := []models.NormalizedMessage{{Text: "<p>hi</p>", Timestamp: "1.0"}}
	require.NoError(t, m.AttachField(ctx, testChannel("C1"), "normalizedMessages", value))

	got, ok := m.Field("C1", "normalizedMessages")
	require.True(t, ok)
	assert.Equal(t, value, got)

	_, ok = m.Field("C1", "other")
	assert.False(t, ok)
	_, ok = m.Field("C2", "normalizedMessages")
	assert.False(t, ok)
}

func TestMemoryAttacher_CopiesNestedValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryAttacher()

	author := "user-1"
	value := []models.NormalizedMessage{{
		Text:      "<p>pic</p>",
		User:      &author,
		Timestamp: "1.0",
		Files:     []models.File{{Title: "pic", Filetype: "png"}},
	}}
	require.NoError(t, m.AttachField(ctx, testChannel("C1"), "normalizedMessages", value))

	author = "someone-else"
	value[0].Files[0].Title = "changed"

	got, ok := m.Field("C1", "normalizedMessages")
	require.True(t, ok)
	require.NotNil(t, got[0].User)
	assert.Equal(t, "user-1", *got[0].User)
	assert.Equal(t, "pic", got[0].Files[0].Title)

	*got[0].User = "reader-edit"
	got[0].Files[0].Title = "reader-edit"

	again, _ := m.Field("C1", "normalizedMessages")
	assert.Equal(t, "user-1", *again[0].User)
	assert.Equal(t, "pic", again[0].Files[0].Title)
}

func TestMemoryAttacher_ReplacesValue(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryAttacher()

	require.NoError(t, m.AttachField(ctx, testChannel("C1"), "f", []models.NormalizedMessage{{Text: "a"}, {Text: "b"}}))
	require.NoError(t, m.AttachField(ctx, testChannel("C1"), "f", []models.NormalizedMessage{}))

	got, ok := m.Field("C1", "f")
	require.True(t, ok)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMemoryAttacher_Channels(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryAttacher()

	require.NoError(t, m.AttachField(ctx, testChannel("C2"), "f", []models.NormalizedMessage{{Text: "a"}}))
	require.NoError(t, m.AttachField(ctx, testChannel("C1"), "f", []models.NormalizedMessage{{Text: "a"}, {Text: "b"}}))

	infos := m.Channels("f")
	require.Len(t, infos, 2)
	assert.Equal(t, ChannelInfo{ID: "node-C1", ChannelID: "C1", Name: "chan-C1", MessageCount: 2}, infos[0])
	assert.Equal(t, "C2", infos[1].ChannelID)
	assert.Equal(t, 1, infos[1].MessageCount)
}

func TestMemoryAttacher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewMemoryAttacher().AttachField(ctx, testChannel("C1"), "f", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
