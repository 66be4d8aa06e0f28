package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const usersJSON = `[
  {"id": "U1", "name": "ann", "real_name": "Ann Lee", "profile": {"real_name": "Ann Lee", "display_name": "ann"}},
  {"id": "U2", "name": "bob", "profile": {"real_name": "Bob Stone", "display_name": ""}},
  {"name": "ghost"}
]`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNodeIDIsStable(t *testing.T) {
	assert.Equal(t, NodeID("SlackChannel", "C1"), NodeID("SlackChannel", "C1"))
	assert.NotEqual(t, NodeID("SlackChannel", "C1"), NodeID("SlackUser", "C1"))
	assert.NotEqual(t, NodeID("SlackChannel", "C1"), NodeID("SlackChannel", "C2"))
}

func TestLoadUsers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	writeFile(t, path, usersJSON)

	users, err := LoadUsers(path)
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, "U1", users[0].UserID)
	assert.Equal(t, NodeID("SlackUser", "U1"), users[0].ID)
	assert.Equal(t, "ann", users[0].DisplayName)
	assert.Equal(t, "ann", users[0].Name())

	// real name falls back to the profile
	assert.Equal(t, "Bob Stone", users[1].RealName)
	assert.Equal(t, "Bob Stone", users[1].Name())
}

func TestLoadUsersErrors(t *testing.T) {
	_, err := LoadUsers(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "users.json")
	writeFile(t, path, "{not json")
	_, err = LoadUsers(path)
	assert.Error(t, err)
}

func TestExportSourceLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "users.json"), usersJSON)
	writeFile(t, filepath.Join(dir, "channels.json"), `[
  {"id": "C1", "name": "general"},
  {"id": "G1", "name": "ops", "is_private": true},
  {"id": "C2", "name": "empty"}
]`)
	writeFile(t, filepath.Join(dir, "general", "2020-09-13.json"),
		`[{"text": "second day", "user": "U2", "ts": "1600000000.000200"}]`)
	writeFile(t, filepath.Join(dir, "general", "2020-09-12.json"),
		`[{"text": "hi <@U2>", "user": "U1", "ts": "1599934232.150700", "reply_count": 1,
		  "files": [{"title": "pic", "filetype": "png", "thumb_360": "https://x/t.png", "thumb_360_w": 360, "thumb_360_h": 200}]}]`)
	writeFile(t, filepath.Join(dir, "general", "notes.txt"), "ignored")
	writeFile(t, filepath.Join(dir, "ops", "2020-09-12.json"), `[{"text": "secret", "user": "U1", "ts": "1"}]`)

	source := NewExportSource(dir, zaptest.NewLogger(t))
	directory, err := source.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, directory.Users, 2)
	require.Len(t, directory.Channels, 2)

	general := directory.Channels[0]
	assert.Equal(t, "C1", general.ChannelID)
	assert.Equal(t, NodeID("SlackChannel", "C1"), general.ID)
	require.Len(t, general.Messages, 2)
	assert.Equal(t, "hi <@U2>", general.Messages[0].Text)
	assert.Equal(t, 1, general.Messages[0].ReplyCount)
	require.Len(t, general.Messages[0].Files, 1)
	assert.Equal(t, "https://x/t.png", general.Messages[0].Files[0].Thumb360)
	assert.Equal(t, "second day", general.Messages[1].Text)

	empty := directory.Channels[1]
	assert.Equal(t, "empty", empty.Name)
	assert.NotNil(t, empty.Messages)
	assert.Empty(t, empty.Messages)

	assert.Equal(t, 2, directory.MessageCount())
}

func TestExportSourceCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "users.json"), usersJSON)
	writeFile(t, filepath.Join(dir, "channels.json"), `[{"id": "C1", "name": "general"}]`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewExportSource(dir, nil).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCSVSourceLoad(t *testing.T) {
	dir := t.TempDir()
	usersPath := filepath.Join(dir, "users.json")
	csvPath := filepath.Join(dir, "messages.csv")
	writeFile(t, usersPath, usersJSON)
	writeFile(t, csvPath, sampleCSV)

	source := NewCSVSource(csvPath, usersPath, zaptest.NewLogger(t))
	directory, err := source.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, directory.Channels, 2)
	assert.Equal(t, "C1", directory.Channels[0].ChannelID)
	assert.Equal(t, "general", directory.Channels[0].Name)
	assert.Len(t, directory.Channels[0].Messages, 2)
	assert.Equal(t, "C2", directory.Channels[1].ChannelID)
	assert.Len(t, directory.Channels[1].Messages, 1)

	stats := source.Stats()
	require.NotNil(t, stats)
	assert.Equal(t, 3, stats.LoadedMessages)
	assert.Equal(t, 1, stats.PrivateSkipped)
	assert.Equal(t, 2, stats.Channels)
	assert.Equal(t, 3, stats.GetSummary()["loaded_messages"])
}

func TestCSVSourceMissingFile(t *testing.T) {
	dir := t.TempDir()
	usersPath := filepath.Join(dir, "users.json")
	writeFile(t, usersPath, usersJSON)

	_, err := NewCSVSource(filepath.Join(dir, "nope.csv"), usersPath, nil).Load(context.Background())
	assert.Error(t, err)
}
