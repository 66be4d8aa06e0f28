package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/testsabirweb/slack_render/pkg/models"
)

// exportChannel mirrors an entry of channels.json
type exportChannel struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"is_private"`
	Archived  bool   `json:"is_archived"`
}

// ExportSource reads an unzipped Slack workspace export:
//
//	users.json
//	channels.json
//	general/2020-09-12.json
//	general/2020-09-13.json
//	...
type ExportSource struct {
	dir    string
	logger *zap.Logger
}

// NewExportSource creates a source for the export unpacked in dir
func NewExportSource(dir string, logger *zap.Logger) *ExportSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportSource{dir: dir, logger: logger.Named("export")}
}

// Load implements Source
func (s *ExportSource) Load(ctx context.Context) (*models.Directory, error) {
	users, err := LoadUsers(filepath.Join(s.dir, "users.json"))
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, "channels.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read channels file: %w", err)
	}
	var rawChannels []exportChannel
	if err := json.Unmarshal(data, &rawChannels); err != nil {
		return nil, fmt.Errorf("failed to parse channels file: %w", err)
	}

	dir := &models.Directory{Users: users}
	skipped := 0
	for _, rc := range rawChannels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if rc.IsPrivate {
			skipped++
			continue
		}

		messages, err := s.loadMessages(rc.Name)
		if err != nil {
			return nil, err
		}

		dir.Channels = append(dir.Channels, models.Channel{
			ID:        NodeID("SlackChannel", rc.ID),
			ChannelID: rc.ID,
			Name:      rc.Name,
			Messages:  messages,
		})
	}

	s.logger.Info("export loaded",
		zap.String("dir", s.dir),
		zap.Int("users", len(dir.Users)),
		zap.Int("channels", len(dir.Channels)),
		zap.Int("private_channels_skipped", skipped),
		zap.Int("messages", dir.MessageCount()))

	return dir, nil
}

// loadMessages reads the day files of a channel in date order. A channel
// without a folder has no messages.
func (s *ExportSource) loadMessages(channelName string) ([]models.Message, error) {
	channelDir := filepath.Join(s.dir, channelName)
	entries, err := os.ReadDir(channelDir)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("channel folder missing", zap.String("channel", channelName))
		return []models.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list channel folder %s: %w", channelName, err)
	}

	messages := []models.Message{}
	// ReadDir returns entries sorted by file name, i.e. by date
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(channelDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		var day []models.Message
		if err := json.Unmarshal(data, &day); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		messages = append(messages, day...)
	}
	return messages, nil
}
