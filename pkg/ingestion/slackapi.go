package ingestion

import (
	"context"
	"fmt"
	"slices"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/testsabirweb/slack_render/pkg/models"
)

const slackPageSize = 200

// slackAPI is the part of the Slack Web API client the source needs
type slackAPI interface {
	GetUsersContext(ctx context.Context, options ...slack.GetUsersOption) ([]slack.User, error)
	GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
}

// SlackAPISource builds a Directory straight from a workspace through the
// Slack Web API. Only public, non-archived channels are listed.
type SlackAPISource struct {
	client slackAPI
	logger *zap.Logger
}

// NewSlackAPISource creates a source authenticated with a bot token
func NewSlackAPISource(token string, logger *zap.Logger, options ...slack.Option) *SlackAPISource {
	return newSlackAPISource(slack.New(token, options...), logger)
}

func newSlackAPISource(client slackAPI, logger *zap.Logger) *SlackAPISource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlackAPISource{client: client, logger: logger.Named("slackapi")}
}

// Load implements Source
func (s *SlackAPISource) Load(ctx context.Context) (*models.Directory, error) {
	apiUsers, err := s.client.GetUsersContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	dir := &models.Directory{Users: make([]models.User, 0, len(apiUsers))}
	for _, u := range apiUsers {
		realName := u.RealName
		if realName == "" {
			realName = u.Profile.RealName
		}
		dir.Users = append(dir.Users, models.User{
			ID:          NodeID("SlackUser", u.ID),
			UserID:      u.ID,
			RealName:    realName,
			DisplayName: u.Profile.DisplayName,
		})
	}

	params := &slack.GetConversationsParameters{
		Types:           []string{"public_channel"},
		ExcludeArchived: true,
		Limit:           slackPageSize,
	}
	for {
		channels, cursor, err := s.client.GetConversationsContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list channels: %w", err)
		}

		for _, ch := range channels {
			if ch.IsPrivate {
				continue
			}
			messages, err := s.history(ctx, ch.ID)
			if err != nil {
				return nil, err
			}
			dir.Channels = append(dir.Channels, models.Channel{
				ID:        NodeID("SlackChannel", ch.ID),
				ChannelID: ch.ID,
				Name:      ch.Name,
				Messages:  messages,
			})
		}

		if cursor == "" {
			break
		}
		params.Cursor = cursor
	}

	s.logger.Info("workspace loaded",
		zap.Int("users", len(dir.Users)),
		zap.Int("channels", len(dir.Channels)),
		zap.Int("messages", dir.MessageCount()))

	return dir, nil
}

// history pages through a channel's history. The API returns newest first;
// the result is in chronological order.
func (s *SlackAPISource) history(ctx context.Context, channelID string) ([]models.Message, error) {
	params := &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Limit:     slackPageSize,
	}

	messages := []models.Message{}
	for {
		resp, err := s.client.GetConversationHistoryContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to read history of %s: %w", channelID, err)
		}
		for _, m := range resp.Messages {
			messages = append(messages, convertSlackMessage(m))
		}

		if !resp.HasMore || resp.ResponseMetaData.NextCursor == "" {
			break
		}
		params.Cursor = resp.ResponseMetaData.NextCursor
	}

	slices.Reverse(messages)
	s.logger.Debug("channel history read", zap.String("channel", channelID), zap.Int("messages", len(messages)))
	return messages, nil
}

func convertSlackMessage(m slack.Message) models.Message {
	msg := models.Message{
		Text:            m.Text,
		User:            m.User,
		Timestamp:       m.Timestamp,
		ThreadTimestamp: m.ThreadTimestamp,
		ReplyCount:      m.ReplyCount,
	}
	for _, f := range m.Files {
		msg.Files = append(msg.Files, models.File{
			Title:     f.Title,
			Filetype:  f.Filetype,
			Thumb360:  f.Thumb360,
			Thumb360W: f.Thumb360W,
			Thumb360H: f.Thumb360H,
		})
	}
	return msg
}
