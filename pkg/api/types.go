package api

import (
	"errors"
	"unicode/utf8"

	"github.com/testsabirweb/slack_render/pkg/models"
	"github.com/testsabirweb/slack_render/pkg/store"
)

// MaxTextLength is the longest text accepted for rendering, in characters.
// It matches the limit Slack puts on message text.
const MaxTextLength = 40000

// Request errors
var (
	ErrTextTooLong = errors.New("text exceeds 40000 characters")
)

// RenderRequest represents an ad-hoc render request
type RenderRequest struct {
	// Text is raw Slack message text
	Text string `json:"text"`
}

// Validate validates the render request
func (r *RenderRequest) Validate() error {
	if utf8.RuneCountInString(r.Text) > MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}

// RenderResponse represents the render API response
type RenderResponse struct {
	HTML string `json:"html"`
}

// ChannelsResponse lists rendered channels
type ChannelsResponse struct {
	Channels []store.ChannelInfo `json:"channels"`
}

// MessagesResponse holds the rendered messages of one channel
type MessagesResponse struct {
	ChannelID string                     `json:"channel_id"`
	Messages  []models.NormalizedMessage `json:"messages"`
}

// ErrorResponse is returned for failed requests
type ErrorResponse struct {
	Error string `json:"error"`
}
