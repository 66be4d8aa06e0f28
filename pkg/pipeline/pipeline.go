// Package pipeline renders every message of every channel in a Directory and
// hands the per-channel results to a store.FieldAttacher.
package pipeline

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/testsabirweb/slack_render/pkg/models"
	"github.com/testsabirweb/slack_render/pkg/render"
	"github.com/testsabirweb/slack_render/pkg/store"
)

// FieldName is the field under which rendered messages are attached to a
// channel node
const FieldName = "normalizedMessages"

// Config contains configuration for the pipeline
type Config struct {
	Concurrency int  // Number of channels rendered at the same time
	Sanitize    bool // Run rendered HTML through the allow-list sanitizer
}

// DefaultConfig returns default pipeline configuration
func DefaultConfig() Config {
	return Config{
		Concurrency: 4,
		Sanitize:    false,
	}
}

// Pipeline renders channel messages and attaches them to channel nodes
type Pipeline struct {
	attacher store.FieldAttacher
	config   Config
	options  []render.Option
	logger   *zap.Logger
}

// New creates a new pipeline writing to attacher
func New(attacher store.FieldAttacher, logger *zap.Logger, config ...Config) *Pipeline {
	cfg := DefaultConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []render.Option
	if cfg.Sanitize {
		opts = append(opts, render.WithSanitizer(render.NewSanitizer()))
	}

	return &Pipeline{
		attacher: attacher,
		config:   cfg,
		options:  opts,
		logger:   logger.Named("pipeline"),
	}
}

// WithRenderOptions adds renderer options (custom emoji tables, etc.)
func (p *Pipeline) WithRenderOptions(opts ...render.Option) *Pipeline {
	p.options = append(p.options, opts...)
	return p
}

// Stats tracks what a pipeline run produced
type Stats struct {
	Channels          int
	Messages          int
	ResolvedAuthors   int
	UnresolvedAuthors int
	StartTime         time.Time
	EndTime           time.Time
	mu                sync.Mutex
}

func (s *Stats) addChannel(messages, resolved int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Channels++
	s.Messages += messages
	s.ResolvedAuthors += resolved
	s.UnresolvedAuthors += messages - resolved
}

// Duration returns how long the run took
func (s *Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Run renders every channel in dir and attaches the result under FieldName.
// Channels are processed concurrently; message order within a channel is
// preserved. The first attach failure stops the run.
func (p *Pipeline) Run(ctx context.Context, dir *models.Directory) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	if dir == nil {
		stats.EndTime = time.Now()
		return stats, nil
	}

	renderer := render.NewRenderer(dir.Users, p.options...)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Concurrency)

	for _, channel := range dir.Channels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			normalized, resolved := NormalizeChannel(renderer, channel)
			if err := p.attacher.AttachField(gctx, channel, FieldName, normalized); err != nil {
				return fmt.Errorf("failed to attach %s to channel %s: %w", FieldName, channel.ChannelID, err)
			}

			stats.addChannel(len(normalized), resolved)
			p.logger.Debug("channel rendered",
				zap.String("channel_id", channel.ChannelID),
				zap.Int("messages", len(normalized)),
				zap.Int("unresolved_authors", len(normalized)-resolved))
			return nil
		})
	}

	err := g.Wait()
	stats.EndTime = time.Now()
	if err != nil {
		return stats, err
	}

	p.logger.Info("pipeline finished",
		zap.Int("channels", stats.Channels),
		zap.Int("messages", stats.Messages),
		zap.Int("unresolved_authors", stats.UnresolvedAuthors),
		zap.Duration("duration", stats.Duration()))

	return stats, nil
}

// NormalizeChannel renders the messages of channel in order. It also returns
// how many authors were resolved. A channel without messages yields an empty,
// non-nil slice.
func NormalizeChannel(renderer *render.Renderer, channel models.Channel) ([]models.NormalizedMessage, int) {
	normalized := make([]models.NormalizedMessage, 0, len(channel.Messages))
	resolved := 0
	for _, msg := range channel.Messages {
		nm := NormalizeMessage(renderer, msg)
		if nm.User != nil {
			resolved++
		}
		normalized = append(normalized, nm)
	}
	return normalized, resolved
}

// NormalizeMessage renders the text of msg and swaps its Slack author ID for
// the internal user ID. The author is left unset when it cannot be resolved.
func NormalizeMessage(renderer *render.Renderer, msg models.Message) models.NormalizedMessage {
	nm := models.NormalizedMessage{
		Text:            renderer.Render(msg.Text),
		Timestamp:       msg.Timestamp,
		ThreadTimestamp: msg.ThreadTimestamp,
		ReplyCount:      msg.ReplyCount,
		Files:           slices.Clone(msg.Files),
	}
	if id, ok := renderer.Resolver().AuthorReference(msg.User); ok {
		nm.User = &id
	}
	return nm
}
