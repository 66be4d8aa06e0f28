// Package render turns raw Slack message text into HTML fragments.
//
// Rendering happens in three stages: Slack tokens (emoji, mentions, links,
// broadcasts, channel references) are translated to HTML, inline markers are
// resolved, and each line is wrapped in a paragraph. Renderers only read from
// the user directory they were built with and are safe for concurrent use.
package render

import "github.com/testsabirweb/slack_render/pkg/models"

// Renderer renders message text for a fixed user directory
type Renderer struct {
	resolver   *Resolver
	translator *Translator
	sanitizer  *Sanitizer
	emoji      EmojiLookup
}

// Option configures a Renderer
type Option func(*Renderer)

// WithEmojiLookup replaces the default shortcode table
func WithEmojiLookup(lookup EmojiLookup) Option {
	return func(r *Renderer) {
		r.emoji = lookup
	}
}

// WithSanitizer runs the rendered HTML through s as a last step
func WithSanitizer(s *Sanitizer) Option {
	return func(r *Renderer) {
		r.sanitizer = s
	}
}

// NewRenderer creates a renderer that resolves mentions against users
func NewRenderer(users []models.User, opts ...Option) *Renderer {
	r := &Renderer{resolver: NewResolver(users)}
	for _, opt := range opts {
		opt(r)
	}
	r.translator = NewTranslator(r.resolver, r.emoji)
	r.translator.escapeBroadcast = r.sanitizer != nil
	return r
}

// Resolver returns the user resolver backing this renderer
func (r *Renderer) Resolver() *Resolver {
	return r.resolver
}

// Render converts raw message text to HTML
func (r *Renderer) Render(text string) string {
	html := Format(r.translator.Translate(text))
	if r.sanitizer != nil {
		html = r.sanitizer.Sanitize(html)
	}
	return html
}
