package render

import (
	"sync"

	"github.com/yuin/goldmark-emoji/definition"
)

// EmojiLookup maps an emoji shortcode (without the surrounding colons) to its
// glyph
type EmojiLookup interface {
	Lookup(shortcode string) (string, bool)
}

// EmojiTable is an EmojiLookup backed by a goldmark-emoji definition set
type EmojiTable struct {
	emojis definition.Emojis
}

// NewEmojiTable wraps an emoji definition set
func NewEmojiTable(emojis definition.Emojis) *EmojiTable {
	return &EmojiTable{emojis: emojis}
}

// DefaultEmojiTable returns the shared table of GitHub/Slack shortcodes. It is
// built once per process.
var DefaultEmojiTable = sync.OnceValue(func() *EmojiTable {
	return NewEmojiTable(definition.Github())
})

// Lookup implements EmojiLookup. Shortcodes without a unicode glyph (custom
// images such as :octocat:) are reported as unknown.
func (t *EmojiTable) Lookup(shortcode string) (string, bool) {
	emoji, ok := t.emojis.Get(shortcode)
	if !ok || emoji == nil || len(emoji.Unicode) == 0 {
		return "", false
	}
	return string(emoji.Unicode), true
}

// EmojiMap is an EmojiLookup over a plain map, handy for custom workspaces
type EmojiMap map[string]string

// Lookup implements EmojiLookup
func (m EmojiMap) Lookup(shortcode string) (string, bool) {
	glyph, ok := m[shortcode]
	return glyph, ok
}
