package render

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Slack token patterns, applied in this order
var (
	// Emojis come in the form of :emoji:
	emojiPattern = regexp.MustCompile(`:\w*:`)
	// Users come as <@U024BE7LH>
	userPattern = regexp.MustCompile(`<@\w*>`)
	// Links come as <https://github.com> or <https://github.com|github.com>
	linkPattern = regexp.MustCompile(`(?i)<http[^>\n]*>`)
	// @channel broadcasts come as <!channel>
	broadcastPattern = regexp.MustCompile(`(?i)<!channel>`)
	// Channel references come as <#C024BE7LR|general>
	channelPattern = regexp.MustCompile(`<#\w*\|\w*>`)

	angleBrackets = regexp.MustCompile(`[<>]`)
)

const anchorFormat = `<a href="%s" tabindex="-1" target="_blank" rel="noopener noreferrer">%s</a>`

// Translator turns Slack tokens in raw message text into HTML fragments
type Translator struct {
	resolver *Resolver
	emoji    EmojiLookup

	// escapeBroadcast entity-escapes the <!channel> text kept inside the
	// broadcast span, so it survives HTML sanitizing
	escapeBroadcast bool
}

// NewTranslator creates a translator. A nil emoji lookup uses
// DefaultEmojiTable.
func NewTranslator(resolver *Resolver, emoji EmojiLookup) *Translator {
	if resolver == nil {
		resolver = NewResolver(nil)
	}
	if emoji == nil {
		emoji = DefaultEmojiTable()
	}
	return &Translator{resolver: resolver, emoji: emoji}
}

// Translate runs the substitution passes over text. Text that matches none of
// the token patterns is returned untouched.
func (t *Translator) Translate(text string) string {
	text = emojiPattern.ReplaceAllStringFunc(text, t.replaceEmoji)
	// Anything still shaped like a shortcode is a custom emoji with no
	// unicode glyph, so it is removed.
	text = emojiPattern.ReplaceAllLiteralString(text, "")
	text = userPattern.ReplaceAllStringFunc(text, t.resolver.MentionMarkup)
	text = linkPattern.ReplaceAllStringFunc(text, replaceLink)
	text = broadcastPattern.ReplaceAllStringFunc(text, t.replaceBroadcast)
	text = channelPattern.ReplaceAllStringFunc(text, replaceChannelReference)
	return text
}

func (t *Translator) replaceEmoji(shortcode string) string {
	if glyph, ok := t.emoji.Lookup(strings.Trim(shortcode, ":")); ok {
		return glyph
	}
	return shortcode
}

// replaceLink renders <url|label> as an anchor opening in a new tab. Without
// a label the URL itself is shown.
func replaceLink(token string) string {
	href, label, found := strings.Cut(angleBrackets.ReplaceAllLiteralString(token, ""), "|")
	if !found || label == "" {
		label = href
	}
	return fmt.Sprintf(anchorFormat, href, label)
}

func (t *Translator) replaceBroadcast(token string) string {
	if t.escapeBroadcast {
		token = html.EscapeString(token)
	}
	return `<span class="chat-link">` + token + `</span>`
}

// replaceChannelReference renders <#C024BE7LR|general> as #general
func replaceChannelReference(token string) string {
	_, name, _ := strings.Cut(angleBrackets.ReplaceAllLiteralString(token, ""), "|")
	return `<span class="chat-link">#` + name + `</span>`
}
