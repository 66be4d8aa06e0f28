package render

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Inline markers. The marked text may not start or end with whitespace.
var (
	boldPattern   = regexp.MustCompile(`\*([^*\s](?:[^*\n]*[^*\s])?)\*`)
	italicPattern = regexp.MustCompile(`_([^_\s](?:[^_\n]*[^_\s])?)_`)
	strikePattern = regexp.MustCompile(`~([^~\s](?:[^~\n]*[^~\s])?)~`)

	// tagPattern finds markup produced by the Translator. Slack escapes
	// literal angle brackets as entities, so any remaining tag is markup.
	tagPattern = regexp.MustCompile(`<[^<>\n]*>`)
)

// tagPlaceholder stands in for a tag while inline markers are resolved
const tagPlaceholder = "\x1a"

// Format applies bold, then italic, then strike-through styling and wraps
// every line in a paragraph. The paragraphs are joined without a separator.
func Format(text string) string {
	styled := FormatInline(text)

	lines := strings.Split(styled, "\n")
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString("<p>")
		sb.WriteString(line)
		sb.WriteString("</p>")
	}
	return sb.String()
}

// FormatInline resolves *bold*, _italic_ and ~strike~ markers. Tags already
// present in text are left untouched, so attribute values such as
// target="_blank" are never restyled. The placeholder control character is
// dropped from the input.
func FormatInline(text string) string {
	text = strings.ReplaceAll(text, tagPlaceholder, "")
	shielded, tags := shieldTags(text)

	styled := strikeString(italicizeString(boldString(shielded)))

	return restoreTags(styled, tags)
}

func boldString(s string) string      { return wrapMarked(s, boldPattern, "b") }
func italicizeString(s string) string { return wrapMarked(s, italicPattern, "i") }
func strikeString(s string) string    { return wrapMarked(s, strikePattern, "s") }

// wrapMarked wraps every marker pair matched by pattern in tag. A pair only
// counts when it sits on a word boundary, so snake_case_names and 2*3*4 stay
// as they are.
func wrapMarked(s string, pattern *regexp.Regexp, tag string) string {
	matches := pattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if !boundaryBefore(s, start) || !boundaryAfter(s, end) {
			continue
		}
		sb.WriteString(s[last:start])
		sb.WriteString("<" + tag + ">")
		sb.WriteString(s[m[2]:m[3]])
		sb.WriteString("</" + tag + ">")
		last = end
	}
	sb.WriteString(s[last:])
	return sb.String()
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

// isWordRune excludes the marker characters themselves so that nested
// markers such as _*both*_ still resolve
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func shieldTags(s string) (string, []string) {
	var tags []string
	shielded := tagPattern.ReplaceAllStringFunc(s, func(tag string) string {
		tags = append(tags, tag)
		return tagPlaceholder
	})
	return shielded, tags
}

func restoreTags(s string, tags []string) string {
	if len(tags) == 0 {
		return s
	}

	var sb strings.Builder
	for _, tag := range tags {
		idx := strings.Index(s, tagPlaceholder)
		if idx < 0 {
			break
		}
		sb.WriteString(s[:idx])
		sb.WriteString(tag)
		s = s[idx+len(tagPlaceholder):]
	}
	sb.WriteString(s)
	return sb.String()
}
