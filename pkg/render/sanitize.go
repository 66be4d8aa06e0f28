package render

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips everything from rendered HTML except the markup the
// renderer itself produces
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds the allow-list policy for rendered messages
func NewSanitizer() *Sanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements("p", "b", "i", "s")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^chat-link$`)).OnElements("span")

	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("tabindex").Matching(regexp.MustCompile(`^-1$`)).OnElements("a")
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.AllowAttrs("rel").Matching(regexp.MustCompile(`^noopener noreferrer$`)).OnElements("a")

	return &Sanitizer{policy: p}
}

// Sanitize returns html with disallowed elements and attributes removed
func (s *Sanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
