package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/testsabirweb/slack_render/pkg/models"
)

func TestResolver_MentionMarkup(t *testing.T) {
	resolver := NewResolver(testUsers())

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "display name", token: "<@U123>", want: `<span class="chat-link">@sam</span>`},
		{name: "real name fallback", token: "<@U456>", want: `<span class="chat-link">@Alex Doe</span>`},
		{name: "unknown user", token: "<@U999>", want: ""},
		{name: "empty token", token: "<@>", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.MentionMarkup(tt.token))
		})
	}
}

func TestResolver_AuthorReference(t *testing.T) {
	resolver := NewResolver(testUsers())

	id, ok := resolver.AuthorReference("U123")
	assert.True(t, ok)
	assert.Equal(t, "user-1", id)

	id, ok = resolver.AuthorReference("U999")
	assert.False(t, ok)
	assert.Empty(t, id)

	_, ok = resolver.AuthorReference("")
	assert.False(t, ok, "messages without an author never resolve")
}

func TestResolver_FirstEntryWins(t *testing.T) {
	resolver := NewResolver([]models.User{
		{ID: "first", UserID: "U1", DisplayName: "one"},
		{ID: "second", UserID: "U1", DisplayName: "two"},
	})

	id, ok := resolver.AuthorReference("U1")
	assert.True(t, ok)
	assert.Equal(t, "first", id)
}
