package render

import (
	"regexp"

	"github.com/testsabirweb/slack_render/pkg/models"
)

// mentionDelimiters are stripped from a <@U123> token to get the user ID
var mentionDelimiters = regexp.MustCompile(`[@<>]`)

// Resolver looks up directory users by their Slack user ID
type Resolver struct {
	users map[string]models.User
}

// NewResolver indexes users by Slack user ID. When the same ID appears more
// than once the first entry wins, matching a linear scan of the list.
func NewResolver(users []models.User) *Resolver {
	index := make(map[string]models.User, len(users))
	for _, u := range users {
		if u.UserID == "" {
			continue
		}
		if _, exists := index[u.UserID]; !exists {
			index[u.UserID] = u
		}
	}
	return &Resolver{users: index}
}

// Lookup returns the user with the given Slack user ID
func (r *Resolver) Lookup(userID string) (models.User, bool) {
	u, ok := r.users[userID]
	return u, ok
}

// MentionMarkup renders a <@U123> token as a chat-link span holding the
// user's display name. Unknown users render as the empty string.
func (r *Resolver) MentionMarkup(token string) string {
	user, ok := r.Lookup(mentionDelimiters.ReplaceAllString(token, ""))
	if !ok {
		return ""
	}
	return `<span class="chat-link">@` + user.Name() + `</span>`
}

// AuthorReference returns the internal ID of the user with the given Slack
// user ID. The second result is false when the user is not in the directory.
func (r *Resolver) AuthorReference(userID string) (string, bool) {
	user, ok := r.Lookup(userID)
	if !ok {
		return "", false
	}
	return user.ID, true
}
