// Package ingestion loads the user and channel Directory that the rendering
// pipeline works from. Every source drops private channels.
package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/testsabirweb/slack_render/pkg/models"
)

// Source produces a Directory snapshot
type Source interface {
	Load(ctx context.Context) (*models.Directory, error)
}

// nodeNamespace seeds the internal node IDs derived from Slack IDs
var nodeNamespace = uuid.MustParse("0b8d6a55-2f6e-4b1f-8d8c-6a3c1f9e7d42")

// NodeID returns the stable internal ID for a Slack object of the given kind
// ("SlackUser", "SlackChannel")
func NodeID(kind, slackID string) string {
	return uuid.NewSHA1(nodeNamespace, []byte(kind+":"+slackID)).String()
}

// exportUser mirrors an entry of users.json
type exportUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RealName string `json:"real_name"`
	Deleted  bool   `json:"deleted"`
	Profile  struct {
		RealName    string `json:"real_name"`
		DisplayName string `json:"display_name"`
	} `json:"profile"`
}

func (u exportUser) toUser() models.User {
	realName := u.RealName
	if realName == "" {
		realName = u.Profile.RealName
	}
	return models.User{
		ID:          NodeID("SlackUser", u.ID),
		UserID:      u.ID,
		RealName:    realName,
		DisplayName: u.Profile.DisplayName,
	}
}

// LoadUsers reads a Slack export users.json file
func LoadUsers(path string) ([]models.User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}

	var raw []exportUser
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse users file %s: %w", path, err)
	}

	users := make([]models.User, 0, len(raw))
	for _, u := range raw {
		if u.ID == "" {
			continue
		}
		users = append(users, u.toUser())
	}
	return users, nil
}
