package models

// User represents a workspace member taken from the Slack export
type User struct {
	ID          string `json:"id"`      // internal node ID
	UserID      string `json:"user_id"` // Slack user ID (U...)
	RealName    string `json:"real_name"`
	DisplayName string `json:"display_name"`
}

// Name returns the name shown for mentions: the display name, or the real
// name when no display name is set
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.RealName
}

// File represents a file attached to a message. It is passed through unchanged.
type File struct {
	Title     string `json:"title"`
	Filetype  string `json:"filetype"`
	Thumb360  string `json:"thumb_360,omitempty"`
	Thumb360W int    `json:"thumb_360_w,omitempty"`
	Thumb360H int    `json:"thumb_360_h,omitempty"`
}

// Message represents a raw message as it appears in the Slack export
type Message struct {
	Text            string `json:"text"`
	User            string `json:"user,omitempty"` // Slack user ID of the author
	Timestamp       string `json:"ts"`
	ThreadTimestamp string `json:"thread_ts,omitempty"`
	ReplyCount      int    `json:"reply_count,omitempty"`
	Files           []File `json:"files,omitempty"`
}

// Channel represents a public channel and its messages in chronological order
type Channel struct {
	ID        string    `json:"id"`         // internal node ID
	ChannelID string    `json:"channel_id"` // Slack channel ID (C...)
	Name      string    `json:"name,omitempty"`
	Messages  []Message `json:"messages"`
}

// Directory is the read-only snapshot of users and public channels that the
// rendering pipeline works from
type Directory struct {
	Users    []User    `json:"users"`
	Channels []Channel `json:"channels"`
}

// MessageCount returns the total number of messages across all channels
func (d *Directory) MessageCount() int {
	total := 0
	for _, ch := range d.Channels {
		total += len(ch.Messages)
	}
	return total
}

// NormalizedMessage is a Message whose text has been rendered to HTML and
// whose author has been resolved to an internal user reference
type NormalizedMessage struct {
	Text            string  `json:"text"`
	User            *string `json:"user,omitempty"` // internal user ID, nil when unresolved
	Timestamp       string  `json:"ts"`
	ThreadTimestamp string  `json:"thread_ts,omitempty"`
	ReplyCount      int     `json:"reply_count,omitempty"`
	Files           []File  `json:"files,omitempty"`
}
