// Package models defines the domain types for Mannaz.
package models

// Post is the sole persistent entity: one blog entry.
// A post is created invisible and becomes visible only after every
// requested media write has completed.
type Post struct {
	ID        int64  `json:"id"`
	Author    string `json:"author"`
	Date      string `json:"date"` // fixed YYYY-MM-DD shape, stored as text
	HasImage  bool   `json:"has_image"`
	HasAvatar bool   `json:"has_avatar"`
	Content   string `json:"content"`
	Visible   bool   `json:"visible"`
}

// Submission is the ephemeral input bundle for one post attempt.
// It is never persisted as-is.
type Submission struct {
	Author    string
	AvatarURL string // empty means no avatar requested
	Date      string
	Image     []byte // empty means no image supplied
	ImageType string // declared MIME type of Image
	Text      string
}
