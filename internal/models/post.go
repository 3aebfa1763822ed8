package models

import "time"

// Post is a content record owned by a profile. Listed newest first.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ImageURL  *string   `json:"image_url,omitempty"`
	Caption   *string   `json:"caption,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
