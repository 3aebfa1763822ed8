// Package models defines the records shared by the backend and the client:
// identities and sessions issued by the identity provider, and the profile
// and post rows kept in the record store.
package models

import "time"

// Profile is the durable user record keyed by the identity id.
// AvatarURL and Bio are nil when never set.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BioText returns the biography or "" when absent.
func (p *Profile) BioText() string {
	if p == nil || p.Bio == nil {
		return ""
	}
	return *p.Bio
}

// Avatar returns the avatar address or "" when absent.
func (p *Profile) Avatar() string {
	if p == nil || p.AvatarURL == nil {
		return ""
	}
	return *p.AvatarURL
}

// Clone returns a deep copy so callers can hand out snapshots safely.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	if p.AvatarURL != nil {
		v := *p.AvatarURL
		c.AvatarURL = &v
	}
	if p.Bio != nil {
		v := *p.Bio
		c.Bio = &v
	}
	return &c
}

// ProfileUpdate carries the only two mutable profile columns. Nil fields are
// left untouched.
type ProfileUpdate struct {
	AvatarURL *string `json:"avatar_url,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.AvatarURL == nil && u.Bio == nil
}
