package profilesync

import "github.com/dmitrijs2005/socialclone/internal/models"

// Status is where the page is in its session lifecycle.
type Status int

const (
	StatusUnmounted Status = iota
	StatusUnauthenticated
	StatusLoading
	// StatusLoaded means a profile record is present.
	StatusLoaded
	// StatusEmpty means a session exists but its profile could not be loaded.
	StatusEmpty
)

func (s Status) String() string {
	switch s {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusEmpty:
		return "empty"
	}
	return "unmounted"
}

type AuthMode int

const (
	ModeSignIn AuthMode = iota
	ModeSignUp
)

func (m AuthMode) String() string {
	if m == ModeSignUp {
		return "sign-up"
	}
	return "sign-in"
}

type BioMode int

const (
	BioViewing BioMode = iota
	BioEditing
)

// Credentials are the popup form values.
type Credentials struct {
	Email    string
	Password string
	Username string
}

// State is a snapshot of the page. Profile and Posts are copies.
type State struct {
	Status    Status
	Loading   bool
	UserID    string
	Profile   *models.Profile
	Posts     []*models.Post
	BioMode   BioMode
	BioBuffer string
	PopupOpen bool
	AuthMode  AuthMode
	Form      Credentials
}

func (s State) clone() State {
	c := s
	c.Profile = s.Profile.Clone()
	if s.Posts != nil {
		c.Posts = make([]*models.Post, len(s.Posts))
		for i, p := range s.Posts {
			cp := *p
			c.Posts[i] = &cp
		}
	}
	return c
}
