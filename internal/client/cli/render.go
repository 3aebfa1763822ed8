package cli

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/socialclone/internal/client/profilesync"
)

const timeLayout = "2006-01-02 15:04"

func renderProfile(st profilesync.State) string {
	switch st.Status {
	case profilesync.StatusUnauthenticated, profilesync.StatusUnmounted:
		return "not signed in"
	case profilesync.StatusLoading:
		return "loading..."
	case profilesync.StatusEmpty:
		return "no profile"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <%s>\n", st.Profile.Username, st.Profile.Email)
	b.WriteString(renderAvatar(st) + "\n")
	b.WriteString(renderBio(st))
	return b.String()
}

func renderAvatar(st profilesync.State) string {
	if st.Profile == nil {
		return "no profile"
	}
	if st.Profile.AvatarURL == nil {
		return "avatar: none"
	}
	return "avatar: " + *st.Profile.AvatarURL
}

func renderBio(st profilesync.State) string {
	if st.Profile == nil {
		return "no profile"
	}
	if st.BioMode == profilesync.BioEditing {
		return "bio (editing): " + st.BioBuffer
	}
	if bio := st.Profile.BioText(); bio != "" {
		return "bio: " + bio
	}
	return "no bio yet"
}

func renderPosts(st profilesync.State) string {
	if st.Profile == nil {
		return renderProfile(st)
	}
	if len(st.Posts) == 0 {
		return "no posts yet"
	}

	var b strings.Builder
	for i, p := range st.Posts {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p.CreatedAt.Format(timeLayout))
		if p.Caption != nil {
			b.WriteString("  " + *p.Caption)
		}
		if p.ImageURL != nil {
			b.WriteString("  " + *p.ImageURL)
		}
	}
	return b.String()
}

// renderPopup reports where the sign-in/sign-up form ended up.
func renderPopup(st profilesync.State) string {
	if st.PopupOpen {
		return st.AuthMode.String() + " form still open"
	}
	if st.AuthMode == profilesync.ModeSignUp {
		return "account created, sign in to continue"
	}
	return renderProfile(st)
}
