package profilesync

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/dmitrijs2005/socialclone/internal/models"
)

func (p *ProfileSync) OpenPopup() {
	p.mu.Lock()
	p.state.PopupOpen = true
	p.mu.Unlock()
}

func (p *ProfileSync) ClosePopup() {
	p.mu.Lock()
	p.state.PopupOpen = false
	p.mu.Unlock()
}

func (p *ProfileSync) SetAuthMode(m AuthMode) {
	p.mu.Lock()
	p.state.AuthMode = m
	p.mu.Unlock()
}

func (p *ProfileSync) ToggleAuthMode() {
	p.mu.Lock()
	if p.state.AuthMode == ModeSignIn {
		p.state.AuthMode = ModeSignUp
	} else {
		p.state.AuthMode = ModeSignIn
	}
	p.mu.Unlock()
}

func (p *ProfileSync) SetCredentials(c Credentials) {
	p.mu.Lock()
	p.state.Form = c
	p.mu.Unlock()
}

// Submit sends the popup form in its current mode.
//
// Sign-in closes the popup on success; the session change that follows
// loads the profile. On failure the popup stays open with the form intact.
//
// Sign-up registers the identity and then inserts its profile row. Nothing
// is inserted when registration fails. Once an identity id comes back the
// popup closes even if the insert fails; the insert error is still returned.
func (p *ProfileSync) Submit(ctx context.Context) error {
	end, err := p.begin(opAuth)
	if err != nil {
		return err
	}
	defer end()

	p.mu.Lock()
	mode := p.state.AuthMode
	form := p.state.Form
	p.mu.Unlock()

	if mode == ModeSignUp {
		return p.signUp(ctx, form)
	}
	return p.signIn(ctx, form)
}

func (p *ProfileSync) signIn(ctx context.Context, form Credentials) error {
	if _, err := p.identity.SignIn(ctx, form.Email, form.Password); err != nil {
		p.logger.Error(ctx, "sign-in failed", "err", err)
		return err
	}

	p.mu.Lock()
	p.state.PopupOpen = false
	p.state.Form.Password = ""
	p.mu.Unlock()
	return nil
}

func (p *ProfileSync) signUp(ctx context.Context, form Credentials) error {
	email := strings.TrimSpace(form.Email)
	username := strings.TrimSpace(form.Username)
	if email == "" || form.Password == "" || username == "" {
		p.logger.Error(ctx, "sign-up rejected", "err", common.ErrorValidation)
		return common.ErrorValidation
	}

	userID, err := p.identity.SignUp(ctx, email, form.Password)
	if err != nil {
		p.logger.Error(ctx, "sign-up failed", "err", err)
		return err
	}
	if userID == "" {
		p.logger.Error(ctx, "sign-up returned no identity")
		return common.ErrorInternal
	}

	insertErr := p.records.InsertProfile(ctx, &models.Profile{ID: userID, Email: email, Username: username})
	if insertErr != nil {
		p.logger.Error(ctx, "creating profile failed", "user_id", userID, "err", insertErr)
	}

	p.mu.Lock()
	p.state.PopupOpen = false
	p.state.Form.Password = ""
	p.mu.Unlock()
	return insertErr
}

// SignOut ends the session. The session change clears the page.
func (p *ProfileSync) SignOut(ctx context.Context) error {
	if err := p.identity.SignOut(ctx); err != nil {
		p.logger.Error(ctx, "sign-out failed", "err", err)
		return err
	}
	return nil
}
