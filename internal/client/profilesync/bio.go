package profilesync

import (
	"context"

	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/dmitrijs2005/socialclone/internal/models"
)

// EditBio enters editing mode with the buffer seeded from the persisted bio.
func (p *ProfileSync) EditBio() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mounted || p.state.Profile == nil {
		return common.ErrorNoProfile
	}
	p.state.BioMode = BioEditing
	p.state.BioBuffer = p.state.Profile.BioText()
	return nil
}

// SetBioBuffer replaces the unsaved bio text. Only valid while editing.
func (p *ProfileSync) SetBioBuffer(text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.BioMode != BioEditing {
		return common.ErrorValidation
	}
	p.state.BioBuffer = text
	return nil
}

// CancelBio drops unsaved changes without a remote call.
func (p *ProfileSync) CancelBio() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.BioMode = BioViewing
	p.state.BioBuffer = p.state.Profile.BioText()
}

// SaveBio persists the buffer. On failure the page stays in editing mode
// with the attempted text kept for a retry.
func (p *ProfileSync) SaveBio(ctx context.Context) error {
	p.mu.Lock()
	if !p.mounted || p.state.Profile == nil {
		p.mu.Unlock()
		return common.ErrorNoProfile
	}
	if p.state.BioMode != BioEditing {
		p.mu.Unlock()
		return common.ErrorValidation
	}
	userID := p.state.Profile.ID
	text := p.state.BioBuffer
	p.mu.Unlock()

	end, err := p.begin(opBio)
	if err != nil {
		return err
	}
	defer end()

	updated, err := p.records.UpdateProfile(ctx, userID, models.ProfileUpdate{Bio: &text})
	if err != nil {
		p.logger.Error(ctx, "saving bio failed", "user_id", userID, "err", err)
		return err
	}

	confirmed := text
	if updated != nil && updated.Bio != nil {
		confirmed = *updated.Bio
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Profile == nil || p.state.Profile.ID != userID {
		return nil
	}
	p.state.Profile.Bio = &confirmed
	p.state.BioBuffer = confirmed
	p.state.BioMode = BioViewing
	return nil
}
