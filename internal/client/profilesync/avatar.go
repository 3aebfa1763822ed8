package profilesync

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/dmitrijs2005/socialclone/internal/models"
)

// ObjectKey derives the storage key for a user upload: "<user>/<unix ms>-<name>".
func ObjectKey(userID string, at time.Time, fileName string) string {
	return fmt.Sprintf("%s/%d-%s", userID, at.UnixMilli(), path.Base(strings.ReplaceAll(fileName, `\`, "/")))
}

// UploadAvatar stores the image, resolves its public address and writes it
// onto the profile. The local avatar changes only after the profile update
// succeeds. Returns the new address.
func (p *ProfileSync) UploadAvatar(ctx context.Context, fileName string, body io.Reader, size int64, contentType string) (string, error) {
	userID, err := p.profileID()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(fileName) == "" {
		return "", common.ErrorValidation
	}

	end, err := p.begin(opAvatar)
	if err != nil {
		return "", err
	}
	defer end()

	key := ObjectKey(userID, p.now(), fileName)

	if err := p.objects.Upload(ctx, p.bucket, key, body, size, contentType); err != nil {
		p.logger.Error(ctx, "avatar upload failed", "key", key, "err", err)
		return "", err
	}

	url, err := p.objects.PublicURL(ctx, p.bucket, key)
	if err != nil {
		p.logger.Error(ctx, "resolving avatar address failed", "key", key, "err", err)
		return "", err
	}

	updated, err := p.records.UpdateProfile(ctx, userID, models.ProfileUpdate{AvatarURL: &url})
	if err != nil {
		p.logger.Error(ctx, "saving avatar address failed", "key", key, "err", err)
		return "", err
	}

	confirmed := url
	if updated != nil && updated.AvatarURL != nil {
		confirmed = *updated.AvatarURL
	}

	p.mu.Lock()
	if p.state.Profile != nil && p.state.Profile.ID == userID {
		p.state.Profile.AvatarURL = &confirmed
	}
	p.mu.Unlock()

	p.logger.Info(ctx, "avatar updated", "key", key)
	return confirmed, nil
}
