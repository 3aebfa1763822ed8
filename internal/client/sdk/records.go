package sdk

import (
	"context"

	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/dmitrijs2005/socialclone/internal/models"
	"github.com/dmitrijs2005/socialclone/internal/wire"
)

func (c *Client) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	if err := c.loadSession(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.GetProfile(ctx, &wire.GetProfileRequest{ID: id})
	if err != nil {
		return nil, mapError(err)
	}
	if resp.Profile == nil {
		return nil, common.ErrorNotFound
	}
	return resp.Profile, nil
}

// ListPosts returns the user's posts, newest first.
func (c *Client) ListPosts(ctx context.Context, userID string) ([]*models.Post, error) {
	if err := c.loadSession(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.ListPosts(ctx, &wire.ListPostsRequest{UserID: userID})
	if err != nil {
		return nil, mapError(err)
	}
	if resp.Posts == nil {
		return []*models.Post{}, nil
	}
	return resp.Posts, nil
}

// InsertProfile creates the profile row. Right after SignUp the pending
// sign-up token for p.ID is used (and consumed); otherwise the session token.
func (c *Client) InsertProfile(ctx context.Context, p *models.Profile) error {
	if err := c.loadSession(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	token, pending := c.signupTokens[p.ID]
	delete(c.signupTokens, p.ID)
	c.mu.Unlock()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	if pending {
		ctx = withTokenOverride(ctx, token)
	}

	_, err := c.api.InsertProfile(ctx, &wire.InsertProfileRequest{Profile: &models.Profile{
		ID:       p.ID,
		Email:    p.Email,
		Username: p.Username,
	}})
	return mapError(err)
}

// UpdateProfile changes avatar and/or bio and returns the stored row.
func (c *Client) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.Profile, error) {
	if err := c.loadSession(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.UpdateProfile(ctx, &wire.UpdateProfileRequest{ID: id, Update: update})
	if err != nil {
		return nil, mapError(err)
	}
	if resp.Profile == nil {
		return nil, common.ErrorNotFound
	}
	return resp.Profile, nil
}

func (c *Client) CreatePost(ctx context.Context, imageURL, caption *string) (*models.Post, error) {
	if err := c.loadSession(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.CreatePost(ctx, &wire.CreatePostRequest{ImageURL: imageURL, Caption: caption})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Post, nil
}
