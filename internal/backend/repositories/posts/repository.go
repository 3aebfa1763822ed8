// Package posts persists content records owned by profiles.
package posts

import (
	"context"

	"github.com/dmitrijs2005/socialclone/internal/models"
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) error
	// ListByUser returns userID's posts, newest first.
	ListByUser(ctx context.Context, userID string) ([]*models.Post, error)
}
