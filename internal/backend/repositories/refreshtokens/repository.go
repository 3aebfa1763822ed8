// Package refreshtokens provides storage for refresh tokens issued on sign-in.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/socialclone/internal/models"
)

type Repository interface {
	Create(ctx context.Context, userID string, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	Delete(ctx context.Context, token string) error
}
