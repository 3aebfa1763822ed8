// Package profiles persists the profile rows of the record store.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/socialclone/internal/models"
)

type Repository interface {
	Insert(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	Update(ctx context.Context, id string, update models.ProfileUpdate) (*models.Profile, error)
}
