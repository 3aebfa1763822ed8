// Package identities stores the accounts known to the identity provider.
package identities

import (
	"context"

	"github.com/dmitrijs2005/socialclone/internal/models"
)

type Repository interface {
	Create(ctx context.Context, identity *models.Identity) (*models.Identity, error)
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	GetByID(ctx context.Context, id string) (*models.Identity, error)
}
