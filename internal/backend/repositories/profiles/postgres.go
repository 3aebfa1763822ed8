package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/dmitrijs2005/socialclone/internal/dbx"
	"github.com/dmitrijs2005/socialclone/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert creates the row {id, email, username}. A taken id or username
// yields common.ErrorAlreadyExists.
func (r *PostgresRepository) Insert(ctx context.Context, profile *models.Profile) error {
	query :=
		`INSERT INTO profiles (id, email, username)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, profile.ID, profile.Email, profile.Username).Scan(&profile.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query :=
		`SELECT id, email, username, avatar_url, bio, created_at FROM profiles
		 WHERE id = $1`

	return scanProfile(r.db.QueryRowContext(ctx, query, id))
}

// Update writes the non-nil fields of update onto profile id and returns the
// resulting row. An unknown id yields common.ErrorNotFound.
func (r *PostgresRepository) Update(ctx context.Context, id string, update models.ProfileUpdate) (*models.Profile, error) {
	query :=
		`UPDATE profiles
		 SET avatar_url = COALESCE($2, avatar_url),
		     bio = COALESCE($3, bio)
		 WHERE id = $1
		 RETURNING id, email, username, avatar_url, bio, created_at`

	return scanProfile(r.db.QueryRowContext(ctx, query, id, update.AvatarURL, update.Bio))
}

func scanProfile(row *sql.Row) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(&p.ID, &p.Email, &p.Username, &p.AvatarURL, &p.Bio, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}
