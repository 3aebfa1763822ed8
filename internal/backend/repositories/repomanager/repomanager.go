package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/socialclone/internal/backend/repositories/identities"
	"github.com/dmitrijs2005/socialclone/internal/backend/repositories/posts"
	"github.com/dmitrijs2005/socialclone/internal/backend/repositories/profiles"
	"github.com/dmitrijs2005/socialclone/internal/backend/repositories/refreshtokens"
	"github.com/dmitrijs2005/socialclone/internal/dbx"
)

// RepositoryManager vends repositories bound to a DBTX so that services can
// use the same calls inside and outside of transactions.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Identities(db dbx.DBTX) identities.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Posts(db dbx.DBTX) posts.Repository
}
