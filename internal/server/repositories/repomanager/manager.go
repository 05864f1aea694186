package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/noxus/internal/dbx"
	"github.com/dmitrijs2005/noxus/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/noxus/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/noxus/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so one service call
// can use them inside a single transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Profiles(db dbx.DBTX) profiles.Repository
}
