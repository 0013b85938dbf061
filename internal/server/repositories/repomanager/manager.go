package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/clientreview/internal/dbx"
	"github.com/dmitrijs2005/clientreview/internal/server/repositories/businesses"
	"github.com/dmitrijs2005/clientreview/internal/server/repositories/reviews"
	"github.com/dmitrijs2005/clientreview/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/clientreview/internal/server/repositories/tags"
	"github.com/dmitrijs2005/clientreview/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Businesses(db dbx.DBTX) businesses.Repository
	Tags(db dbx.DBTX) tags.Repository
	Reviews(db dbx.DBTX) reviews.Repository
	RevokedTokens(db dbx.DBTX) revokedtokens.Repository
}
