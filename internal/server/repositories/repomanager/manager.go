package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/osmnotes/internal/dbx"
	"github.com/dmitrijs2005/osmnotes/internal/server/repositories/data"
	"github.com/dmitrijs2005/osmnotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/osmnotes/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DB handle or an open
// transaction, so services can group writes with dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Notes(db dbx.DBTX) notes.Repository
	Data(db dbx.DBTX) data.Repository
}
