package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/custodian/internal/dbx"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/accessevents"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/accesslog"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/cases"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/documents"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/sharecodes"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same repository either on the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Cases(db dbx.DBTX) cases.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	AccessLog(db dbx.DBTX) accesslog.Repository
	ShareCodes(db dbx.DBTX) sharecodes.Repository
	Documents(db dbx.DBTX) documents.Repository
	AccessEvents(db dbx.DBTX) accessevents.Repository
}
