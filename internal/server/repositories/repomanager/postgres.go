// Package repomanager provides a PostgreSQL RepositoryManager and runs the
// embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/custodian/internal/dbx"
	"github.com/dmitrijs2005/custodian/internal/server/migrations"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/accessevents"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/accesslog"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/cases"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/documents"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/sharecodes"
)

// DriverName is the database/sql driver registered by pgx's stdlib package.
const DriverName = "pgx"

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Cases(db dbx.DBTX) cases.Repository {
	return cases.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Credentials(db dbx.DBTX) credentials.Repository {
	return credentials.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) AccessLog(db dbx.DBTX) accesslog.Repository {
	return accesslog.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) ShareCodes(db dbx.DBTX) sharecodes.Repository {
	return sharecodes.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Documents(db dbx.DBTX) documents.Repository {
	return documents.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) AccessEvents(db dbx.DBTX) accessevents.Repository {
	return accessevents.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(DriverName); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
