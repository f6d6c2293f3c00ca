package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/bankclients/internal/dbx"
	"github.com/dmitrijs2005/bankclients/internal/repositories/accounts"
	"github.com/dmitrijs2005/bankclients/internal/repositories/clients"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Clients(db dbx.DBTX) clients.Repository
	Accounts(db dbx.DBTX) accounts.Repository
}

// New returns the RepositoryManager for a database/sql driver name.
func New(driver string) (RepositoryManager, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgresRepositoryManager(), nil
	case DriverSQLite:
		return NewSQLiteRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}
