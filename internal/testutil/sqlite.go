// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/bankclients/internal/repositories/repomanager"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// NewSQLiteDB opens a fresh SQLite database in t.TempDir() and applies the
// migrations. The database is closed on cleanup.
func NewSQLiteDB(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "bank.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := repomanager.NewSQLiteRepositoryManager()
	require.NoError(t, rm.RunMigrations(context.Background(), db))

	return db, rm
}

// Seed inserts a client and its accounts directly, bypassing any unit of
// work, and returns the client id.
func Seed(t *testing.T, db *sql.DB, name string, numbers ...string) int64 {
	t.Helper()

	res, err := db.Exec(`insert into clients (name, created_at) values (?, '2024-01-02T03:04:05Z')`, name)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)

	for i, n := range numbers {
		_, err := db.Exec(`insert into accounts (client_id, number, balance) values (?, ?, ?)`, id, n, int64(i+1)*100)
		require.NoError(t, err)
	}
	return id
}
