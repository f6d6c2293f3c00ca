package accounts

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/bankclients/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestInsert_AssignsID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+accounts\s*\(client_id,\s*number,\s*balance\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id\s*$`
	mock.ExpectQuery(q).
		WithArgs(int64(5), "LV-1", int64(250)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(77)))

	a := &models.Account{ClientID: 5, Number: "LV-1", Balance: 250}
	n, err := repo.Insert(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(77), a.ID)
}

func TestUpdate_ScopedToClient(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+accounts\s+SET\s+number\s*=\s*\$1,\s*balance\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$3\s+AND\s+client_id\s*=\s*\$4\s*$`
	mock.ExpectExec(q).
		WithArgs("LV-2", int64(10), int64(8), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.Update(context.Background(), &models.Account{ID: 8, ClientID: 5, Number: "LV-2", Balance: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSelectByClient(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "client_id", "number", "balance"}).
		AddRow(int64(1), int64(5), "LV-1", int64(1)).
		AddRow(int64(2), int64(5), "LV-2", int64(2))
	mock.ExpectQuery(`FROM\s+accounts\s+WHERE\s+client_id\s*=\s*\$1\s+ORDER\s+BY\s+id`).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	got, err := repo.SelectByClient(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "LV-2", got[1].Number)
}

func TestDeleteByClient_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+accounts`).WithArgs(int64(5)).WillReturnError(errors.New("locked"))

	_, err := repo.DeleteByClient(context.Background(), 5)
	require.ErrorContains(t, err, "db error: locked")
}
