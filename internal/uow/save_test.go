package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/bankclients/internal/common"
	"github.com/dmitrijs2005/bankclients/internal/logging"
	"github.com/dmitrijs2005/bankclients/internal/metrics"
	"github.com/dmitrijs2005/bankclients/internal/models"
	"github.com/dmitrijs2005/bankclients/internal/repositories/repomanager"
	"github.com/dmitrijs2005/bankclients/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteSession(t *testing.T) (*Session, func(query string, args ...any) int) {
	t.Helper()
	db, rm := testutil.NewSQLiteDB(t)
	s := NewSession(db, rm, logging.Discard(), metrics.NewCollector())

	count := func(query string, args ...any) int {
		t.Helper()
		var n int
		require.NoError(t, db.QueryRow(query, args...).Scan(&n))
		return n
	}
	return s, count
}

func TestSaveChanges_NothingPending(t *testing.T) {
	s, _ := newSQLiteSession(t)
	require.NoError(t, s.Attach(&models.Client{ID: 1}))

	n, err := s.SaveChanges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSaveChanges_InsertsAddedWithAccounts(t *testing.T) {
	s, count := newSQLiteSession(t)
	ctx := context.Background()

	c := &models.Client{
		Name: "alice",
		Accounts: []*models.Account{
			{Number: "LV-1", Balance: 100},
			{Number: "LV-2", Balance: 200},
		},
	}
	require.NoError(t, s.Add(c))

	n, err := s.SaveChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	require.Positive(t, c.ID)
	for _, a := range c.Accounts {
		assert.Positive(t, a.ID)
		assert.Equal(t, c.ID, a.ClientID)
	}

	assert.Equal(t, Unchanged, s.State(c))
	e, ok := s.Lookup(c.ID)
	require.True(t, ok, "inserted client must enter the identity map")
	assert.Same(t, c, e.Client)

	assert.Equal(t, 1, count(`select count(*) from clients`))
	assert.Equal(t, 2, count(`select count(*) from accounts where client_id=?`, c.ID))
}

func TestSaveChanges_UpdatesModifiedAndUpsertsAccounts(t *testing.T) {
	s, count := newSQLiteSession(t)
	ctx := context.Background()

	got, err := s.Clients().SelectWithAccounts(ctx)
	require.NoError(t, err)
	require.Empty(t, got)

	c := &models.Client{Name: "bob", Accounts: []*models.Account{{Number: "LV-1"}}}
	require.NoError(t, s.Add(c))
	_, err = s.SaveChanges(ctx)
	require.NoError(t, err)

	c.Name = "robert"
	c.Accounts[0].Balance = 42
	c.Accounts = append(c.Accounts, &models.Account{Number: "LV-9"})
	require.NoError(t, s.SetState(c, Modified))

	n, err := s.SaveChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n, "client update + account update + account insert")

	loaded, err := s.Clients().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "robert", loaded.Name)

	accs, err := s.Accounts().SelectByClient(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, accs, 2)
	assert.Equal(t, int64(42), accs[0].Balance)
	assert.Equal(t, 2, count(`select count(*) from accounts`))
}

func TestSaveChanges_DeletesClientAndAccounts(t *testing.T) {
	s, count := newSQLiteSession(t)
	ctx := context.Background()

	c := &models.Client{Name: "carol", Accounts: []*models.Account{{Number: "LV-1"}}}
	require.NoError(t, s.Add(c))
	_, err := s.SaveChanges(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Remove(c))
	n, err := s.SaveChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assert.Equal(t, Detached, s.State(c))
	assert.Equal(t, 0, count(`select count(*) from clients`))
	assert.Equal(t, 0, count(`select count(*) from accounts`))
}

func TestSaveChanges_ModifiedMissingRowRollsBack(t *testing.T) {
	s, count := newSQLiteSession(t)
	ctx := context.Background()

	added := &models.Client{Name: "dave", Accounts: []*models.Account{{Number: "LV-1"}}}
	ghost := &models.Client{ID: 999, Name: "ghost"}
	require.NoError(t, s.Add(added))
	require.NoError(t, s.SetState(ghost, Modified))

	_, err := s.SaveChanges(ctx)
	var ue *UpdateError
	require.ErrorAs(t, err, &ue)
	require.ErrorIs(t, err, common.ErrNotFound)

	assert.Equal(t, 0, count(`select count(*) from clients`), "transaction must roll back")
	assert.Equal(t, int64(0), added.ID, "assigned identity must be restored")
	assert.Equal(t, int64(0), added.Accounts[0].ID)
	assert.True(t, added.CreatedAt.IsZero())
	assert.Equal(t, Added, s.State(added))
	assert.Equal(t, Modified, s.State(ghost))
}

func TestSaveChanges_DuplicateAccountNumberFails(t *testing.T) {
	s, count := newSQLiteSession(t)
	ctx := context.Background()

	c := &models.Client{Name: "eve", Accounts: []*models.Account{{Number: "LV-1"}, {Number: "LV-1"}}}
	require.NoError(t, s.Add(c))

	_, err := s.SaveChanges(ctx)
	var ue *UpdateError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, 0, count(`select count(*) from accounts`))
}

func TestSaveChanges_BeginFailureIsUpdateError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	s := NewSession(db, repomanager.NewPostgresRepositoryManager(), logging.Discard(), nil)
	require.NoError(t, s.Add(&models.Client{Name: "frank"}))

	n, err := s.SaveChanges(context.Background())
	assert.Equal(t, int64(0), n)
	var ue *UpdateError
	require.ErrorAs(t, err, &ue)
	assert.ErrorContains(t, err, "connection refused")
	require.NoError(t, mock.ExpectationsWereMet())
}
