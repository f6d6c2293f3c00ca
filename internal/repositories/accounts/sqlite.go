package accounts

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/bankclients/internal/dbx"
	"github.com/dmitrijs2005/bankclients/internal/models"
)

// SQLiteRepository implements Repository over a dbx.DBTX for SQLite.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, account *models.Account) (int64, error) {
	query := `insert into accounts (client_id, number, balance) values (?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, account.ClientID, account.Number, account.Balance)
	if err != nil {
		return 0, fmt.Errorf("failed to insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	account.ID = id
	return rowsAffected(res, nil)
}

func (r *SQLiteRepository) Update(ctx context.Context, account *models.Account) (int64, error) {
	query := `update accounts set number=?, balance=? where id=? and client_id=?`

	res, err := r.db.ExecContext(ctx, query, account.Number, account.Balance, account.ID, account.ClientID)
	return rowsAffected(res, err)
}

func (r *SQLiteRepository) SelectByClient(ctx context.Context, clientID int64) ([]*models.Account, error) {
	query := `select id, client_id, number, balance from accounts where client_id=? order by id`

	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to select accounts: %w", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}

func (r *SQLiteRepository) DeleteByClient(ctx context.Context, clientID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `delete from accounts where client_id=?`, clientID)
	return rowsAffected(res, err)
}
