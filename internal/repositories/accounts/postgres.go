package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/bankclients/internal/dbx"
	"github.com/dmitrijs2005/bankclients/internal/models"
)

// PostgresRepository implements Repository over a dbx.DBTX for PostgreSQL.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, account *models.Account) (int64, error) {
	query :=
		`INSERT INTO accounts (client_id, number, balance)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, account.ClientID, account.Number, account.Balance).Scan(&account.ID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return 1, nil
}

func (r *PostgresRepository) Update(ctx context.Context, account *models.Account) (int64, error) {
	query :=
		`UPDATE accounts SET number = $1, balance = $2
		 WHERE id = $3 AND client_id = $4
		 `

	res, err := r.db.ExecContext(ctx, query, account.Number, account.Balance, account.ID, account.ClientID)
	return rowsAffected(res, err)
}

func (r *PostgresRepository) SelectByClient(ctx context.Context, clientID int64) ([]*models.Account, error) {
	query :=
		`SELECT id, client_id, number, balance FROM accounts
		 WHERE client_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}

func (r *PostgresRepository) DeleteByClient(ctx context.Context, clientID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE client_id = $1`, clientID)
	return rowsAffected(res, err)
}

func rowsAffected(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func scanAccounts(rows *sql.Rows) ([]*models.Account, error) {
	result := []*models.Account{}
	for rows.Next() {
		a := &models.Account{}
		if err := rows.Scan(&a.ID, &a.ClientID, &a.Number, &a.Balance); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
