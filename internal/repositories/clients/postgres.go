package clients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bankclients/internal/common"
	"github.com/dmitrijs2005/bankclients/internal/dbx"
	"github.com/dmitrijs2005/bankclients/internal/models"
)

// PostgresRepository implements Repository over a dbx.DBTX for PostgreSQL.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) SelectWithAccounts(ctx context.Context) ([]*models.Client, error) {
	query :=
		`SELECT c.id, c.name, c.created_at, a.id, a.number, a.balance
		 FROM clients c
		 JOIN accounts a ON a.client_id = c.id
		 ORDER BY c.id, a.id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return groupRows(rows, func(c *models.Client, a *models.Account) error {
		return rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &a.ID, &a.Number, &a.Balance)
	})
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Client, error) {
	query :=
		`SELECT id, name, created_at FROM clients
		 WHERE id = $1
		 `

	c := &models.Client{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, client *models.Client) (int64, error) {
	query :=
		`INSERT INTO clients (name, created_at)
		 VALUES ($1, $2)
		 RETURNING id
		 `

	if client.CreatedAt.IsZero() {
		client.CreatedAt = time.Now().UTC()
	}

	err := r.db.QueryRowContext(ctx, query, client.Name, client.CreatedAt).Scan(&client.ID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return 1, nil
}

func (r *PostgresRepository) Update(ctx context.Context, client *models.Client) (int64, error) {
	query := `UPDATE clients SET name = $1 WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, client.Name, client.ID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
