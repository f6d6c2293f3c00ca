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

// SQLite keeps created_at as RFC 3339 text.
const sqliteTimeLayout = time.RFC3339Nano

// SQLiteRepository implements Repository over a dbx.DBTX for SQLite.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) SelectWithAccounts(ctx context.Context) ([]*models.Client, error) {
	query := `select c.id, c.name, c.created_at, a.id, a.number, a.balance
		from clients c
		join accounts a on a.client_id = c.id
		order by c.id, a.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select clients: %w", err)
	}
	defer rows.Close()

	return groupRows(rows, func(c *models.Client, a *models.Account) error {
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &createdAt, &a.ID, &a.Number, &a.Balance); err != nil {
			return err
		}
		return parseTime(createdAt, &c.CreatedAt)
	})
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Client, error) {
	query := `select id, name, created_at from clients where id=?`

	c := &models.Client{}
	var createdAt string
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	if err := parseTime(createdAt, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, client *models.Client) (int64, error) {
	query := `insert into clients (name, created_at) values (?, ?)`

	if client.CreatedAt.IsZero() {
		client.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, query, client.Name, client.CreatedAt.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to insert client: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	client.ID = id
	return n, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, client *models.Client) (int64, error) {
	res, err := r.db.ExecContext(ctx, `update clients set name=? where id=?`, client.Name, client.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to update client: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `delete from clients where id=?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete client: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func parseTime(s string, dst *time.Time) error {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return fmt.Errorf("bad created_at %q: %w", s, err)
	}
	*dst = t
	return nil
}
