// Package clients provides the SQL repositories for bank clients, one per
// supported dialect, each bound to a dbx.DBTX (*sql.DB or *sql.Tx).
package clients

import (
	"context"

	"github.com/dmitrijs2005/bankclients/internal/models"
)

type Repository interface {
	// SelectWithAccounts returns every client owning at least one account,
	// accounts populated, ordered by client id then account id.
	SelectWithAccounts(ctx context.Context) ([]*models.Client, error)

	// GetByID returns the client without its accounts, or common.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.Client, error)

	// Insert stores a new client, assigns client.ID and reports rows affected.
	Insert(ctx context.Context, client *models.Client) (int64, error)

	// Update rewrites the client's columns and reports rows affected.
	Update(ctx context.Context, client *models.Client) (int64, error)

	// Delete removes the client and reports rows affected.
	Delete(ctx context.Context, id int64) (int64, error)
}
