// Package accounts provides the SQL repositories for bank accounts.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/bankclients/internal/models"
)

type Repository interface {
	// Insert stores a new account, assigns account.ID and reports rows affected.
	Insert(ctx context.Context, account *models.Account) (int64, error)

	// Update rewrites number and balance of an account owned by account.ClientID.
	Update(ctx context.Context, account *models.Account) (int64, error)

	// SelectByClient lists a client's accounts ordered by id.
	SelectByClient(ctx context.Context, clientID int64) ([]*models.Account, error)

	// DeleteByClient removes all accounts of a client.
	DeleteByClient(ctx context.Context, clientID int64) (int64, error)
}
