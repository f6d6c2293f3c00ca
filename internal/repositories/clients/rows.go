package clients

import (
	"database/sql"

	"github.com/dmitrijs2005/bankclients/internal/models"
)

// groupRows folds client⨝account rows, ordered by client id, into clients
// with their accounts. scan fills one row into the given client/account.
func groupRows(rows *sql.Rows, scan func(c *models.Client, a *models.Account) error) ([]*models.Client, error) {
	var result []*models.Client
	var current *models.Client

	for rows.Next() {
		var c models.Client
		a := &models.Account{}
		if err := scan(&c, a); err != nil {
			return nil, err
		}
		a.ClientID = c.ID

		if current == nil || current.ID != c.ID {
			current = &c
			current.Accounts = []*models.Account{}
			result = append(result, current)
		}
		current.Accounts = append(current.Accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
