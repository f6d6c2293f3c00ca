// Package dataaccess is the bank client data-access layer. It reads clients
// with their accounts, creates new clients and reconciles client instances
// with a unit of work so that at most one instance per identity is tracked.
package dataaccess

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bankclients/internal/common"
	"github.com/dmitrijs2005/bankclients/internal/logging"
	"github.com/dmitrijs2005/bankclients/internal/metrics"
	"github.com/dmitrijs2005/bankclients/internal/models"
	"github.com/dmitrijs2005/bankclients/internal/repositories/accounts"
	"github.com/dmitrijs2005/bankclients/internal/repositories/clients"
	"github.com/dmitrijs2005/bankclients/internal/uow"
)

// UnitOfWork is the part of *uow.Session the data access relies on.
type UnitOfWork interface {
	Clients() clients.Repository
	Accounts() accounts.Repository
	Lookup(id int64) (uow.Entry, bool)
	State(c *models.Client) uow.EntityState
	Attach(c *models.Client) error
	Add(c *models.Client) error
	Detach(c *models.Client)
	SetState(c *models.Client, state uow.EntityState) error
	SaveChanges(ctx context.Context) (int64, error)
}

var _ UnitOfWork = (*uow.Session)(nil)

type ClientDataAccess struct {
	logger  logging.Logger
	metrics *metrics.Collector
}

// New returns a ClientDataAccess. m may be nil.
func New(logger logging.Logger, m *metrics.Collector) *ClientDataAccess {
	return &ClientDataAccess{logger: logger, metrics: m}
}

// GetAllClientsWithAccountsDetached returns only the clients that have at
// least one account, with their accounts populated. The returned values are
// never registered with u: changing them has no effect on the next commit.
func (d *ClientDataAccess) GetAllClientsWithAccountsDetached(ctx context.Context, u UnitOfWork) ([]*models.Client, error) {
	return u.Clients().SelectWithAccounts(ctx)
}

// SaveNewClient inserts a client that has no identity yet, together with its
// accounts, and commits.
//
// It fails with common.ErrInvalidArgument for a nil client and with
// common.ErrAlreadyExists when the client already carries an identity; in
// both cases nothing is committed. Any commit failure, or a commit that
// writes no rows, is reported as a *common.WriteError (common.ErrWriteFailed).
func (d *ClientDataAccess) SaveNewClient(ctx context.Context, u UnitOfWork, client *models.Client) (bool, error) {
	if client == nil {
		return false, fmt.Errorf("save new client: %w", common.ErrInvalidArgument)
	}
	if !client.IsNew() {
		return false, fmt.Errorf("save new client %d: %w", client.ID, common.ErrAlreadyExists)
	}

	if client.Accounts == nil {
		client.Accounts = []*models.Account{}
	}

	if err := u.Add(client); err != nil {
		return false, common.NewWriteError(err)
	}

	written, err := u.SaveChanges(ctx)
	if err != nil {
		return false, common.NewWriteError(err)
	}
	if written <= 0 {
		return false, common.NewWriteError(nil)
	}
	return true, nil
}

// StartTracking makes client the tracked instance for its identity and
// returns it.
//
// For a persisted client (ID > 0) any other instance tracked under the same
// identity is detached first. If client itself is not tracked it is attached
// and marked Modified when it has an identity, Added otherwise. Modified is
// applied even when no field changed.
func (d *ClientDataAccess) StartTracking(u UnitOfWork, client *models.Client) (*models.Client, error) {
	if client == nil {
		return nil, fmt.Errorf("start tracking: %w", common.ErrInvalidArgument)
	}

	if !client.IsNew() {
		if other, ok := u.Lookup(client.ID); ok && other.Client != client && other.State != uow.Detached {
			u.Detach(other.Client)
			d.metrics.Evicted()
			d.logger.Debug(context.Background(), "evicted stale tracked client",
				"client_id", client.ID, "previous_state", other.State.String())
		}
	}

	if u.State(client) == uow.Detached {
		state := uow.Added
		if !client.IsNew() {
			state = uow.Modified
		}
		if err := u.SetState(client, state); err != nil {
			return nil, err
		}
	}

	return client, nil
}

// IsClientTracked reports whether this exact instance is tracked by u.
// A nil client is never tracked.
func (d *ClientDataAccess) IsClientTracked(u UnitOfWork, client *models.Client) bool {
	if client == nil {
		return false
	}
	return u.State(client) != uow.Detached
}

// FindClient returns the tracked instance for id, loading it with its
// accounts and attaching it as Unchanged when it is not tracked yet.
// It returns common.ErrNotFound for an unknown id.
func (d *ClientDataAccess) FindClient(ctx context.Context, u UnitOfWork, id int64) (*models.Client, error) {
	if id <= 0 {
		return nil, fmt.Errorf("find client %d: %w", id, common.ErrInvalidArgument)
	}
	if e, ok := u.Lookup(id); ok {
		return e.Client, nil
	}

	c, err := u.Clients().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("client %d: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	c.Accounts, err = u.Accounts().SelectByClient(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := u.Attach(c); err != nil {
		return nil, err
	}
	return c, nil
}
