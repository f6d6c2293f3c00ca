package uow

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bankclients/internal/common"
	"github.com/dmitrijs2005/bankclients/internal/dbx"
	"github.com/dmitrijs2005/bankclients/internal/models"
	"github.com/dmitrijs2005/bankclients/internal/repositories/accounts"
	"github.com/dmitrijs2005/bankclients/internal/repositories/clients"
)

// SaveChanges writes every Added, Modified and Deleted client in a single
// transaction and returns the number of rows affected.
//
// Added clients are inserted together with their accounts and receive their
// identities. Modified clients are updated; their new accounts are inserted
// and existing ones updated. Deleted clients are removed with their accounts.
// After a successful commit all remaining entries are Unchanged.
//
// On failure nothing is committed, identities assigned during the attempt are
// rolled back on the instances, tracking states are left as they were and
// an *UpdateError is returned.
func (s *Session) SaveChanges(ctx context.Context) (int64, error) {
	pending := s.sorted(func(t *tracked) bool { return t.state != Unchanged })
	if len(pending) == 0 {
		return 0, nil
	}

	snap := takeSnapshot(pending)

	var total int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cr := s.repos.Clients(tx)
		ar := s.repos.Accounts(tx)
		for _, t := range pending {
			n, err := apply(ctx, cr, ar, t)
			if err != nil {
				return err
			}
			total += n
		}
		return nil
	})
	if err != nil {
		snap.restore()
		s.metrics.CommitFailed()
		return 0, &UpdateError{Err: err}
	}

	s.acceptChanges(pending)
	s.metrics.Committed(total)
	s.logger.Debug(ctx, "changes saved", "rows", total, "entries", len(pending))

	return total, nil
}

func apply(ctx context.Context, cr clients.Repository, ar accounts.Repository, t *tracked) (int64, error) {
	c := t.client

	switch t.state {
	case Added:
		n, err := cr.Insert(ctx, c)
		if err != nil {
			return 0, err
		}
		m, err := saveAccounts(ctx, ar, c)
		return n + m, err

	case Modified:
		n, err := cr.Update(ctx, c)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, fmt.Errorf("update client %d: %w", c.ID, common.ErrNotFound)
		}
		m, err := saveAccounts(ctx, ar, c)
		return n + m, err

	case Deleted:
		m, err := ar.DeleteByClient(ctx, c.ID)
		if err != nil {
			return 0, err
		}
		n, err := cr.Delete(ctx, c.ID)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, fmt.Errorf("delete client %d: %w", c.ID, common.ErrNotFound)
		}
		return n + m, nil
	}
	return 0, nil
}

func saveAccounts(ctx context.Context, ar accounts.Repository, c *models.Client) (int64, error) {
	var total int64
	for _, a := range c.Accounts {
		if a == nil {
			continue
		}
		a.ClientID = c.ID

		if a.ID <= 0 {
			n, err := ar.Insert(ctx, a)
			if err != nil {
				return 0, err
			}
			total += n
			continue
		}

		n, err := ar.Update(ctx, a)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, fmt.Errorf("update account %d: %w", a.ID, common.ErrNotFound)
		}
		total += n
	}
	return total, nil
}

func (s *Session) acceptChanges(done []*tracked) {
	for _, t := range done {
		switch t.state {
		case Deleted:
			s.untrack(t)
		case Added:
			t.state = Unchanged
			s.index(t)
		default:
			t.state = Unchanged
		}
	}
}

// snapshot keeps the fields SaveChanges may assign so that a failed commit
// leaves the instances as the caller built them.
type snapshot struct {
	clients  map[*models.Client]clientFields
	accounts map[*models.Account]accountFields
}

type clientFields struct {
	id        int64
	createdAt time.Time
}

type accountFields struct {
	id       int64
	clientID int64
}

func takeSnapshot(pending []*tracked) snapshot {
	snap := snapshot{
		clients:  make(map[*models.Client]clientFields, len(pending)),
		accounts: make(map[*models.Account]accountFields),
	}
	for _, t := range pending {
		c := t.client
		snap.clients[c] = clientFields{id: c.ID, createdAt: c.CreatedAt}
		for _, a := range c.Accounts {
			if a != nil {
				snap.accounts[a] = accountFields{id: a.ID, clientID: a.ClientID}
			}
		}
	}
	return snap
}

func (s snapshot) restore() {
	for c, f := range s.clients {
		c.ID = f.id
		c.CreatedAt = f.createdAt
	}
	for a, f := range s.accounts {
		a.ID = f.id
		a.ClientID = f.clientID
	}
}
