// Package uow implements a small unit of work for bank clients: an identity
// map of tracked instances, each with an EntityState, and SaveChanges, which
// writes all pending changes in one transaction.
//
// A Session is request scoped and not safe for concurrent use.
package uow

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/bankclients/internal/common"
	"github.com/dmitrijs2005/bankclients/internal/logging"
	"github.com/dmitrijs2005/bankclients/internal/metrics"
	"github.com/dmitrijs2005/bankclients/internal/models"
	"github.com/dmitrijs2005/bankclients/internal/repositories/accounts"
	"github.com/dmitrijs2005/bankclients/internal/repositories/clients"
	"github.com/dmitrijs2005/bankclients/internal/repositories/repomanager"
	"github.com/google/uuid"
)

type tracked struct {
	client *models.Client
	state  EntityState
	seq    uint64
	// key is the identity this entry is indexed under in byID, 0 if none.
	key int64
}

type Session struct {
	id      string
	db      *sql.DB
	repos   repomanager.RepositoryManager
	logger  logging.Logger
	metrics *metrics.Collector

	byRef map[*models.Client]*tracked
	byID  map[int64]*tracked
	seq   uint64
}

// NewSession returns an empty session over db. m may be nil.
func NewSession(db *sql.DB, repos repomanager.RepositoryManager, logger logging.Logger, m *metrics.Collector) *Session {
	id := uuid.NewString()
	return &Session{
		id:      id,
		db:      db,
		repos:   repos,
		logger:  logger.With("session", id),
		metrics: m,
		byRef:   make(map[*models.Client]*tracked),
		byID:    make(map[int64]*tracked),
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Clients returns a non-tracking clients repository over the session's database.
func (s *Session) Clients() clients.Repository {
	return s.repos.Clients(s.db)
}

// Accounts returns a non-tracking accounts repository over the session's database.
func (s *Session) Accounts() accounts.Repository {
	return s.repos.Accounts(s.db)
}

// Lookup returns the entry tracked under identity id.
func (s *Session) Lookup(id int64) (Entry, bool) {
	t, ok := s.byID[id]
	if !ok {
		return Entry{}, false
	}
	return Entry{Client: t.client, State: t.state}, true
}

// Entry returns the entry for this exact instance; State is Detached when
// the instance is not tracked.
func (s *Session) Entry(c *models.Client) Entry {
	if c == nil {
		return Entry{State: Detached}
	}
	t, ok := s.byRef[c]
	if !ok {
		return Entry{Client: c, State: Detached}
	}
	return Entry{Client: c, State: t.state}
}

// State is shorthand for Entry(c).State.
func (s *Session) State(c *models.Client) EntityState {
	return s.Entry(c).State
}

// Entries lists tracked entries in registration order.
func (s *Session) Entries() []Entry {
	list := s.sorted(func(*tracked) bool { return true })
	out := make([]Entry, 0, len(list))
	for _, t := range list {
		out = append(out, Entry{Client: t.client, State: t.state})
	}
	return out
}

// HasChanges reports whether SaveChanges would write anything.
func (s *Session) HasChanges() bool {
	for _, t := range s.byRef {
		if t.state != Unchanged {
			return true
		}
	}
	return false
}

// Attach starts tracking c as Unchanged. It is a no-op for an instance that
// is already tracked and fails with common.ErrIdentityConflict when another
// instance holds the same identity.
func (s *Session) Attach(c *models.Client) error {
	if c == nil {
		return fmt.Errorf("attach: %w", common.ErrInvalidArgument)
	}
	if _, ok := s.byRef[c]; ok {
		return nil
	}
	if err := s.checkIdentity(c); err != nil {
		return err
	}
	s.track(c, Unchanged)
	return nil
}

// Add tracks c as Added so that it and its accounts are inserted on the next
// SaveChanges. c must not carry an identity yet.
func (s *Session) Add(c *models.Client) error {
	if c == nil {
		return fmt.Errorf("add: %w", common.ErrInvalidArgument)
	}
	if !c.IsNew() {
		return fmt.Errorf("add client %d: %w", c.ID, common.ErrAlreadyExists)
	}
	if c.Accounts == nil {
		c.Accounts = []*models.Account{}
	}
	if t, ok := s.byRef[c]; ok {
		t.state = Added
		return nil
	}
	s.track(c, Added)
	return nil
}

// Remove marks c for deletion. An Added instance is simply forgotten.
func (s *Session) Remove(c *models.Client) error {
	if c == nil {
		return fmt.Errorf("remove: %w", common.ErrInvalidArgument)
	}
	t, ok := s.byRef[c]
	if !ok {
		if c.IsNew() {
			return nil
		}
		if err := s.checkIdentity(c); err != nil {
			return err
		}
		t = s.track(c, Deleted)
	}
	if t.state == Added {
		s.untrack(t)
		return nil
	}
	t.state = Deleted
	return nil
}

// Detach stops tracking this exact instance. Unknown instances are ignored.
func (s *Session) Detach(c *models.Client) {
	if c == nil {
		return
	}
	if t, ok := s.byRef[c]; ok {
		s.untrack(t)
	}
}

// SetState moves c to state, attaching it first when needed.
func (s *Session) SetState(c *models.Client, state EntityState) error {
	if c == nil {
		return fmt.Errorf("set state: %w", common.ErrInvalidArgument)
	}

	switch state {
	case Detached:
		s.Detach(c)
		return nil
	case Added:
		return s.Add(c)
	case Unchanged, Modified, Deleted:
		if state != Unchanged && c.IsNew() {
			return fmt.Errorf("mark client without identity as %s: %w", state, common.ErrInvalidArgument)
		}
		if err := s.Attach(c); err != nil {
			return err
		}
		s.byRef[c].state = state
		return nil
	default:
		return fmt.Errorf("set state %s: %w", state, common.ErrInvalidArgument)
	}
}

// Reset forgets every tracked instance.
func (s *Session) Reset() {
	s.byRef = make(map[*models.Client]*tracked)
	s.byID = make(map[int64]*tracked)
}

func (s *Session) checkIdentity(c *models.Client) error {
	if c.IsNew() {
		return nil
	}
	if other, ok := s.byID[c.ID]; ok && other.client != c {
		return fmt.Errorf("client %d: %w", c.ID, common.ErrIdentityConflict)
	}
	return nil
}

func (s *Session) track(c *models.Client, state EntityState) *tracked {
	s.seq++
	t := &tracked{client: c, state: state, seq: s.seq}
	s.byRef[c] = t
	s.index(t)
	return t
}

func (s *Session) index(t *tracked) {
	if t.client.IsNew() {
		return
	}
	t.key = t.client.ID
	s.byID[t.key] = t
}

func (s *Session) untrack(t *tracked) {
	delete(s.byRef, t.client)
	if t.key > 0 && s.byID[t.key] == t {
		delete(s.byID, t.key)
	}
	t.key = 0
}

func (s *Session) sorted(keep func(*tracked) bool) []*tracked {
	list := make([]*tracked, 0, len(s.byRef))
	for _, t := range s.byRef {
		if keep(t) {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })
	return list
}
