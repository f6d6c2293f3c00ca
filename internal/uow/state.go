package uow

import (
	"fmt"

	"github.com/dmitrijs2005/bankclients/internal/models"
)

// EntityState is the tracking state of a client within a Session.
type EntityState int

const (
	// Detached means the session does not know the instance.
	Detached EntityState = iota
	// Unchanged instances are tracked but produce no writes.
	Unchanged
	// Added instances are inserted on the next SaveChanges.
	Added
	// Modified instances are updated on the next SaveChanges.
	Modified
	// Deleted instances are removed on the next SaveChanges.
	Deleted
)

func (s EntityState) String() string {
	switch s {
	case Detached:
		return "Detached"
	case Unchanged:
		return "Unchanged"
	case Added:
		return "Added"
	case Modified:
		return "Modified"
	case Deleted:
		return "Deleted"
	default:
		return fmt.Sprintf("EntityState(%d)", int(s))
	}
}

// Entry is a snapshot of one tracked client and its state.
type Entry struct {
	Client *models.Client
	State  EntityState
}

// UpdateError reports a failed SaveChanges. The transaction has been rolled
// back and Err carries the underlying cause.
type UpdateError struct {
	Err error
}

func (e *UpdateError) Error() string {
	return "save changes: " + e.Err.Error()
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}
