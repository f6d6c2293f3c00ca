package common

// WriteError is returned when persisting changes fails or writes nothing.
//
// It matches ErrWriteFailed with errors.Is. The driver cause is available
// through Cause only; WriteError does not implement Unwrap.
type WriteError struct {
	cause error
}

// NewWriteError wraps cause (which may be nil) into a WriteError.
func NewWriteError(cause error) *WriteError {
	return &WriteError{cause: cause}
}

func (e *WriteError) Error() string {
	return ErrWriteFailed.Error()
}

// Is reports whether target is ErrWriteFailed.
func (e *WriteError) Is(target error) bool {
	return target == ErrWriteFailed
}

// Cause returns the underlying failure, or nil when the commit simply
// affected no rows.
func (e *WriteError) Cause() error {
	return e.cause
}
