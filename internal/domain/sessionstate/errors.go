package sessionstate

import (
	"errors"
	"fmt"
)

var (
	// ErrNoState is returned when a path holds no complete saved state
	ErrNoState = errors.New("no saved session state")
	// ErrChecksum is returned when a persisted payload fails verification
	ErrChecksum = errors.New("session state checksum mismatch")
)

// PersistenceError is the recoverable failure kind of every store operation
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("session state %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError reports whether err carries a *PersistenceError
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
