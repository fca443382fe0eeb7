package suspend

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadySuspended is returned by a suspend after the process was
	// already suspended
	ErrAlreadySuspended = errors.New("session already suspended")
	// ErrPathsFixed is returned when persistence paths are set twice with
	// different values
	ErrPathsFixed = errors.New("suspend paths already set")
)

// ContractViolation is the panic value for calls that break a caller
// contract. It is not recoverable through the error channel.
type ContractViolation struct {
	Op     string
	Reason string
}

func (v *ContractViolation) Error() string {
	return fmt.Sprintf("%s: %s", v.Op, v.Reason)
}

// SuspendError reports a suspend aborted because session state could not
// be saved
type SuspendError struct {
	Path string
	Err  error
}

func (e *SuspendError) Error() string {
	return fmt.Sprintf("suspend aborted, session state not saved to %s: %v", e.Path, e.Err)
}

func (e *SuspendError) Unwrap() error {
	return e.Err
}
