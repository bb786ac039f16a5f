package dictionary

import (
	"errors"
	"fmt"
)

// ErrNotFound means the entry does not exist for this owner.
var ErrNotFound = errors.New("entry not found")

// ValidationError reports a required field that is blank after trimming.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// PersistenceError wraps a failed store operation. The cause is kept for
// diagnostics and is reachable through errors.Unwrap.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Kind names the innermost cause, e.g. "*sqlite3.Error".
func (e *PersistenceError) Kind() string {
	cause := e.Err
	for {
		next := errors.Unwrap(cause)
		if next == nil {
			break
		}
		cause = next
	}
	return fmt.Sprintf("%T", cause)
}
