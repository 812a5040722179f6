// errors.go defines the store's error taxonomy.
//
// Three classes reach callers: missing targets (surfaced as nil/false
// results from the public API, ErrNotFound internally), bad references
// supplied by the caller (ErrUserError, usually as a *ReferenceError) and
// database failures (ErrDatabase). Any of them returned inside Tx rolls the
// whole unit of work back.

package store

import (
	"errors"
	"fmt"

	"github.com/jpl-au/exambank/internal/validate"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUserError marks a fault in the caller's input, such as an
	// association id that does not resolve to any row.
	ErrUserError = errors.New("user error")
	// ErrDatabase marks a failed or ineffective write.
	ErrDatabase = errors.New("database error")
	// ErrUnknownKind is returned when a kind name is not recognised or the
	// kind does not support the requested operation.
	ErrUnknownKind = errors.New("unknown kind")

	// ErrTooLarge and ErrInvalidTag come from input limit checks and are
	// always wrapped together with ErrUserError.
	ErrTooLarge   = validate.ErrPayloadTooLarge
	ErrInvalidTag = validate.ErrInvalidTag
)

// ReferenceError reports an id that was supplied for an association but
// does not exist. It unwraps to ErrUserError.
type ReferenceError struct {
	Kind Kind
	ID   string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %q does not exist", e.Kind, e.ID)
}

func (e *ReferenceError) Unwrap() error {
	return ErrUserError
}

// dbErr wraps a failed write so callers can match ErrDatabase.
func dbErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDatabase, op, err)
}

// mustAffect turns a zero-row write into an ErrDatabase.
func mustAffect(op string, n int64) error {
	if n < 1 {
		return fmt.Errorf("%w: %s affected no rows", ErrDatabase, op)
	}
	return nil
}
