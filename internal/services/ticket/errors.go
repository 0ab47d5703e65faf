package ticket

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/lanes/internal/database"
)

// Ticket-related errors
var (
	// ErrTicketNotFound is returned when the referenced ticket does not exist
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrProjectNotFound is returned when the referenced project does not exist
	ErrProjectNotFound = errors.New("project not found")

	// ErrPositionGapExhausted means no key with at least MinGap of headroom is
	// left at the requested spot. Rebalance the column and retry.
	ErrPositionGapExhausted = errors.New("position gap exhausted, rebalance the column and retry")

	// ErrValidation matches every *ValidationError via errors.Is
	ErrValidation = errors.New("validation failed")

	// ErrTxConflict is transient: the whole operation may be retried
	ErrTxConflict = database.ErrTxConflict
)

// ValidationError reports malformed input rejected before any transaction begins
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsTransient reports whether err may succeed if the operation is retried as a whole
func IsTransient(err error) bool {
	return errors.Is(err, ErrTxConflict)
}

// notFound translates the store's generic not-found into the domain error
func notFound(err, domain error) error {
	if errors.Is(err, database.ErrNotFound) {
		return domain
	}
	return err
}
