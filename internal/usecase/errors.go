package usecase

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("resource already exists")
	ErrAlreadyFinalized      = errors.New("mix already finalized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// storeError wraps a repository failure. Transient backend failures and
// unique violations are lifted to use case errors.
func storeError(op string, err error) error {
	switch {
	case recordstore.IsTransient(err):
		return fmt.Errorf("%w: %s: %v", ErrDependencyUnavailable, op, err)
	case recordstore.IsConflict(err):
		return fmt.Errorf("%w: %s: %v", ErrConflict, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
