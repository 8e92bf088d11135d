package recordstore

import (
	"context"

	crerr "github.com/cockroachdb/errors"
)

var (
	// ErrConflict is returned when an insert violates a unique key.
	ErrConflict = crerr.New("record conflict")
	// ErrTransient marks failures worth retrying later (network, 5xx, broken connections).
	ErrTransient = crerr.New("record store transient failure")
)

// Store is the generic query client over named collections.
type Store interface {
	Select(ctx context.Context, collection string, query Query) ([]Row, error)
	Insert(ctx context.Context, collection string, row Row) (Row, error)
	Update(ctx context.Context, collection string, patch Row, filters ...Filter) error
	Upsert(ctx context.Context, collection string, row Row, conflictKeys ...string) error
	Delete(ctx context.Context, collection string, filters ...Filter) error
}

// Transactor is implemented by stores that can group writes atomically.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type passthroughTransactor struct{}

func (passthroughTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// TransactorFor returns the store itself when it supports transactions,
// otherwise a transactor that simply runs fn.
func TransactorFor(store Store) Transactor {
	if tx, ok := store.(Transactor); ok {
		return tx
	}
	return passthroughTransactor{}
}

// SupportsTx reports whether writes through store can be rolled back.
func SupportsTx(store Store) bool {
	_, ok := store.(Transactor)
	return ok
}

func IsTransient(err error) bool {
	return crerr.Is(err, ErrTransient)
}

func IsConflict(err error) bool {
	return crerr.Is(err, ErrConflict)
}
