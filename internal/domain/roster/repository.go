package roster

import "context"

// Repository returns entries in storage order; team splitting depends on it.
type Repository interface {
	ListByMix(ctx context.Context, mixID string) ([]Entry, error)
	ListByMixes(ctx context.Context, mixIDs []string) ([]Entry, error)
	Add(ctx context.Context, item Entry) error
	Remove(ctx context.Context, mixID, playerID string) error
	SetPayment(ctx context.Context, mixID, playerID string, status PaymentStatus, paidValue float64) error
}
