package mapstat

import "context"

type Repository interface {
	ListByMix(ctx context.Context, mixID string) ([]Stat, error)
	ListByMixes(ctx context.Context, mixIDs []string) ([]Stat, error)
	Upsert(ctx context.Context, item Stat) error
	DeleteByPlayer(ctx context.Context, mixID, playerID string) error
}

type AssignmentRepository interface {
	ListByMix(ctx context.Context, mixID string) ([]TeamAssignment, error)
	Save(ctx context.Context, items []TeamAssignment) error
}
