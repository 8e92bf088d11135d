package profile

import "context"

type Repository interface {
	List(ctx context.Context) ([]Profile, error)
	GetByID(ctx context.Context, profileID string) (Profile, bool, error)
	GetByIDs(ctx context.Context, profileIDs []string) ([]Profile, error)
	UpdateElo(ctx context.Context, profileID string, elo int) error
}
