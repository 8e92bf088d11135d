package mix

import "context"

// Repository describes mix persistence needs from use cases.
type Repository interface {
	ListBySeason(ctx context.Context, seasonID string) ([]Mix, error)
	GetByID(ctx context.Context, mixID string) (Mix, bool, error)
	Create(ctx context.Context, item Mix) (Mix, error)
	UpdateStatus(ctx context.Context, mixID string, status Status) error
}

// MapRepository covers the map catalog, per-mix selections and results.
type MapRepository interface {
	ListCatalog(ctx context.Context) ([]GameMap, error)
	ListSelected(ctx context.Context, mixID string) ([]MapSelection, error)
	Select(ctx context.Context, item MapSelection) error
	Unselect(ctx context.Context, mixID, mapID string) error
	ListResults(ctx context.Context, mixID string) ([]MapResult, error)
	UpsertResult(ctx context.Context, item MapResult) error
}
