package cache

import (
	"context"
	"slices"

	"github.com/riskibarqy/mix-league/internal/domain/mix"
	"github.com/riskibarqy/mix-league/internal/domain/profile"
	"github.com/riskibarqy/mix-league/internal/domain/season"
	basecache "github.com/riskibarqy/mix-league/internal/platform/cache"
)

const (
	seasonPrefix  = "season:"
	profilePrefix = "profile:"
	mapPrefix     = "map:"
)

// found pairs a lookup result with its existence flag so misses are cached
// as well as hits.
type found[T any] struct {
	value  T
	exists bool
}

func loadOne[T any](ctx context.Context, c *basecache.Store, key string, get func(context.Context) (T, bool, error)) (T, bool, error) {
	hit, err := basecache.Load(ctx, c, key, func(ctx context.Context) (found[T], error) {
		value, exists, err := get(ctx)
		return found[T]{value: value, exists: exists}, err
	})
	return hit.value, hit.exists, err
}

// loadSlice hands every caller its own copy so cached slices stay untouched.
func loadSlice[T any](ctx context.Context, c *basecache.Store, key string, list func(context.Context) ([]T, error)) ([]T, error) {
	items, err := basecache.Load(ctx, c, key, list)
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

type SeasonRepository struct {
	next  season.Repository
	cache *basecache.Store
}

func NewSeasonRepository(next season.Repository, cache *basecache.Store) *SeasonRepository {
	return &SeasonRepository{next: next, cache: cache}
}

func (r *SeasonRepository) List(ctx context.Context) ([]season.Season, error) {
	return loadSlice(ctx, r.cache, seasonPrefix+"list", r.next.List)
}

func (r *SeasonRepository) ListActive(ctx context.Context) ([]season.Season, error) {
	return loadSlice(ctx, r.cache, seasonPrefix+"active", r.next.ListActive)
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	return loadOne(ctx, r.cache, seasonPrefix+"id:"+seasonID, func(ctx context.Context) (season.Season, bool, error) {
		return r.next.GetByID(ctx, seasonID)
	})
}

func (r *SeasonRepository) Create(ctx context.Context, item season.Season) (season.Season, error) {
	created, err := r.next.Create(ctx, item)
	if err != nil {
		return season.Season{}, err
	}
	r.cache.DeletePrefix(ctx, seasonPrefix)
	return created, nil
}

// ProfileRepository caches reads for display. Rating updates that run in a
// transaction go to the store repository directly and call
// InvalidateProfiles after commit.
type ProfileRepository struct {
	next  profile.Repository
	cache *basecache.Store
}

func NewProfileRepository(next profile.Repository, cache *basecache.Store) *ProfileRepository {
	return &ProfileRepository{next: next, cache: cache}
}

func (r *ProfileRepository) List(ctx context.Context) ([]profile.Profile, error) {
	return loadSlice(ctx, r.cache, profilePrefix+"list", r.next.List)
}

func (r *ProfileRepository) GetByID(ctx context.Context, profileID string) (profile.Profile, bool, error) {
	return loadOne(ctx, r.cache, profilePrefix+"id:"+profileID, func(ctx context.Context) (profile.Profile, bool, error) {
		return r.next.GetByID(ctx, profileID)
	})
}

// GetByIDs is served from the cached list when every id is present there.
func (r *ProfileRepository) GetByIDs(ctx context.Context, profileIDs []string) ([]profile.Profile, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := profile.Index(all)

	out := make([]profile.Profile, 0, len(profileIDs))
	for _, profileID := range profileIDs {
		item, ok := byID[profileID]
		if !ok {
			return r.next.GetByIDs(ctx, profileIDs)
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *ProfileRepository) UpdateElo(ctx context.Context, profileID string, elo int) error {
	if err := r.next.UpdateElo(ctx, profileID, elo); err != nil {
		return err
	}
	r.InvalidateProfiles(ctx)
	return nil
}

// InvalidateProfiles drops every cached profile.
func (r *ProfileRepository) InvalidateProfiles(ctx context.Context) {
	r.cache.DeletePrefix(ctx, profilePrefix)
}

// MapRepository caches only the catalog; selections and results change
// while a mix is being edited.
type MapRepository struct {
	mix.MapRepository
	cache *basecache.Store
}

func NewMapRepository(next mix.MapRepository, cache *basecache.Store) *MapRepository {
	return &MapRepository{MapRepository: next, cache: cache}
}

func (r *MapRepository) ListCatalog(ctx context.Context) ([]mix.GameMap, error) {
	return loadSlice(ctx, r.cache, mapPrefix+"catalog", r.MapRepository.ListCatalog)
}
