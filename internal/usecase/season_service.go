package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/mix-league/internal/domain/mix"
	"github.com/riskibarqy/mix-league/internal/domain/season"
	"github.com/riskibarqy/mix-league/internal/platform/logging"
)

type CreateSeasonInput struct {
	Name     string
	StartsOn time.Time
	EndsOn   time.Time
}

type CreateMixInput struct {
	SeasonID    string
	ScheduledAt time.Time
	Fee         float64
}

type SeasonService struct {
	seasonRepo season.Repository
	mixRepo    mix.Repository
	mapRepo    mix.MapRepository
	logger     *logging.Logger
}

func NewSeasonService(seasonRepo season.Repository, mixRepo mix.Repository, mapRepo mix.MapRepository, logger *logging.Logger) *SeasonService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SeasonService{
		seasonRepo: seasonRepo,
		mixRepo:    mixRepo,
		mapRepo:    mapRepo,
		logger:     logger,
	}
}

func (s *SeasonService) ListSeasons(ctx context.Context) ([]season.Season, error) {
	ctx, span := usecaseSpans.Start(ctx, "usecase.SeasonService.ListSeasons")
	defer span.End()

	items, err := s.seasonRepo.List(ctx)
	if err != nil {
		return nil, storeError("list seasons", err)
	}
	return items, nil
}

func (s *SeasonService) GetSeason(ctx context.Context, seasonID string) (season.Season, error) {
	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return season.Season{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}

	item, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return season.Season{}, storeError("get season", err)
	}
	if !exists {
		return season.Season{}, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}
	return item, nil
}

func (s *SeasonService) CreateSeason(ctx context.Context, input CreateSeasonInput) (season.Season, error) {
	ctx, span := usecaseSpans.Start(ctx, "usecase.SeasonService.CreateSeason")
	defer span.End()

	item := season.Season{
		Name:     strings.TrimSpace(input.Name),
		StartsOn: input.StartsOn,
		EndsOn:   input.EndsOn,
		Active:   true,
	}
	if err := item.Validate(); err != nil {
		return season.Season{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.seasonRepo.Create(ctx, item)
	if err != nil {
		return season.Season{}, storeError("create season", err)
	}

	s.logger.InfoContext(ctx, "season created", "season_id", created.ID, "name", created.Name)
	return created, nil
}

// ListMixes returns the season's mixes, newest first.
func (s *SeasonService) ListMixes(ctx context.Context, seasonID string) ([]mix.Mix, error) {
	if _, err := s.GetSeason(ctx, seasonID); err != nil {
		return nil, err
	}

	items, err := s.mixRepo.ListBySeason(ctx, strings.TrimSpace(seasonID))
	if err != nil {
		return nil, storeError("list mixes", err)
	}
	return items, nil
}

func (s *SeasonService) CreateMix(ctx context.Context, input CreateMixInput) (mix.Mix, error) {
	ctx, span := usecaseSpans.Start(ctx, "usecase.SeasonService.CreateMix")
	defer span.End()

	if _, err := s.GetSeason(ctx, input.SeasonID); err != nil {
		return mix.Mix{}, err
	}

	item := mix.Mix{
		SeasonID:    strings.TrimSpace(input.SeasonID),
		ScheduledAt: input.ScheduledAt,
		Fee:         input.Fee,
		Status:      mix.StatusScheduled,
	}
	if err := item.Validate(); err != nil {
		return mix.Mix{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.mixRepo.Create(ctx, item)
	if err != nil {
		return mix.Mix{}, storeError("create mix", err)
	}

	s.logger.InfoContext(ctx, "mix created", "mix_id", created.ID, "season_id", created.SeasonID)
	return created, nil
}

func (s *SeasonService) ListMaps(ctx context.Context) ([]mix.GameMap, error) {
	items, err := s.mapRepo.ListCatalog(ctx)
	if err != nil {
		return nil, storeError("list maps", err)
	}
	return items, nil
}
