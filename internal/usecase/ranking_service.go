package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/mix-league/internal/domain/mapstat"
	"github.com/riskibarqy/mix-league/internal/domain/mix"
	"github.com/riskibarqy/mix-league/internal/domain/profile"
	"github.com/riskibarqy/mix-league/internal/domain/ranking"
	"github.com/riskibarqy/mix-league/internal/domain/roster"
	"github.com/riskibarqy/mix-league/internal/domain/season"
	basecache "github.com/riskibarqy/mix-league/internal/platform/cache"
	"github.com/riskibarqy/mix-league/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const rankingCachePrefix = "ranking:season:"

// SeasonInvalidator is notified after writes that change a season's ranking.
type SeasonInvalidator interface {
	InvalidateSeason(ctx context.Context, seasonID string)
}

// ProfileInvalidator drops cached profiles once new ratings are committed.
type ProfileInvalidator interface {
	InvalidateProfiles(ctx context.Context)
}

type WarmResult struct {
	Seasons int
	Warmed  int
	Failed  int
}

// RankingService loads a season's raw records and runs the aggregations.
// Mixes, roster entries and stats are cached per season when a cache is
// configured; profiles are joined on every call.
type RankingService struct {
	seasonRepo  season.Repository
	mixRepo     mix.Repository
	rosterRepo  roster.Repository
	statRepo    mapstat.Repository
	profileRepo profile.Repository
	cache       *basecache.Store
	logger      *logging.Logger
}

func NewRankingService(
	seasonRepo season.Repository,
	mixRepo mix.Repository,
	rosterRepo roster.Repository,
	statRepo mapstat.Repository,
	profileRepo profile.Repository,
	cache *basecache.Store,
	logger *logging.Logger,
) *RankingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RankingService{
		seasonRepo:  seasonRepo,
		mixRepo:     mixRepo,
		rosterRepo:  rosterRepo,
		statRepo:    statRepo,
		profileRepo: profileRepo,
		cache:       cache,
		logger:      logger,
	}
}

func (s *RankingService) SeasonRanking(ctx context.Context, seasonID string) ([]ranking.Row, error) {
	ctx, span := usecaseSpans.Start(ctx, "usecase.RankingService.SeasonRanking")
	defer span.End()

	input, err := s.seasonInput(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	// Ratings change across seasons, so profiles are never part of the
	// cached season input.
	profiles, err := s.profileRepo.List(ctx)
	if err != nil {
		return nil, storeError("list profiles", err)
	}
	input.Profiles = profiles
	return ranking.Aggregate(input), nil
}

func (s *RankingService) SeasonSummary(ctx context.Context, seasonID string) (ranking.SeasonSummary, error) {
	input, err := s.seasonInput(ctx, seasonID)
	if err != nil {
		return ranking.SeasonSummary{}, err
	}
	return ranking.Summarize(input), nil
}

func (s *RankingService) PlayerKDSeries(ctx context.Context, seasonID, playerID string) ([]ranking.KDPoint, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	input, err := s.seasonInput(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	return ranking.KDSeries(playerID, input.Mixes, input.Stats), nil
}

// InvalidateSeason drops the cached input of a season after its records change.
func (s *RankingService) InvalidateSeason(ctx context.Context, seasonID string) {
	if s.cache == nil {
		return
	}
	s.cache.Delete(ctx, rankingCachePrefix+seasonID)
}

// WarmActiveSeasons preloads the ranking input of every active season on a
// bounded worker pool. Failures are logged and counted, not returned.
func (s *RankingService) WarmActiveSeasons(ctx context.Context, maxWorkers int) (WarmResult, error) {
	ctx, span := usecaseSpans.Start(ctx, "usecase.RankingService.WarmActiveSeasons")
	defer span.End()

	if s.cache == nil {
		return WarmResult{}, nil
	}

	seasons, err := s.seasonRepo.ListActive(ctx)
	if err != nil {
		return WarmResult{}, storeError("list active seasons", err)
	}
	result := WarmResult{Seasons: len(seasons)}
	if len(seasons) == 0 {
		return result, nil
	}

	workerCount := maxWorkers
	if workerCount <= 0 {
		workerCount = 4
	}
	workerCount = min(workerCount, len(seasons))

	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return WarmResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var warmed, failed atomic.Int32
	var workers sync.WaitGroup
	for _, item := range seasons {
		item := item
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			s.cache.Delete(ctx, rankingCachePrefix+item.ID)
			if _, err := s.seasonInput(ctx, item.ID); err != nil {
				failed.Add(1)
				s.logger.WarnContext(ctx, "warm season ranking failed", "season_id", item.ID, "error", err)
				return
			}
			warmed.Add(1)
		}); err != nil {
			workers.Done()
			return WarmResult{}, fmt.Errorf("submit warm task to worker pool: %w", err)
		}
	}
	workers.Wait()

	result.Warmed = int(warmed.Load())
	result.Failed = int(failed.Load())
	s.logger.InfoContext(ctx, "season rankings warmed",
		"seasons", result.Seasons,
		"warmed", result.Warmed,
		"failed", result.Failed,
		"workers", workerCount,
	)
	return result, nil
}

func (s *RankingService) seasonInput(ctx context.Context, seasonID string) (ranking.Input, error) {
	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return ranking.Input{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	return basecache.Load(ctx, s.cache, rankingCachePrefix+seasonID, func(ctx context.Context) (ranking.Input, error) {
		return s.loadSeasonInput(ctx, seasonID)
	})
}

func (s *RankingService) loadSeasonInput(ctx context.Context, seasonID string) (ranking.Input, error) {
	_, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return ranking.Input{}, storeError("get season", err)
	}
	if !exists {
		return ranking.Input{}, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}

	mixes, err := s.mixRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return ranking.Input{}, storeError("list mixes", err)
	}
	mixIDs := make([]string, 0, len(mixes))
	for _, m := range mixes {
		mixIDs = append(mixIDs, m.ID)
	}

	input := ranking.Input{Mixes: mixes}
	loads := pool.New().WithContext(ctx).WithCancelOnError()
	loads.Go(func(ctx context.Context) error {
		entries, err := s.rosterRepo.ListByMixes(ctx, mixIDs)
		if err != nil {
			return storeError("list roster entries", err)
		}
		input.Entries = entries
		return nil
	})
	loads.Go(func(ctx context.Context) error {
		stats, err := s.statRepo.ListByMixes(ctx, mixIDs)
		if err != nil {
			return storeError("list map stats", err)
		}
		input.Stats = stats
		return nil
	})
	if err := loads.Wait(); err != nil {
		return ranking.Input{}, err
	}

	return input, nil
}
