package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/mix-league/internal/domain/roster"
	"github.com/riskibarqy/mix-league/internal/domain/season"
	cacherepo "github.com/riskibarqy/mix-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/mix-league/internal/infrastructure/repository/records"
	seasonmock "github.com/riskibarqy/mix-league/internal/mocks/domain/season"
	basecache "github.com/riskibarqy/mix-league/internal/platform/cache"
	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
	"github.com/stretchr/testify/mock"
)

func (f *leagueFixture) rankingService(cache *basecache.Store) *RankingService {
	return NewRankingService(f.seasons, f.mixes, f.roster, f.stats, f.profiles, cache, nil)
}

func TestRankingService_SeasonRanking(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLeagueFixture()
	f.seedMix("m1", []string{"p1", "p2"}, []string{"de_dust2"})
	f.store.Seed(records.CollectionMapStats, recordstore.Row{
		"mix_id": "m1", "player_id": "p2", "map_id": "de_dust2", "kills": 10, "deaths": 5,
	})

	rows, err := f.rankingService(nil).SeasonRanking(ctx, "s1")
	if err != nil {
		t.Fatalf("season ranking: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if rows[0].PlayerID != "p2" || rows[0].Score != 27 || rows[0].KD != 2 {
		t.Fatalf("unexpected leader: %+v", rows[0])
	}
	if rows[1].PlayerID != "p1" || rows[1].Pending != 30 || rows[1].Mixes != 1 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestRankingService_SeasonSummaryAndKDSeries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLeagueFixture()
	f.seedMix("m1", []string{"p1", "p2"}, []string{"de_dust2"})
	f.store.Seed(records.CollectionMixes, recordstore.Row{
		"id": "m0", "season_id": "s1", "dt_mix": "2025-01-20", "valor_por_jogador": 25.0, "status": "finalizado",
	})
	f.store.Seed(records.CollectionMapStats,
		recordstore.Row{"mix_id": "m1", "player_id": "p1", "map_id": "de_dust2", "kills": 9, "deaths": 3},
		recordstore.Row{"mix_id": "m0", "player_id": "p1", "map_id": "de_dust2", "kills": 4, "deaths": 8},
	)
	if err := f.roster.SetPayment(ctx, "m1", "p1", roster.PaymentPaid, 30); err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	service := f.rankingService(nil)
	summary, err := service.SeasonSummary(ctx, "s1")
	if err != nil {
		t.Fatalf("season summary: %v", err)
	}
	if summary.Players != 2 || summary.Mixes != 2 || summary.Collected != 30 || summary.PaymentRate != 50 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	points, err := service.PlayerKDSeries(ctx, "s1", "p1")
	if err != nil {
		t.Fatalf("kd series: %v", err)
	}
	if len(points) != 2 || points[0].MixID != "m0" || points[0].KD != 0.5 || points[1].KD != 3 {
		t.Fatalf("unexpected kd series: %+v", points)
	}

	if _, err := service.PlayerKDSeries(ctx, "s1", " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRankingService_UnknownSeason(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture()
	if _, err := f.rankingService(nil).SeasonRanking(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRankingService_CacheWarmAndInvalidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLeagueFixture()
	f.seedMix("m1", []string{"p1", "p2"}, []string{"de_dust2"})
	service := f.rankingService(basecache.NewStore(time.Minute))

	warm, err := service.WarmActiveSeasons(ctx, 2)
	if err != nil {
		t.Fatalf("warm: %v", err)
	}
	if warm.Seasons != 1 || warm.Warmed != 1 || warm.Failed != 0 {
		t.Fatalf("unexpected warm result: %+v", warm)
	}

	f.store.Seed(records.CollectionMapStats, recordstore.Row{
		"mix_id": "m1", "player_id": "p9", "map_id": "de_dust2", "kills": 1,
	})
	rows, err := service.SeasonRanking(ctx, "s1")
	if err != nil {
		t.Fatalf("season ranking: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected cached input to be served, got %d rows", len(rows))
	}

	service.InvalidateSeason(ctx, "s1")
	rows, err = service.SeasonRanking(ctx, "s1")
	if err != nil {
		t.Fatalf("season ranking: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected fresh input after invalidation, got %d rows", len(rows))
	}
}

func TestRankingService_CachedSeasonShowsRatingsFromAnotherSeason(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLeagueFixture()
	players := []string{"p1", "p2", "p3", "p4"}
	f.seedMix("m1", players, []string{"de_dust2"})
	f.store.Seed(records.CollectionSeasons, recordstore.Row{
		"id": "s2", "nome": "Season 2", "dt_inicio": "2025-07-01", "dt_fim": "2025-12-31", "is_active": true,
	})
	f.addMix("s2", "m2", players, []string{"de_dust2"})
	f.store.Seed(records.CollectionMapResults, recordstore.Row{"mix_id": "m2", "map_id": "de_dust2", "winner": "A"})

	cache := basecache.NewStore(time.Minute)
	profiles := cacherepo.NewProfileRepository(f.profiles, cache)
	service := NewRankingService(f.seasons, f.mixes, f.roster, f.stats, profiles, cache, nil)
	finalize := f.finalizeService().WithSeasonInvalidator(service).WithProfileInvalidator(profiles)

	eloIn := func(seasonID, playerID string) int {
		t.Helper()
		rows, err := service.SeasonRanking(ctx, seasonID)
		if err != nil {
			t.Fatalf("season ranking %s: %v", seasonID, err)
		}
		for _, row := range rows {
			if row.PlayerID == playerID {
				return row.Elo
			}
		}
		t.Fatalf("player %s missing from %s ranking", playerID, seasonID)
		return 0
	}

	if got := eloIn("s1", "p1"); got != 1000 {
		t.Fatalf("unexpected elo before finalize: %d", got)
	}
	if _, err := finalize.Finalize(ctx, "m2"); err != nil {
		t.Fatalf("finalize m2: %v", err)
	}
	if got := eloIn("s1", "p1"); got != 1011 {
		t.Fatalf("season 1 ranking kept a stale elo: got=%d want=1011", got)
	}
	if got := eloIn("s2", "p3"); got != 989 {
		t.Fatalf("unexpected season 2 elo: %d", got)
	}
}

func TestRankingService_WarmCountsFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLeagueFixture()
	seasonRepo := seasonmock.NewRepository(t)
	seasonRepo.
		On("ListActive", mock.Anything).
		Return([]season.Season{{ID: "s1", Active: true}, {ID: "s2", Active: true}}, nil).
		Once()
	seasonRepo.
		On("GetByID", mock.Anything, "s1").
		Return(season.Season{ID: "s1"}, true, nil).
		Once()
	seasonRepo.
		On("GetByID", mock.Anything, "s2").
		Return(season.Season{}, false, nil).
		Once()

	service := NewRankingService(seasonRepo, f.mixes, f.roster, f.stats, f.profiles, basecache.NewStore(time.Minute), nil)
	got, err := service.WarmActiveSeasons(ctx, 0)
	if err != nil {
		t.Fatalf("warm: %v", err)
	}
	if got.Warmed != 1 || got.Failed != 1 {
		t.Fatalf("unexpected warm result: %+v", got)
	}
}
