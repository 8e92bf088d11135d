package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/mix-league/internal/domain/mix"
	"github.com/riskibarqy/mix-league/internal/domain/profile"
	"github.com/riskibarqy/mix-league/internal/domain/rating"
	cacherepo "github.com/riskibarqy/mix-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/mix-league/internal/infrastructure/repository/records"
	basecache "github.com/riskibarqy/mix-league/internal/platform/cache"
	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
)

func TestFinalizeService_TwoVersusTwoTeamAWins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLeagueFixture()
	f.seedMix("m1", []string{"p1", "p2", "p3", "p4"}, []string{"de_dust2"})
	f.store.Seed(records.CollectionMapResults, recordstore.Row{"mix_id": "m1", "map_id": "de_dust2", "winner": "A"})

	got, err := f.finalizeService().Finalize(ctx, "m1")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if got.Message != "mix finalized and ratings updated" {
		t.Fatalf("unexpected message: %q", got.Message)
	}
	if got.Resumed {
		t.Fatalf("expected a fresh finalization")
	}
	if len(got.TeamA) != 2 || got.TeamA[0] != "p1" || got.TeamA[1] != "p2" {
		t.Fatalf("unexpected team A: %v", got.TeamA)
	}

	want := map[string]int{"p1": 1011, "p2": 1011, "p3": 989, "p4": 989}
	for playerID, elo := range want {
		if got := f.elo(playerID); got != elo {
			t.Fatalf("unexpected elo for %s: got=%d want=%d", playerID, got, elo)
		}
	}
	if status := f.mixStatus("m1"); status != "finalizado" {
		t.Fatalf("expected finalized status, got %q", status)
	}
	if teams := f.store.Rows(records.CollectionMapTeams); len(teams) != 4 {
		t.Fatalf("expected 4 team assignments, got %d", len(teams))
	}
	for _, row := range f.store.Rows(records.CollectionRatingChanges) {
		if !row.Bool("applied") {
			t.Fatalf("expected every staged change to be applied: %+v", row)
		}
	}
}

func TestFinalizeService_SecondCallIsRejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLeagueFixture()
	f.seedMix("m1", []string{"p1", "p2", "p3", "p4"}, []string{"de_dust2"})
	f.store.Seed(records.CollectionMapResults, recordstore.Row{"mix_id": "m1", "map_id": "de_dust2", "winner": "A"})

	service := f.finalizeService()
	if _, err := service.Finalize(ctx, "m1"); err != nil {
		t.Fatalf("first finalize: %v", err)
	}

	_, err := service.Finalize(ctx, "m1")
	if !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("expected ErrAlreadyFinalized, got %v", err)
	}
	if got := f.elo("p1"); got != 1011 {
		t.Fatalf("ratings must not change on a second call, got %d", got)
	}
}

func TestFinalizeService_BackToBackMixesWithProfileCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLeagueFixture()
	players := []string{"p1", "p2", "p3", "p4"}
	f.seedMix("m1", players, []string{"de_dust2"})
	f.addMix("s1", "m2", players, []string{"de_dust2"})
	f.store.Seed(records.CollectionMapResults,
		recordstore.Row{"mix_id": "m1", "map_id": "de_dust2", "winner": "A"},
		recordstore.Row{"mix_id": "m2", "map_id": "de_dust2", "winner": "A"},
	)

	cached := cacherepo.NewProfileRepository(f.profiles, basecache.NewStore(time.Minute))
	service := f.finalizeService().WithProfileInvalidator(cached)

	if _, err := cached.List(ctx); err != nil {
		t.Fatalf("fill profile cache: %v", err)
	}
	if _, err := service.Finalize(ctx, "m1"); err != nil {
		t.Fatalf("finalize m1: %v", err)
	}

	listed, err := cached.List(ctx)
	if err != nil {
		t.Fatalf("list cached profiles: %v", err)
	}
	afterFirst := make(map[string]int, len(listed))
	for _, p := range listed {
		afterFirst[p.ID] = p.Elo
	}
	for _, playerID := range players {
		if afterFirst[playerID] != f.elo(playerID) {
			t.Fatalf("cached elo for %s is stale: cached=%d stored=%d", playerID, afterFirst[playerID], f.elo(playerID))
		}
	}
	if afterFirst["p1"] != 1011 {
		t.Fatalf("unexpected elo after first mix: %d", afterFirst["p1"])
	}

	if _, err := service.Finalize(ctx, "m2"); err != nil {
		t.Fatalf("finalize m2: %v", err)
	}
	for _, row := range f.store.Rows(records.CollectionRatingChanges) {
		if row.String("mix_id") != "m2" {
			continue
		}
		playerID := row.String("player_id")
		if row.Int("elo_before") != afterFirst[playerID] {
			t.Fatalf("second mix for %s started from %d, want %d", playerID, row.Int("elo_before"), afterFirst[playerID])
		}
		if row.Int("elo_after") != f.elo(playerID) {
			t.Fatalf("stored elo for %s is %d, ledger says %d", playerID, f.elo(playerID), row.Int("elo_after"))
		}
	}
	if f.elo("p1") <= 1011 || f.elo("p3") >= 989 {
		t.Fatalf("second result was not applied on top of the first: p1=%d p3=%d", f.elo("p1"), f.elo("p3"))
	}
}

func TestFinalizeService_ResumesFromStagedChanges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLeagueFixture()
	f.seedMix("m1", []string{"p1", "p2"}, []string{"de_inferno"})
	// A previous run applied p1 and stopped before p2.
	f.store.Seed(records.CollectionRatingChanges,
		recordstore.Row{"mix_id": "m1", "player_id": "p1", "team": "A", "elo_before": 1000, "delta": 7.2, "elo_after": 1007, "applied": true},
		recordstore.Row{"mix_id": "m1", "player_id": "p2", "team": "B", "elo_before": 1000, "delta": -7.2, "elo_after": 993, "applied": false},
	)
	if err := f.profiles.UpdateElo(ctx, "p1", 1007); err != nil {
		t.Fatalf("seed elo: %v", err)
	}

	got, err := f.finalizeService().Finalize(ctx, "m1")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !got.Resumed {
		t.Fatalf("expected finalization to resume from the ledger")
	}
	if f.elo("p1") != 1007 || f.elo("p2") != 993 {
		t.Fatalf("unexpected ratings: p1=%d p2=%d", f.elo("p1"), f.elo("p2"))
	}
	if teams := f.store.Rows(records.CollectionMapTeams); len(teams) != 2 {
		t.Fatalf("expected assignments rebuilt from the ledger, got %d", len(teams))
	}
}

func TestFinalizeService_RefusesWithoutWrites(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		players []string
		maps    []string
		wantErr error
	}{
		{name: "single player", players: []string{"p1"}, maps: []string{"de_mirage"}, wantErr: rating.ErrNotEnoughPlayers},
		{name: "no maps", players: []string{"p1", "p2"}, wantErr: rating.ErrNoMapsSelected},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newLeagueFixture()
			f.seedMix("m1", tc.players, tc.maps)

			_, err := f.finalizeService().Finalize(context.Background(), "m1")
			if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected validation error %v, got %v", tc.wantErr, err)
			}
			if rows := f.store.Rows(records.CollectionRatingChanges); len(rows) != 0 {
				t.Fatalf("expected no staged changes, got %d", len(rows))
			}
			if rows := f.store.Rows(records.CollectionMapTeams); len(rows) != 0 {
				t.Fatalf("expected no team assignments, got %d", len(rows))
			}
			if f.elo("p1") != 1000 || f.mixStatus("m1") != "agendado" {
				t.Fatalf("expected untouched records")
			}
		})
	}
}

type failingEloRepo struct {
	profile.Repository
	failOn string
}

func (r failingEloRepo) UpdateElo(ctx context.Context, profileID string, elo int) error {
	if profileID == r.failOn {
		return errors.New("connection reset")
	}
	return r.Repository.UpdateElo(ctx, profileID, elo)
}

func TestFinalizeService_RollsBackOnWriteFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLeagueFixture()
	f.seedMix("m1", []string{"p1", "p2", "p3", "p4"}, []string{"de_nuke"})

	service := NewFinalizeService(f.mixes, f.maps, f.roster, f.stats, f.assignments, f.ratings,
		failingEloRepo{Repository: f.profiles, failOn: "p3"}, f.store, nil)
	if _, err := service.Finalize(ctx, "m1"); err == nil {
		t.Fatalf("expected finalize to fail")
	}

	if f.elo("p1") != 1000 {
		t.Fatalf("expected p1 rating rolled back, got %d", f.elo("p1"))
	}
	if rows := f.store.Rows(records.CollectionRatingChanges); len(rows) != 0 {
		t.Fatalf("expected staged ledger rolled back, got %d rows", len(rows))
	}
	if f.mixStatus("m1") != "agendado" {
		t.Fatalf("expected mix to stay scheduled")
	}
}

func TestFinalizeService_CustomSplitter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLeagueFixture()
	f.seedMix("m1", []string{"p1", "p2", "p3", "p4"}, []string{"de_dust2"})
	f.store.Seed(records.CollectionMapResults, recordstore.Row{"mix_id": "m1", "map_id": "de_dust2", "winner": "B"})

	alternate := func(players []string) ([]string, []string) {
		var a, b []string
		for i, p := range players {
			if i%2 == 0 {
				a = append(a, p)
				continue
			}
			b = append(b, p)
		}
		return a, b
	}

	got, err := f.finalizeService().WithTeamSplitter(alternate).Finalize(ctx, "m1")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if len(got.TeamB) != 2 || got.TeamB[0] != "p2" || got.TeamB[1] != "p4" {
		t.Fatalf("unexpected team B: %v", got.TeamB)
	}
	if f.elo("p2") != 1011 || f.elo("p1") != 989 {
		t.Fatalf("unexpected ratings: p1=%d p2=%d", f.elo("p1"), f.elo("p2"))
	}
}

func TestFinalizeService_MissingAndCancelledMix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLeagueFixture()
	f.seedMix("m1", []string{"p1", "p2"}, []string{"de_dust2"})
	if err := f.mixes.UpdateStatus(ctx, "m1", mix.StatusCancelled); err != nil {
		t.Fatalf("cancel mix: %v", err)
	}

	service := f.finalizeService()
	if _, err := service.Finalize(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := service.Finalize(ctx, "m1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for cancelled mix, got %v", err)
	}
}
