package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/mix-league/internal/domain/mapstat"
	"github.com/riskibarqy/mix-league/internal/domain/mix"
	"github.com/riskibarqy/mix-league/internal/domain/profile"
	"github.com/riskibarqy/mix-league/internal/domain/rating"
	"github.com/riskibarqy/mix-league/internal/domain/roster"
	"github.com/riskibarqy/mix-league/internal/domain/season"
	"github.com/riskibarqy/mix-league/internal/infrastructure/recordstore/memory"
	"github.com/riskibarqy/mix-league/internal/platform/id"
	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
)

func newMemoryStore() *memory.Store {
	return memory.New(MemoryOptions()...)
}

func TestSeasonRepository_CreateListGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	repo := NewSeasonRepository(store, id.NewSequence("s"))

	first, err := repo.Create(ctx, season.Season{
		Name:     "Season 1",
		StartsOn: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndsOn:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Active:   false,
	})
	if err != nil {
		t.Fatalf("create season: %v", err)
	}
	if first.ID != "s1" {
		t.Fatalf("expected generated id s1, got %q", first.ID)
	}
	if _, err := repo.Create(ctx, season.Season{
		Name:     "Season 2",
		StartsOn: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndsOn:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Active:   true,
	}); err != nil {
		t.Fatalf("create season: %v", err)
	}

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list seasons: %v", err)
	}
	if len(items) != 2 || items[0].Name != "Season 2" {
		t.Fatalf("expected newest season first, got %+v", items)
	}

	active, err := repo.ListActive(ctx)
	if err != nil || len(active) != 1 || active[0].ID != "s2" {
		t.Fatalf("unexpected active seasons: %+v err=%v", active, err)
	}

	got, ok, err := repo.GetByID(ctx, "s1")
	if err != nil || !ok {
		t.Fatalf("get season: ok=%v err=%v", ok, err)
	}
	if !got.EndsOn.Equal(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end date: %v", got.EndsOn)
	}
	if _, ok, _ := repo.GetByID(ctx, "missing"); ok {
		t.Fatalf("expected missing season")
	}
}

func TestMixRepository_StatusIsStoredInBackendVocabulary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	repo := NewMixRepository(store, id.NewSequence("m"))

	created, err := repo.Create(ctx, mix.Mix{
		SeasonID:    "s1",
		ScheduledAt: time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC),
		Fee:         30,
		Status:      mix.StatusScheduled,
	})
	if err != nil {
		t.Fatalf("create mix: %v", err)
	}
	if err := repo.UpdateStatus(ctx, created.ID, mix.StatusFinalized); err != nil {
		t.Fatalf("update status: %v", err)
	}

	rows := store.Rows(CollectionMixes)
	if rows[0].String("status") != "finalizado" {
		t.Fatalf("expected stored status finalizado, got %q", rows[0].String("status"))
	}

	got, ok, err := repo.GetByID(ctx, created.ID)
	if err != nil || !ok || got.Status != mix.StatusFinalized || got.Fee != 30 {
		t.Fatalf("unexpected mix: %+v ok=%v err=%v", got, ok, err)
	}
}

func TestProfileRepository_AppliesBoundaryDefaults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	store.Seed(CollectionProfiles,
		recordstore.Row{"id": "p1", "nick": "fallen", "role": "admin", "elo": int64(1120)},
		recordstore.Row{"id": "p2", "role": "jogador", "elo": nil},
	)
	repo := NewProfileRepository(store)

	items, err := repo.GetByIDs(ctx, []string{"p1", "p2"})
	if err != nil {
		t.Fatalf("get profiles: %v", err)
	}
	byID := profile.Index(items)
	if byID["p1"].Role != profile.RoleAdmin || byID["p1"].Elo != 1120 {
		t.Fatalf("unexpected p1: %+v", byID["p1"])
	}
	if byID["p2"].Nick != profile.PlaceholderNick || byID["p2"].Elo != profile.DefaultElo || byID["p2"].Role != profile.RolePlayer {
		t.Fatalf("unexpected defaults for p2: %+v", byID["p2"])
	}

	if err := repo.UpdateElo(ctx, "p2", 989); err != nil {
		t.Fatalf("update elo: %v", err)
	}
	got, _, _ := repo.GetByID(ctx, "p2")
	if got.Elo != 989 {
		t.Fatalf("expected elo 989, got %d", got.Elo)
	}
}

func TestRosterRepository_AddRemovePayment(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	repo := NewRosterRepository(store)

	for _, playerID := range []string{"p2", "p1", "p3"} {
		if err := repo.Add(ctx, roster.Entry{MixID: "m1", PlayerID: playerID, Payment: roster.PaymentPending, PaidValue: 99}); err != nil {
			t.Fatalf("add %s: %v", playerID, err)
		}
	}
	err := repo.Add(ctx, roster.Entry{MixID: "m1", PlayerID: "p1", Payment: roster.PaymentPending})
	if !errors.Is(err, recordstore.ErrConflict) {
		t.Fatalf("expected conflict on duplicate entry, got %v", err)
	}

	if err := repo.SetPayment(ctx, "m1", "p1", roster.PaymentPaid, 30); err != nil {
		t.Fatalf("set payment: %v", err)
	}
	if err := repo.Remove(ctx, "m1", "p3"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	entries, err := repo.ListByMix(ctx, "m1")
	if err != nil {
		t.Fatalf("list roster: %v", err)
	}
	if len(entries) != 2 || entries[0].PlayerID != "p2" || entries[1].PlayerID != "p1" {
		t.Fatalf("expected storage order to be preserved, got %+v", entries)
	}
	if entries[0].PaidValue != 0 {
		t.Fatalf("pending entry must store zero paid value, got %v", entries[0].PaidValue)
	}
	if !entries[1].IsPaid() || entries[1].PaidValue != 30 {
		t.Fatalf("unexpected paid entry: %+v", entries[1])
	}
}

func TestStatRepository_UpsertAndDeleteByPlayer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	repo := NewStatRepository(store)

	stat := mapstat.Stat{MixID: "m1", PlayerID: "p1", MapID: "de_dust2", Kills: 10, Deaths: 5}
	if err := repo.Upsert(ctx, stat); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	stat.Kills = 12
	if err := repo.Upsert(ctx, stat); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if err := repo.Upsert(ctx, mapstat.Stat{MixID: "m1", PlayerID: "p2", MapID: "de_dust2", Kills: 3}); err != nil {
		t.Fatalf("upsert p2: %v", err)
	}

	items, err := repo.ListByMixes(ctx, []string{"m1"})
	if err != nil {
		t.Fatalf("list stats: %v", err)
	}
	if len(items) != 2 || items[0].Kills != 12 {
		t.Fatalf("unexpected stats: %+v", items)
	}

	if err := repo.DeleteByPlayer(ctx, "m1", "p1"); err != nil {
		t.Fatalf("delete by player: %v", err)
	}
	items, _ = repo.ListByMix(ctx, "m1")
	if len(items) != 1 || items[0].PlayerID != "p2" {
		t.Fatalf("expected only p2 stats, got %+v", items)
	}
}

func TestMapRepository_SelectionsAndResults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	store.Seed(CollectionMaps,
		recordstore.Row{"id": "de_mirage", "nome": "Mirage"},
		recordstore.Row{"id": "de_dust2", "nome": "Dust II"},
	)
	store.Seed(CollectionMapResults, recordstore.Row{"mix_id": "m1", "map_id": "de_nuke", "winner": "??"})
	repo := NewMapRepository(store)

	catalog, err := repo.ListCatalog(ctx)
	if err != nil || len(catalog) != 2 || catalog[0].ID != "de_dust2" {
		t.Fatalf("unexpected catalog: %+v err=%v", catalog, err)
	}

	_ = repo.Select(ctx, mix.MapSelection{MixID: "m1", MapID: "de_mirage", Position: 2})
	_ = repo.Select(ctx, mix.MapSelection{MixID: "m1", MapID: "de_dust2", Position: 1})
	selected, err := repo.ListSelected(ctx, "m1")
	if err != nil || len(selected) != 2 || selected[0].MapID != "de_dust2" {
		t.Fatalf("expected selections ordered by position: %+v err=%v", selected, err)
	}
	if err := repo.Unselect(ctx, "m1", "de_mirage"); err != nil {
		t.Fatalf("unselect: %v", err)
	}

	if err := repo.UpsertResult(ctx, mix.MapResult{MixID: "m1", MapID: "de_dust2", Winner: mix.WinnerA}); err != nil {
		t.Fatalf("upsert result: %v", err)
	}
	if err := repo.UpsertResult(ctx, mix.MapResult{MixID: "m1", MapID: "de_dust2", Winner: mix.WinnerB}); err != nil {
		t.Fatalf("upsert result again: %v", err)
	}
	results, err := repo.ListResults(ctx, "m1")
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	byMap := mix.ResultsByMap(results)
	if len(results) != 2 || byMap["de_dust2"] != mix.WinnerB || byMap["de_nuke"] != mix.WinnerDraw {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestRatingRepository_StageAndMarkApplied(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	repo := NewRatingRepository(store)

	err := repo.Stage(ctx, []rating.Change{
		{MixID: "m1", PlayerID: "p1", Team: mix.TeamA, EloBefore: 1000, Delta: 10.8, EloAfter: 1011},
		{MixID: "m1", PlayerID: "p2", Team: mix.TeamB, EloBefore: 1000, Delta: -10.8, EloAfter: 989},
	})
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := repo.MarkApplied(ctx, "m1", "p1"); err != nil {
		t.Fatalf("mark applied: %v", err)
	}

	changes, err := repo.ListByMix(ctx, "m1")
	if err != nil {
		t.Fatalf("list changes: %v", err)
	}
	if len(changes) != 2 || !changes[0].Applied || changes[1].Applied {
		t.Fatalf("unexpected ledger: %+v", changes)
	}
	if changes[1].EloAfter != 989 || changes[1].Team != mix.TeamB || changes[1].Delta != -10.8 {
		t.Fatalf("unexpected change: %+v", changes[1])
	}
}

func TestSeed_MemoryStoreIsUsable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	store.Seed(CollectionMaps, SeedMapPool()...)
	store.Seed(CollectionProfiles, SeedProfiles()...)

	maps, err := NewMapRepository(store).ListCatalog(ctx)
	if err != nil {
		t.Fatalf("list catalog: %v", err)
	}
	if len(maps) != 7 || maps[0].Name != "Ancient" {
		t.Fatalf("unexpected catalog: %+v", maps)
	}

	profiles, err := NewProfileRepository(store).List(ctx)
	if err != nil {
		t.Fatalf("list profiles: %v", err)
	}
	if len(profiles) != 10 || profiles[0].ID != "p-ace" {
		t.Fatalf("unexpected profiles order: %+v", profiles)
	}
	if profiles[len(profiles)-1].Role != profile.RolePlayer {
		t.Fatalf("unexpected role: %q", profiles[len(profiles)-1].Role)
	}
}
