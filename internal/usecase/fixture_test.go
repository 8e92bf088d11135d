package usecase

import (
	"github.com/riskibarqy/mix-league/internal/infrastructure/recordstore/memory"
	"github.com/riskibarqy/mix-league/internal/infrastructure/repository/records"
	"github.com/riskibarqy/mix-league/internal/platform/id"
	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
)

type leagueFixture struct {
	store       *memory.Store
	seasons     *records.SeasonRepository
	mixes       *records.MixRepository
	maps        *records.MapRepository
	profiles    *records.ProfileRepository
	roster      *records.RosterRepository
	stats       *records.StatRepository
	assignments *records.AssignmentRepository
	ratings     *records.RatingRepository
}

func newLeagueFixture() *leagueFixture {
	store := memory.New(records.MemoryOptions()...)

	return &leagueFixture{
		store:       store,
		seasons:     records.NewSeasonRepository(store, id.NewSequence("s")),
		mixes:       records.NewMixRepository(store, id.NewSequence("m")),
		maps:        records.NewMapRepository(store),
		profiles:    records.NewProfileRepository(store),
		roster:      records.NewRosterRepository(store),
		stats:       records.NewStatRepository(store),
		assignments: records.NewAssignmentRepository(store),
		ratings:     records.NewRatingRepository(store),
	}
}

func (f *leagueFixture) finalizeService() *FinalizeService {
	return NewFinalizeService(f.mixes, f.maps, f.roster, f.stats, f.assignments, f.ratings, f.profiles, f.store, nil)
}

func (f *leagueFixture) mixService() *MixService {
	return NewMixService(f.mixes, f.maps, f.roster, f.stats, f.profiles, f.store, nil).
		WithRatingLedger(f.ratings)
}

// seedMix stores a scheduled mix with the given players on its roster, in
// order, and the given maps selected.
func (f *leagueFixture) seedMix(mixID string, players []string, maps []string) {
	f.store.Seed(records.CollectionSeasons, recordstore.Row{
		"id": "s1", "nome": "Season 1", "dt_inicio": "2025-01-01", "dt_fim": "2025-06-30", "is_active": true,
	})
	f.store.Seed(records.CollectionMixes, recordstore.Row{
		"id": mixID, "season_id": "s1", "dt_mix": "2025-02-10", "valor_por_jogador": 30.0, "status": "agendado",
	})
	for _, playerID := range players {
		f.store.Seed(records.CollectionProfiles, recordstore.Row{
			"id": playerID, "nick": "nick-" + playerID, "nome": playerID, "role": "jogador", "elo": 1000,
		})
		f.store.Seed(records.CollectionMixPlayers, recordstore.Row{
			"mix_id": mixID, "player_id": playerID, "payment_status": "pendente", "paid_value": 0.0,
		})
	}
	for i, mapID := range maps {
		f.store.Seed(records.CollectionMaps, recordstore.Row{"id": mapID, "nome": mapID})
		f.store.Seed(records.CollectionMixMaps, recordstore.Row{"mix_id": mixID, "map_id": mapID, "ordem": i + 1})
	}
}

// addMix stores another scheduled mix in the given season for players and
// maps that seedMix already created.
func (f *leagueFixture) addMix(seasonID, mixID string, players []string, maps []string) {
	f.store.Seed(records.CollectionMixes, recordstore.Row{
		"id": mixID, "season_id": seasonID, "dt_mix": "2025-03-10", "valor_por_jogador": 30.0, "status": "agendado",
	})
	for _, playerID := range players {
		f.store.Seed(records.CollectionMixPlayers, recordstore.Row{
			"mix_id": mixID, "player_id": playerID, "payment_status": "pendente", "paid_value": 0.0,
		})
	}
	for i, mapID := range maps {
		f.store.Seed(records.CollectionMixMaps, recordstore.Row{"mix_id": mixID, "map_id": mapID, "ordem": i + 1})
	}
}

func (f *leagueFixture) elo(playerID string) int {
	for _, row := range f.store.Rows(records.CollectionProfiles) {
		if row.String("id") == playerID {
			return row.Int("elo")
		}
	}
	return -1
}

func (f *leagueFixture) mixStatus(mixID string) string {
	for _, row := range f.store.Rows(records.CollectionMixes) {
		if row.String("id") == mixID {
			return row.String("status")
		}
	}
	return ""
}
