package records

import (
	"context"
	"fmt"

	"github.com/riskibarqy/mix-league/internal/domain/mapstat"
	"github.com/riskibarqy/mix-league/internal/domain/mix"
	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
)

var statColumns = []string{"mix_id", "player_id", "map_id", "kills", "deaths", "assists", "mvps"}

type StatRepository struct {
	store recordstore.Store
}

func NewStatRepository(store recordstore.Store) *StatRepository {
	return &StatRepository{store: store}
}

func (r *StatRepository) ListByMix(ctx context.Context, mixID string) ([]mapstat.Stat, error) {
	rows, err := r.store.Select(ctx, CollectionMapStats,
		recordstore.Select(statColumns...).Where(recordstore.Eq("mix_id", mixID)),
	)
	if err != nil {
		return nil, fmt.Errorf("select map stats: %w", err)
	}
	return statsFromRows(rows), nil
}

func (r *StatRepository) ListByMixes(ctx context.Context, mixIDs []string) ([]mapstat.Stat, error) {
	if len(mixIDs) == 0 {
		return nil, nil
	}
	rows, err := r.store.Select(ctx, CollectionMapStats,
		recordstore.Select(statColumns...).Where(recordstore.InStrings("mix_id", mixIDs)),
	)
	if err != nil {
		return nil, fmt.Errorf("select map stats by mixes: %w", err)
	}
	return statsFromRows(rows), nil
}

func (r *StatRepository) Upsert(ctx context.Context, item mapstat.Stat) error {
	err := r.store.Upsert(ctx, CollectionMapStats, recordstore.Row{
		"mix_id":    item.MixID,
		"player_id": item.PlayerID,
		"map_id":    item.MapID,
		"kills":     item.Kills,
		"deaths":    item.Deaths,
		"assists":   item.Assists,
		"mvps":      item.MVPs,
	}, conflictKey(CollectionMapStats)...)
	if err != nil {
		return fmt.Errorf("upsert map stat: %w", err)
	}
	return nil
}

func (r *StatRepository) DeleteByPlayer(ctx context.Context, mixID, playerID string) error {
	err := r.store.Delete(ctx, CollectionMapStats,
		recordstore.Eq("mix_id", mixID),
		recordstore.Eq("player_id", playerID),
	)
	if err != nil {
		return fmt.Errorf("delete map stats of player: %w", err)
	}
	return nil
}

func statsFromRows(rows []recordstore.Row) []mapstat.Stat {
	out := make([]mapstat.Stat, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapstat.Stat{
			MixID:    row.String("mix_id"),
			PlayerID: row.String("player_id"),
			MapID:    row.String("map_id"),
			Kills:    row.Int("kills"),
			Deaths:   row.Int("deaths"),
			Assists:  row.Int("assists"),
			MVPs:     row.Int("mvps"),
		})
	}
	return out
}

// AssignmentRepository stores the per-map team audit trail.
type AssignmentRepository struct {
	store recordstore.Store
}

func NewAssignmentRepository(store recordstore.Store) *AssignmentRepository {
	return &AssignmentRepository{store: store}
}

func (r *AssignmentRepository) ListByMix(ctx context.Context, mixID string) ([]mapstat.TeamAssignment, error) {
	rows, err := r.store.Select(ctx, CollectionMapTeams,
		recordstore.Select("mix_id", "map_id", "player_id", "team").Where(recordstore.Eq("mix_id", mixID)),
	)
	if err != nil {
		return nil, fmt.Errorf("select map teams: %w", err)
	}

	out := make([]mapstat.TeamAssignment, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapstat.TeamAssignment{
			MixID:    row.String("mix_id"),
			MapID:    row.String("map_id"),
			PlayerID: row.String("player_id"),
			Team:     mix.Team(row.String("team")),
		})
	}
	return out, nil
}

// Save upserts one row at a time, so a retried finalization rewrites the same rows.
func (r *AssignmentRepository) Save(ctx context.Context, items []mapstat.TeamAssignment) error {
	for _, item := range items {
		err := r.store.Upsert(ctx, CollectionMapTeams, recordstore.Row{
			"mix_id":    item.MixID,
			"map_id":    item.MapID,
			"player_id": item.PlayerID,
			"team":      string(item.Team),
		}, conflictKey(CollectionMapTeams)...)
		if err != nil {
			return fmt.Errorf("upsert map team: %w", err)
		}
	}
	return nil
}
