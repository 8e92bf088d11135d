package records

import (
	"context"
	"fmt"

	"github.com/riskibarqy/mix-league/internal/domain/mix"
	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
)

// MapRepository covers the map catalog, mix map selections and map results.
type MapRepository struct {
	store recordstore.Store
}

func NewMapRepository(store recordstore.Store) *MapRepository {
	return &MapRepository{store: store}
}

func (r *MapRepository) ListCatalog(ctx context.Context) ([]mix.GameMap, error) {
	rows, err := r.store.Select(ctx, CollectionMaps,
		recordstore.Select("id", "nome").OrderBy(recordstore.Asc("nome")),
	)
	if err != nil {
		return nil, fmt.Errorf("select maps: %w", err)
	}

	out := make([]mix.GameMap, 0, len(rows))
	for _, row := range rows {
		out = append(out, mix.GameMap{
			ID:   row.String("id"),
			Name: row.StringOr("nome", row.String("id")),
		})
	}
	return out, nil
}

func (r *MapRepository) ListSelected(ctx context.Context, mixID string) ([]mix.MapSelection, error) {
	rows, err := r.store.Select(ctx, CollectionMixMaps,
		recordstore.Select("mix_id", "map_id", "ordem").
			Where(recordstore.Eq("mix_id", mixID)).
			OrderBy(recordstore.Asc("ordem")),
	)
	if err != nil {
		return nil, fmt.Errorf("select mix maps: %w", err)
	}

	out := make([]mix.MapSelection, 0, len(rows))
	for _, row := range rows {
		out = append(out, mix.MapSelection{
			MixID:    row.String("mix_id"),
			MapID:    row.String("map_id"),
			Position: row.Int("ordem"),
		})
	}
	return out, nil
}

func (r *MapRepository) Select(ctx context.Context, item mix.MapSelection) error {
	_, err := r.store.Insert(ctx, CollectionMixMaps, recordstore.Row{
		"mix_id": item.MixID,
		"map_id": item.MapID,
		"ordem":  item.Position,
	})
	if err != nil {
		return fmt.Errorf("insert mix map: %w", err)
	}
	return nil
}

func (r *MapRepository) Unselect(ctx context.Context, mixID, mapID string) error {
	err := r.store.Delete(ctx, CollectionMixMaps,
		recordstore.Eq("mix_id", mixID),
		recordstore.Eq("map_id", mapID),
	)
	if err != nil {
		return fmt.Errorf("delete mix map: %w", err)
	}
	return nil
}

func (r *MapRepository) ListResults(ctx context.Context, mixID string) ([]mix.MapResult, error) {
	rows, err := r.store.Select(ctx, CollectionMapResults,
		recordstore.Select("mix_id", "map_id", "winner").Where(recordstore.Eq("mix_id", mixID)),
	)
	if err != nil {
		return nil, fmt.Errorf("select map results: %w", err)
	}

	out := make([]mix.MapResult, 0, len(rows))
	for _, row := range rows {
		winner, err := mix.ParseWinner(row.String("winner"))
		if err != nil {
			winner = mix.WinnerDraw
		}
		out = append(out, mix.MapResult{
			MixID:  row.String("mix_id"),
			MapID:  row.String("map_id"),
			Winner: winner,
		})
	}
	return out, nil
}

func (r *MapRepository) UpsertResult(ctx context.Context, item mix.MapResult) error {
	err := r.store.Upsert(ctx, CollectionMapResults, recordstore.Row{
		"mix_id": item.MixID,
		"map_id": item.MapID,
		"winner": string(item.Winner),
	}, conflictKey(CollectionMapResults)...)
	if err != nil {
		return fmt.Errorf("upsert map result: %w", err)
	}
	return nil
}
