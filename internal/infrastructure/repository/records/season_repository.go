package records

import (
	"context"
	"fmt"

	"github.com/riskibarqy/mix-league/internal/domain/season"
	"github.com/riskibarqy/mix-league/internal/platform/id"
	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
)

type SeasonRepository struct {
	store recordstore.Store
	ids   id.Generator
}

func NewSeasonRepository(store recordstore.Store, ids id.Generator) *SeasonRepository {
	return &SeasonRepository{store: store, ids: ids}
}

func (r *SeasonRepository) List(ctx context.Context) ([]season.Season, error) {
	rows, err := r.store.Select(ctx, CollectionSeasons,
		recordstore.Select().OrderBy(recordstore.Desc("dt_inicio")),
	)
	if err != nil {
		return nil, fmt.Errorf("select seasons: %w", err)
	}
	return seasonsFromRows(rows), nil
}

func (r *SeasonRepository) ListActive(ctx context.Context) ([]season.Season, error) {
	rows, err := r.store.Select(ctx, CollectionSeasons,
		recordstore.Select().
			Where(recordstore.Eq("is_active", true)).
			OrderBy(recordstore.Desc("dt_inicio")),
	)
	if err != nil {
		return nil, fmt.Errorf("select active seasons: %w", err)
	}
	return seasonsFromRows(rows), nil
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	rows, err := r.store.Select(ctx, CollectionSeasons,
		recordstore.Select().Where(recordstore.Eq("id", seasonID)).WithLimit(1),
	)
	if err != nil {
		return season.Season{}, false, fmt.Errorf("get season by id: %w", err)
	}
	if len(rows) == 0 {
		return season.Season{}, false, nil
	}
	return seasonFromRow(rows[0]), true, nil
}

func (r *SeasonRepository) Create(ctx context.Context, item season.Season) (season.Season, error) {
	if item.ID == "" {
		newID, err := r.ids.NewID()
		if err != nil {
			return season.Season{}, fmt.Errorf("generate season id: %w", err)
		}
		item.ID = newID
	}

	stored, err := r.store.Insert(ctx, CollectionSeasons, recordstore.Row{
		"id":        item.ID,
		"nome":      item.Name,
		"dt_inicio": item.StartsOn.Format(dateLayout),
		"dt_fim":    item.EndsOn.Format(dateLayout),
		"is_active": item.Active,
	})
	if err != nil {
		return season.Season{}, fmt.Errorf("insert season: %w", err)
	}
	return seasonFromRow(stored), nil
}

func seasonsFromRows(rows []recordstore.Row) []season.Season {
	out := make([]season.Season, 0, len(rows))
	for _, row := range rows {
		out = append(out, seasonFromRow(row))
	}
	return out
}

func seasonFromRow(row recordstore.Row) season.Season {
	return season.Season{
		ID:       row.String("id"),
		Name:     row.String("nome"),
		StartsOn: row.Time("dt_inicio"),
		EndsOn:   row.Time("dt_fim"),
		Active:   row.Bool("is_active"),
	}
}
