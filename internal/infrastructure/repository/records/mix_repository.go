package records

import (
	"context"
	"fmt"

	"github.com/riskibarqy/mix-league/internal/domain/mix"
	"github.com/riskibarqy/mix-league/internal/platform/id"
	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
)

type MixRepository struct {
	store recordstore.Store
	ids   id.Generator
}

func NewMixRepository(store recordstore.Store, ids id.Generator) *MixRepository {
	return &MixRepository{store: store, ids: ids}
}

func (r *MixRepository) ListBySeason(ctx context.Context, seasonID string) ([]mix.Mix, error) {
	rows, err := r.store.Select(ctx, CollectionMixes,
		recordstore.Select().
			Where(recordstore.Eq("season_id", seasonID)).
			OrderBy(recordstore.Desc("dt_mix")),
	)
	if err != nil {
		return nil, fmt.Errorf("select mixes by season: %w", err)
	}

	out := make([]mix.Mix, 0, len(rows))
	for _, row := range rows {
		out = append(out, mixFromRow(row))
	}
	return out, nil
}

func (r *MixRepository) GetByID(ctx context.Context, mixID string) (mix.Mix, bool, error) {
	rows, err := r.store.Select(ctx, CollectionMixes,
		recordstore.Select().Where(recordstore.Eq("id", mixID)).WithLimit(1),
	)
	if err != nil {
		return mix.Mix{}, false, fmt.Errorf("get mix by id: %w", err)
	}
	if len(rows) == 0 {
		return mix.Mix{}, false, nil
	}
	return mixFromRow(rows[0]), true, nil
}

func (r *MixRepository) Create(ctx context.Context, item mix.Mix) (mix.Mix, error) {
	if item.ID == "" {
		newID, err := r.ids.NewID()
		if err != nil {
			return mix.Mix{}, fmt.Errorf("generate mix id: %w", err)
		}
		item.ID = newID
	}

	stored, err := r.store.Insert(ctx, CollectionMixes, recordstore.Row{
		"id":                item.ID,
		"season_id":         item.SeasonID,
		"dt_mix":            item.ScheduledAt.UTC(),
		"valor_por_jogador": item.Fee,
		"status":            storedMixStatus(item.Status),
	})
	if err != nil {
		return mix.Mix{}, fmt.Errorf("insert mix: %w", err)
	}
	return mixFromRow(stored), nil
}

func (r *MixRepository) UpdateStatus(ctx context.Context, mixID string, status mix.Status) error {
	err := r.store.Update(ctx, CollectionMixes,
		recordstore.Row{"status": storedMixStatus(status)},
		recordstore.Eq("id", mixID),
	)
	if err != nil {
		return fmt.Errorf("update mix status: %w", err)
	}
	return nil
}

func mixFromRow(row recordstore.Row) mix.Mix {
	return mix.Mix{
		ID:          row.String("id"),
		SeasonID:    row.String("season_id"),
		ScheduledAt: row.Time("dt_mix"),
		Fee:         row.Float("valor_por_jogador"),
		Status:      parseMixStatus(row.String("status")),
	}
}
