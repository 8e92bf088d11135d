package records

import (
	"context"
	"fmt"

	"github.com/riskibarqy/mix-league/internal/domain/mix"
	"github.com/riskibarqy/mix-league/internal/domain/rating"
	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
)

type RatingRepository struct {
	store recordstore.Store
}

func NewRatingRepository(store recordstore.Store) *RatingRepository {
	return &RatingRepository{store: store}
}

func (r *RatingRepository) ListByMix(ctx context.Context, mixID string) ([]rating.Change, error) {
	rows, err := r.store.Select(ctx, CollectionRatingChanges,
		recordstore.Select().Where(recordstore.Eq("mix_id", mixID)),
	)
	if err != nil {
		return nil, fmt.Errorf("select rating changes: %w", err)
	}

	out := make([]rating.Change, 0, len(rows))
	for _, row := range rows {
		out = append(out, rating.Change{
			MixID:     row.String("mix_id"),
			PlayerID:  row.String("player_id"),
			Team:      mix.Team(row.String("team")),
			EloBefore: row.Int("elo_before"),
			Delta:     row.Float("delta"),
			EloAfter:  row.Int("elo_after"),
			Applied:   row.Bool("applied"),
		})
	}
	return out, nil
}

func (r *RatingRepository) Stage(ctx context.Context, items []rating.Change) error {
	for _, item := range items {
		err := r.store.Upsert(ctx, CollectionRatingChanges, recordstore.Row{
			"mix_id":     item.MixID,
			"player_id":  item.PlayerID,
			"team":       string(item.Team),
			"elo_before": item.EloBefore,
			"delta":      item.Delta,
			"elo_after":  item.EloAfter,
			"applied":    false,
		}, conflictKey(CollectionRatingChanges)...)
		if err != nil {
			return fmt.Errorf("stage rating change: %w", err)
		}
	}
	return nil
}

func (r *RatingRepository) MarkApplied(ctx context.Context, mixID, playerID string) error {
	err := r.store.Update(ctx, CollectionRatingChanges,
		recordstore.Row{"applied": true},
		recordstore.Eq("mix_id", mixID),
		recordstore.Eq("player_id", playerID),
	)
	if err != nil {
		return fmt.Errorf("mark rating change applied: %w", err)
	}
	return nil
}
