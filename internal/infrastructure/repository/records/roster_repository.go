package records

import (
	"context"
	"fmt"

	"github.com/riskibarqy/mix-league/internal/domain/roster"
	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
)

var rosterColumns = []string{"mix_id", "player_id", "payment_status", "paid_value"}

// RosterRepository lists a mix roster in join order; that order decides the
// team split at finalization.
type RosterRepository struct {
	store recordstore.Store
}

func NewRosterRepository(store recordstore.Store) *RosterRepository {
	return &RosterRepository{store: store}
}

func (r *RosterRepository) ListByMix(ctx context.Context, mixID string) ([]roster.Entry, error) {
	rows, err := r.store.Select(ctx, CollectionMixPlayers,
		recordstore.Select(rosterColumns...).
			Where(recordstore.Eq("mix_id", mixID)).
			OrderBy(recordstore.Asc("joined_at")),
	)
	if err != nil {
		return nil, fmt.Errorf("select mix players: %w", err)
	}
	return entriesFromRows(rows), nil
}

func (r *RosterRepository) ListByMixes(ctx context.Context, mixIDs []string) ([]roster.Entry, error) {
	if len(mixIDs) == 0 {
		return nil, nil
	}
	rows, err := r.store.Select(ctx, CollectionMixPlayers,
		recordstore.Select(rosterColumns...).Where(recordstore.InStrings("mix_id", mixIDs)),
	)
	if err != nil {
		return nil, fmt.Errorf("select mix players by mixes: %w", err)
	}
	return entriesFromRows(rows), nil
}

func (r *RosterRepository) Add(ctx context.Context, item roster.Entry) error {
	_, err := r.store.Insert(ctx, CollectionMixPlayers, recordstore.Row{
		"mix_id":         item.MixID,
		"player_id":      item.PlayerID,
		"payment_status": storedPayment(item.Payment),
		"paid_value":     paidValue(item),
	})
	if err != nil {
		return fmt.Errorf("insert mix player: %w", err)
	}
	return nil
}

func (r *RosterRepository) Remove(ctx context.Context, mixID, playerID string) error {
	err := r.store.Delete(ctx, CollectionMixPlayers,
		recordstore.Eq("mix_id", mixID),
		recordstore.Eq("player_id", playerID),
	)
	if err != nil {
		return fmt.Errorf("delete mix player: %w", err)
	}
	return nil
}

func (r *RosterRepository) SetPayment(ctx context.Context, mixID, playerID string, status roster.PaymentStatus, amount float64) error {
	item := roster.Entry{Payment: status, PaidValue: amount}
	err := r.store.Update(ctx, CollectionMixPlayers,
		recordstore.Row{
			"payment_status": storedPayment(status),
			"paid_value":     paidValue(item),
		},
		recordstore.Eq("mix_id", mixID),
		recordstore.Eq("player_id", playerID),
	)
	if err != nil {
		return fmt.Errorf("update mix player payment: %w", err)
	}
	return nil
}

// paidValue keeps the stored amount at zero unless the entry is paid.
func paidValue(item roster.Entry) float64 {
	if !item.IsPaid() {
		return 0
	}
	return item.PaidValue
}

func entriesFromRows(rows []recordstore.Row) []roster.Entry {
	out := make([]roster.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, roster.Entry{
			MixID:     row.String("mix_id"),
			PlayerID:  row.String("player_id"),
			Payment:   parsePayment(row.String("payment_status")),
			PaidValue: row.Float("paid_value"),
		})
	}
	return out
}
