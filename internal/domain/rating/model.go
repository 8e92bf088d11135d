package rating

import (
	"context"

	"github.com/riskibarqy/mix-league/internal/domain/mix"
)

// Change is one player's staged rating update for a mix. A mix with staged
// but unapplied changes is a finalization in progress.
type Change struct {
	MixID     string
	PlayerID  string
	Team      mix.Team
	EloBefore int
	Delta     float64
	EloAfter  int
	Applied   bool
}

// Repository is the rating change ledger.
type Repository interface {
	ListByMix(ctx context.Context, mixID string) ([]Change, error)
	Stage(ctx context.Context, items []Change) error
	MarkApplied(ctx context.Context, mixID, playerID string) error
}
