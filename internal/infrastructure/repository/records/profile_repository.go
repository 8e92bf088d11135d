package records

import (
	"context"
	"fmt"

	"github.com/riskibarqy/mix-league/internal/domain/profile"
	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
)

var profileColumns = []string{"id", "nick", "nome", "role", "elo"}

type ProfileRepository struct {
	store recordstore.Store
}

func NewProfileRepository(store recordstore.Store) *ProfileRepository {
	return &ProfileRepository{store: store}
}

func (r *ProfileRepository) List(ctx context.Context) ([]profile.Profile, error) {
	rows, err := r.store.Select(ctx, CollectionProfiles,
		recordstore.Select(profileColumns...).OrderBy(recordstore.Desc("elo")),
	)
	if err != nil {
		return nil, fmt.Errorf("select profiles: %w", err)
	}
	return profilesFromRows(rows), nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, profileID string) (profile.Profile, bool, error) {
	rows, err := r.store.Select(ctx, CollectionProfiles,
		recordstore.Select(profileColumns...).Where(recordstore.Eq("id", profileID)).WithLimit(1),
	)
	if err != nil {
		return profile.Profile{}, false, fmt.Errorf("get profile by id: %w", err)
	}
	if len(rows) == 0 {
		return profile.Profile{}, false, nil
	}
	return profileFromRow(rows[0]), true, nil
}

func (r *ProfileRepository) GetByIDs(ctx context.Context, profileIDs []string) ([]profile.Profile, error) {
	if len(profileIDs) == 0 {
		return nil, nil
	}
	rows, err := r.store.Select(ctx, CollectionProfiles,
		recordstore.Select(profileColumns...).Where(recordstore.InStrings("id", profileIDs)),
	)
	if err != nil {
		return nil, fmt.Errorf("select profiles by ids: %w", err)
	}
	return profilesFromRows(rows), nil
}

func (r *ProfileRepository) UpdateElo(ctx context.Context, profileID string, elo int) error {
	err := r.store.Update(ctx, CollectionProfiles,
		recordstore.Row{"elo": elo},
		recordstore.Eq("id", profileID),
	)
	if err != nil {
		return fmt.Errorf("update profile elo: %w", err)
	}
	return nil
}

func profilesFromRows(rows []recordstore.Row) []profile.Profile {
	out := make([]profile.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, profileFromRow(row))
	}
	return out
}

func profileFromRow(row recordstore.Row) profile.Profile {
	return profile.Profile{
		ID:   row.String("id"),
		Nick: row.StringOr("nick", profile.PlaceholderNick),
		Name: row.String("nome"),
		Role: parseRole(row.String("role")),
		Elo:  row.IntOr("elo", profile.DefaultElo),
	}
}
