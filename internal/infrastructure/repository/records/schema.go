package records

import (
	"github.com/riskibarqy/mix-league/internal/domain/mix"
	"github.com/riskibarqy/mix-league/internal/domain/profile"
	"github.com/riskibarqy/mix-league/internal/domain/roster"
)

// Collection names as they exist in the backend schema.
const (
	CollectionSeasons       = "seasons"
	CollectionMixes         = "mixes"
	CollectionMaps          = "maps"
	CollectionProfiles      = "profiles"
	CollectionMixPlayers    = "mix_players"
	CollectionMixMaps       = "mix_maps"
	CollectionMapStats      = "mix_player_map_stats"
	CollectionMapTeams      = "mix_player_map_team"
	CollectionMapResults    = "mix_map_results"
	CollectionRatingChanges = "rating_changes"
)

const dateLayout = "2006-01-02"

// UniqueKeys lists the unique constraints of each collection. The first key
// is also the upsert conflict target.
var UniqueKeys = map[string][][]string{
	CollectionSeasons:       {{"id"}},
	CollectionMixes:         {{"id"}},
	CollectionMaps:          {{"id"}},
	CollectionProfiles:      {{"id"}},
	CollectionMixPlayers:    {{"mix_id", "player_id"}},
	CollectionMixMaps:       {{"mix_id", "map_id"}},
	CollectionMapStats:      {{"mix_id", "player_id", "map_id"}},
	CollectionMapTeams:      {{"mix_id", "map_id", "player_id"}},
	CollectionMapResults:    {{"mix_id", "map_id"}},
	CollectionRatingChanges: {{"mix_id", "player_id"}},
}

func conflictKey(collection string) []string {
	keys := UniqueKeys[collection]
	if len(keys) == 0 {
		return []string{"id"}
	}
	return keys[0]
}

var (
	mixStatusToStored = map[mix.Status]string{
		mix.StatusScheduled: "agendado",
		mix.StatusFinalized: "finalizado",
		mix.StatusCancelled: "cancelado",
	}
	roleToStored = map[profile.Role]string{
		profile.RoleAdmin:  "admin",
		profile.RolePlayer: "jogador",
	}
	paymentToStored = map[roster.PaymentStatus]string{
		roster.PaymentPending: "pendente",
		roster.PaymentPaid:    "pago",
	}
)

func storedMixStatus(status mix.Status) string {
	if v, ok := mixStatusToStored[status]; ok {
		return v
	}
	return mixStatusToStored[mix.StatusScheduled]
}

// parseMixStatus treats unknown values as scheduled so a bad row never
// blocks a screen.
func parseMixStatus(raw string) mix.Status {
	for status, stored := range mixStatusToStored {
		if stored == raw {
			return status
		}
	}
	return mix.StatusScheduled
}

func parseRole(raw string) profile.Role {
	for role, stored := range roleToStored {
		if stored == raw {
			return role
		}
	}
	return profile.RolePlayer
}

func storedPayment(status roster.PaymentStatus) string {
	if v, ok := paymentToStored[status]; ok {
		return v
	}
	return paymentToStored[roster.PaymentPending]
}

func parsePayment(raw string) roster.PaymentStatus {
	if raw == paymentToStored[roster.PaymentPaid] {
		return roster.PaymentPaid
	}
	return roster.PaymentPending
}
