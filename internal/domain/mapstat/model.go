package mapstat

import (
	"fmt"

	"github.com/riskibarqy/mix-league/internal/domain/mix"
)

// Stat is a player's line on one map of a mix. (MixID, PlayerID, MapID) is unique.
type Stat struct {
	MixID    string
	PlayerID string
	MapID    string
	Kills    int
	Deaths   int
	Assists  int
	MVPs     int
}

// Patch updates individual stat fields; nil fields are left untouched.
type Patch struct {
	Kills   *int
	Deaths  *int
	Assists *int
	MVPs    *int
}

func (p Patch) Empty() bool {
	return p.Kills == nil && p.Deaths == nil && p.Assists == nil && p.MVPs == nil
}

func (p Patch) Validate() error {
	for name, v := range map[string]*int{"kills": p.Kills, "deaths": p.Deaths, "assists": p.Assists, "mvps": p.MVPs} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be >= 0", name)
		}
	}
	return nil
}

// Apply returns s with the patched fields replaced.
func (p Patch) Apply(s Stat) Stat {
	if p.Kills != nil {
		s.Kills = *p.Kills
	}
	if p.Deaths != nil {
		s.Deaths = *p.Deaths
	}
	if p.Assists != nil {
		s.Assists = *p.Assists
	}
	if p.MVPs != nil {
		s.MVPs = *p.MVPs
	}
	return s
}

// TeamAssignment is the audit record of which side a player was on for a map.
type TeamAssignment struct {
	MixID    string
	MapID    string
	PlayerID string
	Team     mix.Team
}

// Key identifies a stat line.
type Key struct {
	PlayerID string
	MapID    string
}

// IndexByPlayerMap indexes stats of a single mix by (player, map).
func IndexByPlayerMap(items []Stat) map[Key]Stat {
	out := make(map[Key]Stat, len(items))
	for _, item := range items {
		out[Key{PlayerID: item.PlayerID, MapID: item.MapID}] = item
	}
	return out
}
