package rating

import (
	"errors"
	"fmt"
	"math"

	"github.com/riskibarqy/mix-league/internal/domain/mapstat"
	"github.com/riskibarqy/mix-league/internal/domain/mix"
	"github.com/riskibarqy/mix-league/internal/domain/profile"
)

const (
	K = 24.0

	perfFloor = 0.85
	perfCeil  = 1.15
	perfSlope = 0.10
)

var (
	ErrNotEnoughPlayers = errors.New("at least 2 players are required to finalize a mix")
	ErrNoMapsSelected   = errors.New("select at least one map before finalizing")
	ErrInvalidSplit     = errors.New("team split must produce two non-empty teams")
)

// IsValidation reports whether err is a precondition failure of Compute.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNotEnoughPlayers) ||
		errors.Is(err, ErrNoMapsSelected) ||
		errors.Is(err, ErrInvalidSplit)
}

// SafeKD is kills/deaths, or kills when there are no deaths.
func SafeKD(kills, deaths int) float64 {
	if deaths > 0 {
		return float64(kills) / float64(deaths)
	}
	return float64(kills)
}

func Clamp(lo, v, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// Expected is the logistic expected score of a team rated teamElo against opponentElo.
func Expected(teamElo, opponentElo float64) float64 {
	return 1 / (1 + math.Pow(10, (opponentElo-teamElo)/400))
}

// PerformanceMultiplier scales a delta by up to 15% either way around a KD of 1.
func PerformanceMultiplier(kd float64) float64 {
	return Clamp(perfFloor, 1+(kd-1)*perfSlope, perfCeil)
}

// ActualScore is 1 for a win, 0 for a loss and 0.5 for a draw or a missing result.
func ActualScore(team mix.Team, winner mix.Winner) float64 {
	switch winner {
	case mix.WinnerA, mix.WinnerB:
		if string(winner) == string(team) {
			return 1
		}
		return 0
	default:
		return 0.5
	}
}

// RoundHalfUp rounds .5 away from negative infinity, matching how ratings were
// always rounded (1010.5 -> 1011, -10.5 -> -10).
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// TeamSplitter partitions the roster (in storage order) into two teams.
type TeamSplitter func(playerIDs []string) (teamA, teamB []string)

// MidpointSplit puts the first ceil(n/2) players in team A and the rest in team B.
func MidpointSplit(playerIDs []string) ([]string, []string) {
	mid := (len(playerIDs) + 1) / 2
	teamA := append([]string(nil), playerIDs[:mid]...)
	teamB := append([]string(nil), playerIDs[mid:]...)
	return teamA, teamB
}

type Input struct {
	MixID string
	// Roster holds player ids in storage order.
	Roster []string
	// Maps holds the selected map ids in play order.
	Maps    []string
	Results map[string]mix.Winner
	Stats   map[mapstat.Key]mapstat.Stat
	// Ratings holds current ratings; players without one count as profile.DefaultElo.
	Ratings map[string]int
	Split   TeamSplitter
}

type Outcome struct {
	TeamA       []string
	TeamB       []string
	Assignments []mapstat.TeamAssignment
	// Changes follow roster order.
	Changes []Change
}

// Compute runs the per-map rating update for a mix and returns the accumulated
// change per player. It does not touch storage.
func Compute(in Input) (Outcome, error) {
	if len(in.Roster) < 2 {
		return Outcome{}, fmt.Errorf("%w: got %d", ErrNotEnoughPlayers, len(in.Roster))
	}
	if len(in.Maps) == 0 {
		return Outcome{}, ErrNoMapsSelected
	}

	split := in.Split
	if split == nil {
		split = MidpointSplit
	}
	teamA, teamB := split(append([]string(nil), in.Roster...))
	if len(teamA) == 0 || len(teamB) == 0 {
		return Outcome{}, ErrInvalidSplit
	}

	current := func(playerID string) int {
		if elo, ok := in.Ratings[playerID]; ok {
			return elo
		}
		return profile.DefaultElo
	}

	teamOf := make(map[string]mix.Team, len(in.Roster))
	for _, id := range teamA {
		teamOf[id] = mix.TeamA
	}
	for _, id := range teamB {
		teamOf[id] = mix.TeamB
	}

	eloA := meanRating(teamA, current)
	eloB := meanRating(teamB, current)
	expected := map[mix.Team]float64{
		mix.TeamA: Expected(eloA, eloB),
		mix.TeamB: Expected(eloB, eloA),
	}

	deltas := make(map[string]float64, len(in.Roster))
	assignments := make([]mapstat.TeamAssignment, 0, len(in.Maps)*len(in.Roster))
	for _, mapID := range in.Maps {
		winner := in.Results[mapID]
		for _, side := range [][]string{teamA, teamB} {
			for _, playerID := range side {
				team := teamOf[playerID]
				base := K * (ActualScore(team, winner) - expected[team])

				stat := in.Stats[mapstat.Key{PlayerID: playerID, MapID: mapID}]
				perf := PerformanceMultiplier(SafeKD(stat.Kills, stat.Deaths))

				deltas[playerID] += base * perf
				assignments = append(assignments, mapstat.TeamAssignment{
					MixID:    in.MixID,
					MapID:    mapID,
					PlayerID: playerID,
					Team:     team,
				})
			}
		}
	}

	changes := make([]Change, 0, len(in.Roster))
	for _, playerID := range in.Roster {
		team, ok := teamOf[playerID]
		if !ok {
			continue
		}
		before := current(playerID)
		delta := deltas[playerID]
		changes = append(changes, Change{
			MixID:     in.MixID,
			PlayerID:  playerID,
			Team:      team,
			EloBefore: before,
			Delta:     delta,
			EloAfter:  RoundHalfUp(float64(before) + delta),
		})
	}

	return Outcome{
		TeamA:       teamA,
		TeamB:       teamB,
		Assignments: assignments,
		Changes:     changes,
	}, nil
}

func meanRating(team []string, current func(string) int) float64 {
	var sum float64
	for _, id := range team {
		sum += float64(current(id))
	}
	return sum / float64(len(team))
}
