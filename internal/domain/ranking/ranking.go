package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/riskibarqy/mix-league/internal/domain/mapstat"
	"github.com/riskibarqy/mix-league/internal/domain/mix"
	"github.com/riskibarqy/mix-league/internal/domain/profile"
	"github.com/riskibarqy/mix-league/internal/domain/rating"
	"github.com/riskibarqy/mix-league/internal/domain/roster"
)

const deathPenalty = 0.6

// Row is one player's season line in the ranking table.
type Row struct {
	PlayerID string
	Nick     string
	Elo      int
	Mixes    int
	Paid     float64
	Pending  float64
	Kills    int
	Deaths   int
	KD       float64
	Score    float64
}

// Input is everything fetched for one season.
type Input struct {
	Mixes    []mix.Mix
	Entries  []roster.Entry
	Stats    []mapstat.Stat
	Profiles []profile.Profile
}

type accumulator struct {
	playerID string
	mixes    map[string]struct{}
	paid     float64
	pending  float64
	kills    int
	deaths   int
}

// Aggregate folds a season's roster entries and map stats into ranked rows,
// one per player seen in either. It never fails: missing profiles, fees and
// denominators fall back to defaults.
func Aggregate(in Input) []Row {
	fees := feesByMix(in.Mixes)

	byPlayer := make(map[string]*accumulator)
	order := make([]string, 0, len(in.Entries))
	get := func(playerID string) *accumulator {
		acc, ok := byPlayer[playerID]
		if !ok {
			acc = &accumulator{playerID: playerID, mixes: make(map[string]struct{})}
			byPlayer[playerID] = acc
			order = append(order, playerID)
		}
		return acc
	}

	for _, entry := range in.Entries {
		acc := get(entry.PlayerID)
		acc.mixes[entry.MixID] = struct{}{}
		fee := fees[entry.MixID]
		acc.paid += entry.PaidAmount(fee)
		acc.pending += entry.PendingAmount(fee)
	}
	for _, stat := range in.Stats {
		acc := get(stat.PlayerID)
		acc.kills += stat.Kills
		acc.deaths += stat.Deaths
	}

	profiles := profile.Index(in.Profiles)
	rows := make([]Row, 0, len(order))
	for _, playerID := range order {
		acc := byPlayer[playerID]
		kd := rating.SafeKD(acc.kills, acc.deaths)
		score := (float64(acc.kills) - deathPenalty*float64(acc.deaths)) + 10*kd

		nick, elo := profile.PlaceholderNick, profile.DefaultElo
		if p, ok := profiles[playerID]; ok {
			nick, elo = p.Nick, p.Elo
			if nick == "" {
				nick = profile.PlaceholderNick
			}
		}

		rows = append(rows, Row{
			PlayerID: playerID,
			Nick:     nick,
			Elo:      elo,
			Mixes:    len(acc.mixes),
			Paid:     acc.paid,
			Pending:  acc.pending,
			Kills:    acc.kills,
			Deaths:   acc.deaths,
			KD:       Round2(kd),
			Score:    Round2(score),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		if rows[i].Elo != rows[j].Elo {
			return rows[i].Elo > rows[j].Elo
		}
		return rows[i].KD > rows[j].KD
	})

	return rows
}

// SeasonSummary is the headline block of the season dashboard.
type SeasonSummary struct {
	Players     int
	Mixes       int
	Collected   float64
	PaymentRate int
}

// Summarize counts distinct roster players only; a player with stats but no
// roster entry is ranked but not counted here. Collected sums paid entries,
// and the payment rate is paid entries over all entries.
func Summarize(in Input) SeasonSummary {
	fees := feesByMix(in.Mixes)
	players := make(map[string]struct{}, len(in.Entries))
	var collected float64
	paid := 0
	for _, entry := range in.Entries {
		players[entry.PlayerID] = struct{}{}
		collected += entry.PaidAmount(fees[entry.MixID])
		if entry.IsPaid() {
			paid++
		}
	}

	return SeasonSummary{
		Players:     len(players),
		Mixes:       len(in.Mixes),
		Collected:   collected,
		PaymentRate: percent(paid, len(in.Entries)),
	}
}

// KDPoint is a player's KD over all maps of one mix.
type KDPoint struct {
	MixID       string
	ScheduledAt time.Time
	KD          float64
}

// KDSeries returns the player's per-mix KD ordered by mix date.
func KDSeries(playerID string, mixes []mix.Mix, stats []mapstat.Stat) []KDPoint {
	type totals struct{ kills, deaths int }

	byMix := make(map[string]*totals)
	order := make([]string, 0)
	for _, stat := range stats {
		if stat.PlayerID != playerID {
			continue
		}
		t, ok := byMix[stat.MixID]
		if !ok {
			t = &totals{}
			byMix[stat.MixID] = t
			order = append(order, stat.MixID)
		}
		t.kills += stat.Kills
		t.deaths += stat.Deaths
	}

	dates := make(map[string]time.Time, len(mixes))
	for _, m := range mixes {
		dates[m.ID] = m.ScheduledAt
	}

	points := make([]KDPoint, 0, len(order))
	for _, mixID := range order {
		t := byMix[mixID]
		points = append(points, KDPoint{
			MixID:       mixID,
			ScheduledAt: dates[mixID],
			KD:          Round2(rating.SafeKD(t.kills, t.deaths)),
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].ScheduledAt.Before(points[j].ScheduledAt)
	})

	return points
}

// Totals summarises the roster of a single mix.
type Totals struct {
	Players     int
	Paid        float64
	Pending     float64
	PaymentRate int
}

// MixTotals counts the entries of m; entries of other mixes are skipped.
// Pending uses the mix fee for every unpaid entry.
func MixTotals(m mix.Mix, entries []roster.Entry) Totals {
	out := Totals{}
	paid := 0
	for _, entry := range entries {
		if entry.MixID != "" && entry.MixID != m.ID {
			continue
		}
		out.Players++
		out.Paid += entry.PaidAmount(m.Fee)
		out.Pending += entry.PendingAmount(m.Fee)
		if entry.IsPaid() {
			paid++
		}
	}
	out.PaymentRate = percent(paid, out.Players)
	return out
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func feesByMix(mixes []mix.Mix) map[string]float64 {
	out := make(map[string]float64, len(mixes))
	for _, m := range mixes {
		out[m.ID] = m.Fee
	}
	return out
}
