package mix

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusFinalized Status = "finalized"
	StatusCancelled Status = "cancelled"
)

// Mix is a single scheduled match night inside a season.
type Mix struct {
	ID          string
	SeasonID    string
	ScheduledAt time.Time
	Fee         float64
	Status      Status
}

func (m Mix) Validate() error {
	if strings.TrimSpace(m.SeasonID) == "" {
		return fmt.Errorf("season id is required")
	}
	if m.ScheduledAt.IsZero() {
		return fmt.Errorf("mix date is required")
	}
	if m.Fee < 0 {
		return fmt.Errorf("fee per player must be >= 0")
	}
	switch m.Status {
	case StatusScheduled, StatusFinalized, StatusCancelled:
	default:
		return fmt.Errorf("unknown mix status %q", m.Status)
	}

	return nil
}

func (m Mix) IsFinalized() bool {
	return m.Status == StatusFinalized
}

// GameMap is an entry of the map catalog (de_dust2, de_mirage, ...).
type GameMap struct {
	ID   string
	Name string
}

// MapSelection places a catalog map into a mix at a 1-based position.
type MapSelection struct {
	MixID    string
	MapID    string
	Position int
}

type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

func (t Team) Valid() bool {
	return t == TeamA || t == TeamB
}

type Winner string

const (
	WinnerA    Winner = "A"
	WinnerB    Winner = "B"
	WinnerDraw Winner = "draw"
)

func ParseWinner(raw string) (Winner, error) {
	switch Winner(strings.TrimSpace(raw)) {
	case WinnerA:
		return WinnerA, nil
	case WinnerB:
		return WinnerB, nil
	case WinnerDraw:
		return WinnerDraw, nil
	default:
		return "", fmt.Errorf("winner must be one of A, B or draw")
	}
}

// MapResult is the outcome of one selected map. No result means a draw.
type MapResult struct {
	MixID  string
	MapID  string
	Winner Winner
}

// ResultsByMap indexes results by map id.
func ResultsByMap(items []MapResult) map[string]Winner {
	out := make(map[string]Winner, len(items))
	for _, item := range items {
		out[item.MapID] = item.Winner
	}
	return out
}
