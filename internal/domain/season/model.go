package season

import (
	"fmt"
	"strings"
	"time"
)

// Season groups mixes played over a date range.
type Season struct {
	ID       string
	Name     string
	StartsOn time.Time
	EndsOn   time.Time
	Active   bool
}

func (s Season) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("season name is required")
	}
	if s.StartsOn.IsZero() {
		return fmt.Errorf("season start date is required")
	}
	if s.EndsOn.IsZero() {
		return fmt.Errorf("season end date is required")
	}
	if s.EndsOn.Before(s.StartsOn) {
		return fmt.Errorf("season end date must not be before start date")
	}

	return nil
}
