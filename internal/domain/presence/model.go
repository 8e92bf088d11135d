package presence

import (
	"context"
	"time"
)

// DefaultRoom is the room used by the recruitment screen.
const DefaultRoom = "online"

// Member is the small metadata payload a client announces.
type Member struct {
	UserID string
	Nick   string
	At     time.Time
}

// Channel is a pub/sub room that tracks who is currently present.
type Channel interface {
	Track(ctx context.Context, room string, member Member) error
	Untrack(ctx context.Context, room, userID string) error
	Members(ctx context.Context, room string) ([]Member, error)
	// Subscribe delivers the full member list every time it changes until ctx is done.
	Subscribe(ctx context.Context, room string) (<-chan []Member, error)
}
