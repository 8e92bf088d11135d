package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/mix-league/internal/domain/presence"
)

// Hub is an in-process presence channel. Members that stop announcing
// themselves drop out after ttl.
type Hub struct {
	mu          sync.Mutex
	ttl         time.Duration
	rooms       map[string]map[string]presence.Member
	subscribers map[string]map[chan []presence.Member]struct{}
	now         func() time.Time
}

func NewHub(ttl time.Duration) *Hub {
	if ttl <= 0 {
		ttl = 90 * time.Second
	}
	return &Hub{
		ttl:         ttl,
		rooms:       make(map[string]map[string]presence.Member),
		subscribers: make(map[string]map[chan []presence.Member]struct{}),
		now:         time.Now,
	}
}

var _ presence.Channel = (*Hub)(nil)

func (h *Hub) Track(_ context.Context, room string, member presence.Member) error {
	room = strings.TrimSpace(room)
	if room == "" {
		return fmt.Errorf("room is required")
	}
	if strings.TrimSpace(member.UserID) == "" {
		return fmt.Errorf("user id is required")
	}
	if member.At.IsZero() {
		member.At = h.now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]presence.Member)
		h.rooms[room] = members
	}
	members[member.UserID] = member
	h.broadcastLocked(room)
	return nil
}

func (h *Hub) Untrack(_ context.Context, room, userID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		return nil
	}
	if _, ok := members[userID]; !ok {
		return nil
	}
	delete(members, userID)
	h.broadcastLocked(room)
	return nil
}

func (h *Hub) Members(_ context.Context, room string) ([]presence.Member, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.expireLocked(room) {
		h.broadcastLocked(room)
	}
	return h.snapshotLocked(room), nil
}

func (h *Hub) Subscribe(ctx context.Context, room string) (<-chan []presence.Member, error) {
	ch := make(chan []presence.Member, 1)

	h.mu.Lock()
	subs, ok := h.subscribers[room]
	if !ok {
		subs = make(map[chan []presence.Member]struct{})
		h.subscribers[room] = subs
	}
	subs[ch] = struct{}{}
	ch <- h.snapshotLocked(room)
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subscribers[room], ch)
		close(ch)
		h.mu.Unlock()
	}()

	return ch, nil
}

// Sweep drops expired members from every room.
func (h *Hub) Sweep() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range h.rooms {
		if h.expireLocked(room) {
			h.broadcastLocked(room)
		}
	}
}

// Run sweeps on interval until ctx is done.
func (h *Hub) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = h.ttl / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Sweep()
		}
	}
}

func (h *Hub) expireLocked(room string) bool {
	members := h.rooms[room]
	cutoff := h.now().Add(-h.ttl)
	changed := false
	for id, m := range members {
		if m.At.Before(cutoff) {
			delete(members, id)
			changed = true
		}
	}
	return changed
}

func (h *Hub) snapshotLocked(room string) []presence.Member {
	members := h.rooms[room]
	out := make([]presence.Member, 0, len(members))
	for _, m := range members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Nick != out[j].Nick {
			return out[i].Nick < out[j].Nick
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// broadcastLocked replaces any undelivered snapshot so slow subscribers
// only ever see the latest state.
func (h *Hub) broadcastLocked(room string) {
	subs := h.subscribers[room]
	if len(subs) == 0 {
		return
	}
	snapshot := h.snapshotLocked(room)
	for ch := range subs {
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}
