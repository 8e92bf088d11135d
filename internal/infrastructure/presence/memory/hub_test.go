package memory

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/mix-league/internal/domain/presence"
)

func TestHub_TrackUntrackMembers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	hub := NewHub(time.Minute)

	if err := hub.Track(ctx, "online", presence.Member{UserID: "u2", Nick: "zeta"}); err != nil {
		t.Fatalf("track: %v", err)
	}
	if err := hub.Track(ctx, "online", presence.Member{UserID: "u1", Nick: "alpha"}); err != nil {
		t.Fatalf("track: %v", err)
	}
	// re-announcing replaces the previous metadata
	if err := hub.Track(ctx, "online", presence.Member{UserID: "u1", Nick: "alpha2"}); err != nil {
		t.Fatalf("track: %v", err)
	}

	members, _ := hub.Members(ctx, "online")
	if len(members) != 2 || members[0].Nick != "alpha2" || members[1].UserID != "u2" {
		t.Fatalf("unexpected members: %+v", members)
	}

	if err := hub.Untrack(ctx, "online", "u2"); err != nil {
		t.Fatalf("untrack: %v", err)
	}
	members, _ = hub.Members(ctx, "online")
	if len(members) != 1 {
		t.Fatalf("expected 1 member, got %+v", members)
	}

	if err := hub.Track(ctx, "", presence.Member{UserID: "u3"}); err == nil {
		t.Fatalf("expected empty room to be rejected")
	}
}

func TestHub_ExpiresStaleMembers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	hub := NewHub(30 * time.Second)
	now := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	hub.now = func() time.Time { return now }

	_ = hub.Track(ctx, "online", presence.Member{UserID: "u1", Nick: "a"})
	now = now.Add(20 * time.Second)
	_ = hub.Track(ctx, "online", presence.Member{UserID: "u2", Nick: "b"})
	now = now.Add(15 * time.Second)

	members, _ := hub.Members(ctx, "online")
	if len(members) != 1 || members[0].UserID != "u2" {
		t.Fatalf("expected only u2 to remain, got %+v", members)
	}
}

func TestHub_SubscribeReceivesLatestSnapshot(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(time.Minute)
	updates, err := hub.Subscribe(ctx, "online")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if initial := <-updates; len(initial) != 0 {
		t.Fatalf("expected empty initial snapshot, got %+v", initial)
	}

	_ = hub.Track(ctx, "online", presence.Member{UserID: "u1", Nick: "a"})
	_ = hub.Track(ctx, "online", presence.Member{UserID: "u2", Nick: "b"})

	select {
	case got := <-updates:
		if len(got) != 2 {
			t.Fatalf("expected latest snapshot with 2 members, got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for presence update")
	}

	cancel()
	for range updates {
	}
}
