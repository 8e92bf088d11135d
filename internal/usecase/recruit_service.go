package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/mix-league/internal/domain/mix"
	"github.com/riskibarqy/mix-league/internal/domain/presence"
	"github.com/riskibarqy/mix-league/internal/domain/profile"
	"github.com/riskibarqy/mix-league/internal/platform/logging"
)

type playerEnroller interface {
	AddPlayer(ctx context.Context, mixID, playerID string) error
}

type EnrollResult struct {
	MixID   string
	Added   []string
	Skipped []string
}

// RecruitService exposes the "who is online" list used to fill a mix.
type RecruitService struct {
	channel     presence.Channel
	mixRepo     mix.Repository
	profileRepo profile.Repository
	enroller    playerEnroller
	now         func() time.Time
	logger      *logging.Logger
}

func NewRecruitService(
	channel presence.Channel,
	mixRepo mix.Repository,
	profileRepo profile.Repository,
	enroller playerEnroller,
	logger *logging.Logger,
) *RecruitService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RecruitService{
		channel:     channel,
		mixRepo:     mixRepo,
		profileRepo: profileRepo,
		enroller:    enroller,
		now:         time.Now,
		logger:      logger,
	}
}

// Announce marks the player as present in room. The nick comes from the
// player's profile.
func (s *RecruitService) Announce(ctx context.Context, room, userID string) (presence.Member, error) {
	room = roomOrDefault(room)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return presence.Member{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	item, exists, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return presence.Member{}, storeError("get profile", err)
	}
	if !exists {
		return presence.Member{}, fmt.Errorf("%w: player=%s", ErrNotFound, userID)
	}

	member := presence.Member{
		UserID: userID,
		Nick:   item.DisplayName(),
		At:     s.now().UTC(),
	}
	if err := s.channel.Track(ctx, room, member); err != nil {
		return presence.Member{}, fmt.Errorf("track presence: %w", err)
	}
	return member, nil
}

func (s *RecruitService) Leave(ctx context.Context, room, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if err := s.channel.Untrack(ctx, roomOrDefault(room), userID); err != nil {
		return fmt.Errorf("untrack presence: %w", err)
	}
	return nil
}

func (s *RecruitService) ListOnline(ctx context.Context, room string) ([]presence.Member, error) {
	members, err := s.channel.Members(ctx, roomOrDefault(room))
	if err != nil {
		return nil, fmt.Errorf("list presence: %w", err)
	}
	return members, nil
}

// EnrollOnline adds every member currently online to the mix roster.
// Players already on the roster are skipped.
func (s *RecruitService) EnrollOnline(ctx context.Context, mixID, room string) (EnrollResult, error) {
	ctx, span := usecaseSpans.Start(ctx, "usecase.RecruitService.EnrollOnline")
	defer span.End()

	mixID = strings.TrimSpace(mixID)
	if mixID == "" {
		return EnrollResult{}, fmt.Errorf("%w: mix id is required", ErrInvalidInput)
	}
	item, exists, err := s.mixRepo.GetByID(ctx, mixID)
	if err != nil {
		return EnrollResult{}, storeError("get mix", err)
	}
	if !exists {
		return EnrollResult{}, fmt.Errorf("%w: mix=%s", ErrNotFound, mixID)
	}

	members, err := s.ListOnline(ctx, room)
	if err != nil {
		return EnrollResult{}, err
	}

	result := EnrollResult{MixID: item.ID}
	for _, member := range members {
		err := s.enroller.AddPlayer(ctx, item.ID, member.UserID)
		switch {
		case err == nil:
			result.Added = append(result.Added, member.UserID)
		case errors.Is(err, ErrConflict):
			result.Skipped = append(result.Skipped, member.UserID)
		default:
			return result, err
		}
	}

	s.logger.InfoContext(ctx, "online players enrolled",
		"mix_id", result.MixID,
		"added", len(result.Added),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

func roomOrDefault(room string) string {
	room = strings.TrimSpace(room)
	if room == "" {
		return presence.DefaultRoom
	}
	return room
}
