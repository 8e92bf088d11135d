package usecase

import (
	"context"

	"github.com/riskibarqy/mix-league/internal/domain/profile"
	"github.com/riskibarqy/mix-league/internal/platform/logging"
)

type ProfileService struct {
	profileRepo profile.Repository
	logger      *logging.Logger
}

func NewProfileService(profileRepo profile.Repository, logger *logging.Logger) *ProfileService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ProfileService{profileRepo: profileRepo, logger: logger}
}

// ListProfiles returns every profile, highest rating first.
func (s *ProfileService) ListProfiles(ctx context.Context) ([]profile.Profile, error) {
	ctx, span := usecaseSpans.Start(ctx, "usecase.ProfileService.ListProfiles")
	defer span.End()

	items, err := s.profileRepo.List(ctx)
	if err != nil {
		return nil, storeError("list profiles", err)
	}
	return items, nil
}
