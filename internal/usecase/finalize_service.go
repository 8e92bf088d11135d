package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/mix-league/internal/domain/mapstat"
	"github.com/riskibarqy/mix-league/internal/domain/mix"
	"github.com/riskibarqy/mix-league/internal/domain/profile"
	"github.com/riskibarqy/mix-league/internal/domain/rating"
	"github.com/riskibarqy/mix-league/internal/domain/roster"
	"github.com/riskibarqy/mix-league/internal/platform/logging"
	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
	"github.com/riskibarqy/mix-league/internal/platform/tracing"
	"go.opentelemetry.io/otel/attribute"
)

const finalizedMessage = "mix finalized and ratings updated"

type FinalizeResult struct {
	MixID   string
	TeamA   []string
	TeamB   []string
	Changes []rating.Change
	// Resumed is set when a previous attempt had already staged the changes.
	Resumed bool
	Message string
}

// FinalizeService applies the rating update of a mix. Changes are staged in
// the rating ledger before any profile is touched, so an interrupted run is
// resumed from the ledger instead of being recomputed from half-updated
// ratings. Ratings are read from profileRepo inside the transaction, so it
// must not be a cached repository; caches are dropped after commit through
// the invalidators.
type FinalizeService struct {
	mixRepo        mix.Repository
	mapRepo        mix.MapRepository
	rosterRepo     roster.Repository
	statRepo       mapstat.Repository
	assignmentRepo mapstat.AssignmentRepository
	ratingRepo     rating.Repository
	profileRepo    profile.Repository
	tx             recordstore.Transactor
	split          rating.TeamSplitter
	invalidator    SeasonInvalidator
	profileCache   ProfileInvalidator
	logger         *logging.Logger
}

func NewFinalizeService(
	mixRepo mix.Repository,
	mapRepo mix.MapRepository,
	rosterRepo roster.Repository,
	statRepo mapstat.Repository,
	assignmentRepo mapstat.AssignmentRepository,
	ratingRepo rating.Repository,
	profileRepo profile.Repository,
	tx recordstore.Transactor,
	logger *logging.Logger,
) *FinalizeService {
	if logger == nil {
		logger = logging.Default()
	}
	if tx == nil {
		tx = recordstore.TransactorFor(nil)
	}
	return &FinalizeService{
		mixRepo:        mixRepo,
		mapRepo:        mapRepo,
		rosterRepo:     rosterRepo,
		statRepo:       statRepo,
		assignmentRepo: assignmentRepo,
		ratingRepo:     ratingRepo,
		profileRepo:    profileRepo,
		tx:             tx,
		split:          rating.MidpointSplit,
		logger:         logger,
	}
}

// WithTeamSplitter replaces the default midpoint split.
func (s *FinalizeService) WithTeamSplitter(split rating.TeamSplitter) *FinalizeService {
	if split != nil {
		s.split = split
	}
	return s
}

func (s *FinalizeService) WithSeasonInvalidator(invalidator SeasonInvalidator) *FinalizeService {
	s.invalidator = invalidator
	return s
}

func (s *FinalizeService) WithProfileInvalidator(invalidator ProfileInvalidator) *FinalizeService {
	s.profileCache = invalidator
	return s
}

func (s *FinalizeService) Finalize(ctx context.Context, mixID string) (FinalizeResult, error) {
	mixID = strings.TrimSpace(mixID)
	ctx, span := usecaseSpans.Start(ctx, "usecase.FinalizeService.Finalize", attribute.String("mix.id", mixID))
	defer span.End()

	if mixID == "" {
		return FinalizeResult{}, fmt.Errorf("%w: mix id is required", ErrInvalidInput)
	}

	item, exists, err := s.mixRepo.GetByID(ctx, mixID)
	if err != nil {
		return FinalizeResult{}, storeError("get mix", err)
	}
	if !exists {
		return FinalizeResult{}, fmt.Errorf("%w: mix=%s", ErrNotFound, mixID)
	}
	switch item.Status {
	case mix.StatusFinalized:
		return FinalizeResult{}, fmt.Errorf("%w: mix=%s", ErrAlreadyFinalized, mixID)
	case mix.StatusCancelled:
		return FinalizeResult{}, fmt.Errorf("%w: mix=%s is cancelled", ErrInvalidInput, mixID)
	}

	var result FinalizeResult
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		selected, err := s.mapRepo.ListSelected(ctx, item.ID)
		if err != nil {
			return storeError("list selected maps", err)
		}

		changes, err := s.ratingRepo.ListByMix(ctx, item.ID)
		if err != nil {
			return storeError("list staged rating changes", err)
		}

		var assignments []mapstat.TeamAssignment
		if len(changes) > 0 {
			result.Resumed = true
			assignments = assignmentsFromChanges(changes, selected)
			s.logger.WarnContext(ctx, "resuming interrupted finalization", "mix_id", item.ID, "staged", len(changes))
		} else {
			outcome, err := s.compute(ctx, item, selected)
			if err != nil {
				return err
			}
			changes = outcome.Changes
			assignments = outcome.Assignments
			if err := s.ratingRepo.Stage(ctx, changes); err != nil {
				return storeError("stage rating changes", err)
			}
		}

		if err := s.assignmentRepo.Save(ctx, assignments); err != nil {
			return storeError("save team assignments", err)
		}

		for i, change := range changes {
			if change.Applied {
				continue
			}
			if err := s.profileRepo.UpdateElo(ctx, change.PlayerID, change.EloAfter); err != nil {
				return storeError("update player elo", err)
			}
			if err := s.ratingRepo.MarkApplied(ctx, item.ID, change.PlayerID); err != nil {
				return storeError("mark rating change applied", err)
			}
			changes[i].Applied = true
		}

		if err := s.mixRepo.UpdateStatus(ctx, item.ID, mix.StatusFinalized); err != nil {
			return storeError("mark mix finalized", err)
		}

		result.MixID = item.ID
		result.Changes = changes
		result.TeamA, result.TeamB = teamsFromChanges(changes)
		result.Message = finalizedMessage
		return nil
	})
	if err != nil {
		tracing.Fail(span, err)
		return FinalizeResult{}, err
	}

	if s.profileCache != nil {
		s.profileCache.InvalidateProfiles(ctx)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateSeason(ctx, item.SeasonID)
	}
	s.logger.InfoContext(ctx, "mix finalized",
		"mix_id", result.MixID,
		"players", len(result.Changes),
		"resumed", result.Resumed,
	)
	return result, nil
}

func (s *FinalizeService) compute(ctx context.Context, item mix.Mix, selected []mix.MapSelection) (rating.Outcome, error) {
	entries, err := s.rosterRepo.ListByMix(ctx, item.ID)
	if err != nil {
		return rating.Outcome{}, storeError("list roster", err)
	}

	mapIDs := make([]string, 0, len(selected))
	for _, sel := range selected {
		mapIDs = append(mapIDs, sel.MapID)
	}

	// Validate before issuing any further reads.
	lineup := playerIDs(entries)
	if _, err := rating.Compute(rating.Input{Roster: lineup, Maps: mapIDs, Split: s.split}); err != nil {
		return rating.Outcome{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	results, err := s.mapRepo.ListResults(ctx, item.ID)
	if err != nil {
		return rating.Outcome{}, storeError("list map results", err)
	}
	stats, err := s.statRepo.ListByMix(ctx, item.ID)
	if err != nil {
		return rating.Outcome{}, storeError("list map stats", err)
	}
	profiles, err := s.profileRepo.GetByIDs(ctx, lineup)
	if err != nil {
		return rating.Outcome{}, storeError("get profiles", err)
	}

	ratings := make(map[string]int, len(profiles))
	for _, p := range profiles {
		ratings[p.ID] = p.Elo
	}

	outcome, err := rating.Compute(rating.Input{
		MixID:   item.ID,
		Roster:  lineup,
		Maps:    mapIDs,
		Results: mix.ResultsByMap(results),
		Stats:   mapstat.IndexByPlayerMap(stats),
		Ratings: ratings,
		Split:   s.split,
	})
	if err != nil {
		return rating.Outcome{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return outcome, nil
}

func assignmentsFromChanges(changes []rating.Change, selected []mix.MapSelection) []mapstat.TeamAssignment {
	out := make([]mapstat.TeamAssignment, 0, len(changes)*len(selected))
	for _, sel := range selected {
		for _, change := range changes {
			out = append(out, mapstat.TeamAssignment{
				MixID:    change.MixID,
				MapID:    sel.MapID,
				PlayerID: change.PlayerID,
				Team:     change.Team,
			})
		}
	}
	return out
}

func teamsFromChanges(changes []rating.Change) ([]string, []string) {
	var teamA, teamB []string
	for _, change := range changes {
		if change.Team == mix.TeamA {
			teamA = append(teamA, change.PlayerID)
			continue
		}
		teamB = append(teamB, change.PlayerID)
	}
	return teamA, teamB
}
