package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/mix-league/internal/domain/mapstat"
	"github.com/riskibarqy/mix-league/internal/domain/mix"
	"github.com/riskibarqy/mix-league/internal/domain/profile"
	"github.com/riskibarqy/mix-league/internal/domain/ranking"
	"github.com/riskibarqy/mix-league/internal/domain/rating"
	"github.com/riskibarqy/mix-league/internal/domain/roster"
	"github.com/riskibarqy/mix-league/internal/platform/logging"
	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
)

// MixBoard is everything the mix screen shows at once.
type MixBoard struct {
	Mix     mix.Mix
	Maps    []BoardMap
	Players []BoardPlayer
	Totals  ranking.Totals
}

type BoardMap struct {
	MapID     string
	Name      string
	Position  int
	Winner    mix.Winner
	HasResult bool
}

type BoardPlayer struct {
	PlayerID  string
	Nick      string
	Elo       int
	Payment   roster.PaymentStatus
	PaidValue float64
	Stats     []BoardStat
	Kills     int
	Deaths    int
	KD        float64
}

type BoardStat struct {
	mapstat.Stat
	KD float64
}

type UpsertStatInput struct {
	MixID    string
	PlayerID string
	MapID    string
	Patch    mapstat.Patch
}

type MixService struct {
	mixRepo     mix.Repository
	mapRepo     mix.MapRepository
	rosterRepo  roster.Repository
	statRepo    mapstat.Repository
	profileRepo profile.Repository
	ratingRepo  rating.Repository
	tx          recordstore.Transactor
	invalidator SeasonInvalidator
	logger      *logging.Logger
}

func NewMixService(
	mixRepo mix.Repository,
	mapRepo mix.MapRepository,
	rosterRepo roster.Repository,
	statRepo mapstat.Repository,
	profileRepo profile.Repository,
	tx recordstore.Transactor,
	logger *logging.Logger,
) *MixService {
	if logger == nil {
		logger = logging.Default()
	}
	if tx == nil {
		tx = recordstore.TransactorFor(nil)
	}
	return &MixService{
		mixRepo:     mixRepo,
		mapRepo:     mapRepo,
		rosterRepo:  rosterRepo,
		statRepo:    statRepo,
		profileRepo: profileRepo,
		tx:          tx,
		logger:      logger,
	}
}

// WithRatingLedger makes edits fail while a finalization has staged rating
// changes for the mix that were never committed.
func (s *MixService) WithRatingLedger(ratingRepo rating.Repository) *MixService {
	s.ratingRepo = ratingRepo
	return s
}

// WithSeasonInvalidator registers the cache that must forget a season after edits.
func (s *MixService) WithSeasonInvalidator(invalidator SeasonInvalidator) *MixService {
	s.invalidator = invalidator
	return s
}

func (s *MixService) changed(ctx context.Context, item mix.Mix) {
	if s.invalidator != nil {
		s.invalidator.InvalidateSeason(ctx, item.SeasonID)
	}
}

func (s *MixService) GetBoard(ctx context.Context, mixID string) (MixBoard, error) {
	ctx, span := usecaseSpans.Start(ctx, "usecase.MixService.GetBoard")
	defer span.End()

	item, err := s.getMix(ctx, mixID)
	if err != nil {
		return MixBoard{}, err
	}

	catalog, err := s.mapRepo.ListCatalog(ctx)
	if err != nil {
		return MixBoard{}, storeError("list maps", err)
	}
	selected, err := s.mapRepo.ListSelected(ctx, item.ID)
	if err != nil {
		return MixBoard{}, storeError("list selected maps", err)
	}
	results, err := s.mapRepo.ListResults(ctx, item.ID)
	if err != nil {
		return MixBoard{}, storeError("list map results", err)
	}
	entries, err := s.rosterRepo.ListByMix(ctx, item.ID)
	if err != nil {
		return MixBoard{}, storeError("list roster", err)
	}
	stats, err := s.statRepo.ListByMix(ctx, item.ID)
	if err != nil {
		return MixBoard{}, storeError("list map stats", err)
	}
	profiles, err := s.profileRepo.GetByIDs(ctx, playerIDs(entries))
	if err != nil {
		return MixBoard{}, storeError("get profiles", err)
	}

	names := make(map[string]string, len(catalog))
	for _, m := range catalog {
		names[m.ID] = m.Name
	}
	winners := make(map[string]mix.Winner, len(results))
	for _, r := range results {
		winners[r.MapID] = r.Winner
	}

	board := MixBoard{
		Mix:     item,
		Maps:    make([]BoardMap, 0, len(selected)),
		Players: make([]BoardPlayer, 0, len(entries)),
		Totals:  ranking.MixTotals(item, entries),
	}
	for _, sel := range selected {
		winner, ok := winners[sel.MapID]
		board.Maps = append(board.Maps, BoardMap{
			MapID:     sel.MapID,
			Name:      names[sel.MapID],
			Position:  sel.Position,
			Winner:    winner,
			HasResult: ok,
		})
	}

	byID := profile.Index(profiles)
	statIndex := mapstat.IndexByPlayerMap(stats)
	for _, entry := range entries {
		p, ok := byID[entry.PlayerID]
		if !ok {
			p = profile.Profile{ID: entry.PlayerID, Nick: profile.PlaceholderNick, Elo: profile.DefaultElo}
		}

		row := BoardPlayer{
			PlayerID:  entry.PlayerID,
			Nick:      p.DisplayName(),
			Elo:       p.Elo,
			Payment:   entry.Payment,
			PaidValue: entry.PaidValue,
			Stats:     make([]BoardStat, 0, len(selected)),
		}
		for _, sel := range selected {
			st, ok := statIndex[mapstat.Key{PlayerID: entry.PlayerID, MapID: sel.MapID}]
			if !ok {
				st = mapstat.Stat{MixID: item.ID, PlayerID: entry.PlayerID, MapID: sel.MapID}
			}
			row.Kills += st.Kills
			row.Deaths += st.Deaths
			row.Stats = append(row.Stats, BoardStat{Stat: st, KD: ranking.Round2(rating.SafeKD(st.Kills, st.Deaths))})
		}
		row.KD = ranking.Round2(rating.SafeKD(row.Kills, row.Deaths))
		board.Players = append(board.Players, row)
	}

	return board, nil
}

func (s *MixService) AddPlayer(ctx context.Context, mixID, playerID string) error {
	ctx, span := usecaseSpans.Start(ctx, "usecase.MixService.AddPlayer")
	defer span.End()

	item, err := s.getEditableMix(ctx, mixID)
	if err != nil {
		return err
	}
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if _, exists, err := s.profileRepo.GetByID(ctx, playerID); err != nil {
		return storeError("get profile", err)
	} else if !exists {
		return fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}

	err = s.rosterRepo.Add(ctx, roster.Entry{
		MixID:    item.ID,
		PlayerID: playerID,
		Payment:  roster.PaymentPending,
	})
	if err != nil {
		return storeError("add player", err)
	}

	s.changed(ctx, item)
	s.logger.InfoContext(ctx, "player added to mix", "mix_id", item.ID, "player_id", playerID)
	return nil
}

// RemovePlayer drops the player's stats in the mix before the roster entry.
func (s *MixService) RemovePlayer(ctx context.Context, mixID, playerID string) error {
	ctx, span := usecaseSpans.Start(ctx, "usecase.MixService.RemovePlayer")
	defer span.End()

	item, err := s.getEditableMix(ctx, mixID)
	if err != nil {
		return err
	}
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.statRepo.DeleteByPlayer(ctx, item.ID, playerID); err != nil {
			return storeError("delete player stats", err)
		}
		if err := s.rosterRepo.Remove(ctx, item.ID, playerID); err != nil {
			return storeError("remove player", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.changed(ctx, item)
	s.logger.InfoContext(ctx, "player removed from mix", "mix_id", item.ID, "player_id", playerID)
	return nil
}

// SetPayment records the mix fee as paid, or clears it back to zero.
func (s *MixService) SetPayment(ctx context.Context, mixID, playerID string, status roster.PaymentStatus) error {
	item, err := s.getEditableMix(ctx, mixID)
	if err != nil {
		return err
	}
	if _, err := roster.ParsePaymentStatus(string(status)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	amount := 0.0
	if status == roster.PaymentPaid {
		amount = item.Fee
	}
	if err := s.rosterRepo.SetPayment(ctx, item.ID, strings.TrimSpace(playerID), status, amount); err != nil {
		return storeError("set payment", err)
	}
	s.changed(ctx, item)
	return nil
}

// SelectMap appends the map after the highest taken position. Selecting a
// map twice is a no-op.
func (s *MixService) SelectMap(ctx context.Context, mixID, mapID string) error {
	item, err := s.getEditableMix(ctx, mixID)
	if err != nil {
		return err
	}
	mapID = strings.TrimSpace(mapID)
	if mapID == "" {
		return fmt.Errorf("%w: map id is required", ErrInvalidInput)
	}

	selected, err := s.mapRepo.ListSelected(ctx, item.ID)
	if err != nil {
		return storeError("list selected maps", err)
	}
	position := 0
	for _, sel := range selected {
		if sel.MapID == mapID {
			return nil
		}
		position = max(position, sel.Position)
	}

	err = s.mapRepo.Select(ctx, mix.MapSelection{MixID: item.ID, MapID: mapID, Position: position + 1})
	if err != nil {
		return storeError("select map", err)
	}
	return nil
}

func (s *MixService) UnselectMap(ctx context.Context, mixID, mapID string) error {
	item, err := s.getEditableMix(ctx, mixID)
	if err != nil {
		return err
	}
	if err := s.mapRepo.Unselect(ctx, item.ID, strings.TrimSpace(mapID)); err != nil {
		return storeError("unselect map", err)
	}
	return nil
}

// UpsertStat applies a field patch over the current stat line, starting from zeros.
func (s *MixService) UpsertStat(ctx context.Context, input UpsertStatInput) (mapstat.Stat, error) {
	ctx, span := usecaseSpans.Start(ctx, "usecase.MixService.UpsertStat")
	defer span.End()

	item, err := s.getEditableMix(ctx, input.MixID)
	if err != nil {
		return mapstat.Stat{}, err
	}
	playerID := strings.TrimSpace(input.PlayerID)
	mapID := strings.TrimSpace(input.MapID)
	if playerID == "" || mapID == "" {
		return mapstat.Stat{}, fmt.Errorf("%w: player id and map id are required", ErrInvalidInput)
	}
	if input.Patch.Empty() {
		return mapstat.Stat{}, fmt.Errorf("%w: at least one stat field is required", ErrInvalidInput)
	}
	if err := input.Patch.Validate(); err != nil {
		return mapstat.Stat{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	stats, err := s.statRepo.ListByMix(ctx, item.ID)
	if err != nil {
		return mapstat.Stat{}, storeError("list map stats", err)
	}
	current, ok := mapstat.IndexByPlayerMap(stats)[mapstat.Key{PlayerID: playerID, MapID: mapID}]
	if !ok {
		current = mapstat.Stat{MixID: item.ID, PlayerID: playerID, MapID: mapID}
	}

	next := input.Patch.Apply(current)
	if err := s.statRepo.Upsert(ctx, next); err != nil {
		return mapstat.Stat{}, storeError("upsert map stat", err)
	}
	s.changed(ctx, item)
	return next, nil
}

func (s *MixService) SetMapResult(ctx context.Context, mixID, mapID string, winner mix.Winner) error {
	item, err := s.getEditableMix(ctx, mixID)
	if err != nil {
		return err
	}
	if _, err := mix.ParseWinner(string(winner)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	mapID = strings.TrimSpace(mapID)
	if mapID == "" {
		return fmt.Errorf("%w: map id is required", ErrInvalidInput)
	}

	err = s.mapRepo.UpsertResult(ctx, mix.MapResult{MixID: item.ID, MapID: mapID, Winner: winner})
	if err != nil {
		return storeError("set map result", err)
	}
	return nil
}

func (s *MixService) getMix(ctx context.Context, mixID string) (mix.Mix, error) {
	mixID = strings.TrimSpace(mixID)
	if mixID == "" {
		return mix.Mix{}, fmt.Errorf("%w: mix id is required", ErrInvalidInput)
	}

	item, exists, err := s.mixRepo.GetByID(ctx, mixID)
	if err != nil {
		return mix.Mix{}, storeError("get mix", err)
	}
	if !exists {
		return mix.Mix{}, fmt.Errorf("%w: mix=%s", ErrNotFound, mixID)
	}
	return item, nil
}

// getEditableMix rejects edits once ratings have been applied, and while a
// finalization is half way: a resumed run replays the staged changes, so
// roster or stat edits made in between would never reach the ratings.
func (s *MixService) getEditableMix(ctx context.Context, mixID string) (mix.Mix, error) {
	item, err := s.getMix(ctx, mixID)
	if err != nil {
		return mix.Mix{}, err
	}
	if item.IsFinalized() {
		return mix.Mix{}, fmt.Errorf("%w: mix=%s is finalized", ErrInvalidInput, item.ID)
	}
	if s.ratingRepo != nil {
		staged, err := s.ratingRepo.ListByMix(ctx, item.ID)
		if err != nil {
			return mix.Mix{}, storeError("list staged rating changes", err)
		}
		if len(staged) > 0 {
			return mix.Mix{}, fmt.Errorf("%w: mix=%s has a pending finalization", ErrConflict, item.ID)
		}
	}
	return item, nil
}

func playerIDs(entries []roster.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.PlayerID)
	}
	return out
}
