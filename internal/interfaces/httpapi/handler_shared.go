package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/mix-league/internal/domain/mix"
	"github.com/riskibarqy/mix-league/internal/domain/presence"
	"github.com/riskibarqy/mix-league/internal/domain/profile"
	"github.com/riskibarqy/mix-league/internal/domain/ranking"
	"github.com/riskibarqy/mix-league/internal/domain/rating"
	"github.com/riskibarqy/mix-league/internal/domain/season"
	basecache "github.com/riskibarqy/mix-league/internal/platform/cache"
	"github.com/riskibarqy/mix-league/internal/platform/logging"
	"github.com/riskibarqy/mix-league/internal/usecase"
)

const dateLayout = "2006-01-02"

type Handler struct {
	seasonService   *usecase.SeasonService
	mixService      *usecase.MixService
	finalizeService *usecase.FinalizeService
	rankingService  *usecase.RankingService
	recruitService  *usecase.RecruitService
	profileService  *usecase.ProfileService
	cache           *basecache.Store
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	seasonService *usecase.SeasonService,
	mixService *usecase.MixService,
	finalizeService *usecase.FinalizeService,
	rankingService *usecase.RankingService,
	recruitService *usecase.RecruitService,
	profileService *usecase.ProfileService,
	cache *basecache.Store,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		seasonService:   seasonService,
		mixService:      mixService,
		finalizeService: finalizeService,
		rankingService:  rankingService,
		recruitService:  recruitService,
		profileService:  profileService,
		cache:           cache,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	payload := healthDTO{Status: "ok"}
	if h.cache != nil {
		stats := h.cache.Stats()
		payload.Cache = &cacheStatsDTO{Entries: stats.Entries, Hits: stats.Hits, Misses: stats.Misses}
	}
	writeSuccess(ctx, w, http.StatusOK, payload)
}

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, dst any) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, dst)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := handlerSpans.Start(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type createSeasonRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	StartsOn string `json:"startsOn" validate:"required,datetime=2006-01-02"`
	EndsOn   string `json:"endsOn" validate:"required,datetime=2006-01-02"`
}

type createMixRequest struct {
	ScheduledAt string  `json:"scheduledAt" validate:"required"`
	Fee         float64 `json:"fee" validate:"min=0"`
}

type addPlayerRequest struct {
	PlayerID string `json:"playerId" validate:"required"`
}

type paymentRequest struct {
	Status string `json:"status" validate:"required,oneof=paid pending"`
}

type statPatchRequest struct {
	Kills   *int `json:"kills" validate:"omitempty,min=0"`
	Deaths  *int `json:"deaths" validate:"omitempty,min=0"`
	Assists *int `json:"assists" validate:"omitempty,min=0"`
	MVPs    *int `json:"mvps" validate:"omitempty,min=0"`
}

type mapResultRequest struct {
	Winner string `json:"winner" validate:"required,oneof=A B draw"`
}

type announceRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type healthDTO struct {
	Status string         `json:"status"`
	Cache  *cacheStatsDTO `json:"cache,omitempty"`
}

type cacheStatsDTO struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

type seasonDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	StartsOn string `json:"startsOn"`
	EndsOn   string `json:"endsOn"`
	Active   bool   `json:"active"`
}

type mixDTO struct {
	ID          string  `json:"id"`
	SeasonID    string  `json:"seasonId"`
	ScheduledAt string  `json:"scheduledAt"`
	Fee         float64 `json:"fee"`
	Status      string  `json:"status"`
}

type gameMapDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type profileDTO struct {
	ID   string `json:"id"`
	Nick string `json:"nick"`
	Name string `json:"name"`
	Role string `json:"role"`
	Elo  int    `json:"elo"`
}

type rankingRowDTO struct {
	Position int     `json:"position"`
	PlayerID string  `json:"playerId"`
	Nick     string  `json:"nick"`
	Elo      int     `json:"elo"`
	Mixes    int     `json:"mixes"`
	Paid     float64 `json:"paid"`
	Pending  float64 `json:"pending"`
	Kills    int     `json:"kills"`
	Deaths   int     `json:"deaths"`
	KD       float64 `json:"kd"`
	Score    float64 `json:"score"`
}

type seasonSummaryDTO struct {
	Players     int     `json:"players"`
	Mixes       int     `json:"mixes"`
	Collected   float64 `json:"collected"`
	PaymentRate int     `json:"paymentRate"`
}

type kdPointDTO struct {
	MixID       string  `json:"mixId"`
	ScheduledAt string  `json:"scheduledAt"`
	KD          float64 `json:"kd"`
}

type mixBoardDTO struct {
	Mix     mixDTO           `json:"mix"`
	Maps    []boardMapDTO    `json:"maps"`
	Players []boardPlayerDTO `json:"players"`
	Totals  mixTotalsDTO     `json:"totals"`
}

type boardMapDTO struct {
	MapID    string `json:"mapId"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Winner   string `json:"winner,omitempty"`
}

type boardPlayerDTO struct {
	PlayerID  string        `json:"playerId"`
	Nick      string        `json:"nick"`
	Elo       int           `json:"elo"`
	Payment   string        `json:"payment"`
	PaidValue float64       `json:"paidValue"`
	Kills     int           `json:"kills"`
	Deaths    int           `json:"deaths"`
	KD        float64       `json:"kd"`
	Stats     []statLineDTO `json:"stats"`
}

type statLineDTO struct {
	MapID   string  `json:"mapId"`
	Kills   int     `json:"kills"`
	Deaths  int     `json:"deaths"`
	Assists int     `json:"assists"`
	MVPs    int     `json:"mvps"`
	KD      float64 `json:"kd"`
}

type mixTotalsDTO struct {
	Players     int     `json:"players"`
	Paid        float64 `json:"paid"`
	Pending     float64 `json:"pending"`
	PaymentRate int     `json:"paymentRate"`
}

type finalizeDTO struct {
	MixID   string         `json:"mixId"`
	TeamA   []string       `json:"teamA"`
	TeamB   []string       `json:"teamB"`
	Changes []eloChangeDTO `json:"changes"`
	Resumed bool           `json:"resumed"`
	Message string         `json:"message"`
}

type eloChangeDTO struct {
	PlayerID  string  `json:"playerId"`
	Team      string  `json:"team"`
	EloBefore int     `json:"eloBefore"`
	Delta     float64 `json:"delta"`
	EloAfter  int     `json:"eloAfter"`
}

type memberDTO struct {
	UserID string `json:"userId"`
	Nick   string `json:"nick"`
	At     string `json:"at"`
}

type enrollDTO struct {
	MixID   string   `json:"mixId"`
	Added   []string `json:"added"`
	Skipped []string `json:"skipped"`
}

func seasonToDTO(v season.Season) seasonDTO {
	return seasonDTO{
		ID:       v.ID,
		Name:     v.Name,
		StartsOn: formatDate(v.StartsOn),
		EndsOn:   formatDate(v.EndsOn),
		Active:   v.Active,
	}
}

func mixToDTO(v mix.Mix) mixDTO {
	return mixDTO{
		ID:          v.ID,
		SeasonID:    v.SeasonID,
		ScheduledAt: formatTime(v.ScheduledAt),
		Fee:         v.Fee,
		Status:      string(v.Status),
	}
}

func profileToDTO(v profile.Profile) profileDTO {
	return profileDTO{
		ID:   v.ID,
		Nick: v.DisplayName(),
		Name: v.Name,
		Role: string(v.Role),
		Elo:  v.Elo,
	}
}

func rankingToDTO(rows []ranking.Row) []rankingRowDTO {
	out := make([]rankingRowDTO, 0, len(rows))
	for i, row := range rows {
		out = append(out, rankingRowDTO{
			Position: i + 1,
			PlayerID: row.PlayerID,
			Nick:     row.Nick,
			Elo:      row.Elo,
			Mixes:    row.Mixes,
			Paid:     row.Paid,
			Pending:  row.Pending,
			Kills:    row.Kills,
			Deaths:   row.Deaths,
			KD:       row.KD,
			Score:    row.Score,
		})
	}
	return out
}

func boardToDTO(v usecase.MixBoard) mixBoardDTO {
	out := mixBoardDTO{
		Mix:     mixToDTO(v.Mix),
		Maps:    make([]boardMapDTO, 0, len(v.Maps)),
		Players: make([]boardPlayerDTO, 0, len(v.Players)),
		Totals: mixTotalsDTO{
			Players:     v.Totals.Players,
			Paid:        v.Totals.Paid,
			Pending:     v.Totals.Pending,
			PaymentRate: v.Totals.PaymentRate,
		},
	}
	for _, m := range v.Maps {
		item := boardMapDTO{MapID: m.MapID, Name: m.Name, Position: m.Position}
		if m.HasResult {
			item.Winner = string(m.Winner)
		}
		out.Maps = append(out.Maps, item)
	}
	for _, p := range v.Players {
		item := boardPlayerDTO{
			PlayerID:  p.PlayerID,
			Nick:      p.Nick,
			Elo:       p.Elo,
			Payment:   string(p.Payment),
			PaidValue: p.PaidValue,
			Kills:     p.Kills,
			Deaths:    p.Deaths,
			KD:        p.KD,
			Stats:     make([]statLineDTO, 0, len(p.Stats)),
		}
		for _, s := range p.Stats {
			item.Stats = append(item.Stats, statLineDTO{
				MapID:   s.MapID,
				Kills:   s.Kills,
				Deaths:  s.Deaths,
				Assists: s.Assists,
				MVPs:    s.MVPs,
				KD:      s.KD,
			})
		}
		out.Players = append(out.Players, item)
	}
	return out
}

func finalizeToDTO(v usecase.FinalizeResult) finalizeDTO {
	out := finalizeDTO{
		MixID:   v.MixID,
		TeamA:   v.TeamA,
		TeamB:   v.TeamB,
		Changes: make([]eloChangeDTO, 0, len(v.Changes)),
		Resumed: v.Resumed,
		Message: v.Message,
	}
	for _, c := range v.Changes {
		out.Changes = append(out.Changes, changeToDTO(c))
	}
	return out
}

func changeToDTO(c rating.Change) eloChangeDTO {
	return eloChangeDTO{
		PlayerID:  c.PlayerID,
		Team:      string(c.Team),
		EloBefore: c.EloBefore,
		Delta:     ranking.Round2(c.Delta),
		EloAfter:  c.EloAfter,
	}
}

func memberToDTO(v presence.Member) memberDTO {
	return memberDTO{UserID: v.UserID, Nick: v.Nick, At: formatTime(v.At)}
}

func formatDate(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(dateLayout)
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

func parseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", usecase.ErrInvalidInput, field)
	}
	return t, nil
}

// parseDateTime accepts RFC3339 and the "YYYY-MM-DDTHH:MM" value a
// datetime-local input sends.
func parseDateTime(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", dateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s must be an RFC3339 timestamp", usecase.ErrInvalidInput, field)
}
