package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/mix-league/internal/usecase"
)

func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.ListSeasons")
	defer span.End()

	seasons, err := h.seasonService.ListSeasons(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list seasons failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]seasonDTO, 0, len(seasons))
	for _, s := range seasons {
		items = append(items, seasonToDTO(s))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.CreateSeason")
	defer span.End()

	var req createSeasonRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	startsOn, err := parseDate("startsOn", req.StartsOn)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	endsOn, err := parseDate("endsOn", req.EndsOn)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.seasonService.CreateSeason(ctx, usecase.CreateSeasonInput{
		Name:     req.Name,
		StartsOn: startsOn,
		EndsOn:   endsOn,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create season failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, seasonToDTO(item))
}

func (h *Handler) GetSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.GetSeason")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	item, err := h.seasonService.GetSeason(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "get season failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(item))
}

func (h *Handler) ListMixesBySeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.ListMixesBySeason")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	mixes, err := h.seasonService.ListMixes(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "list mixes failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]mixDTO, 0, len(mixes))
	for _, m := range mixes {
		items = append(items, mixToDTO(m))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateMix(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.CreateMix")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	var req createMixRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	scheduledAt, err := parseDateTime("scheduledAt", req.ScheduledAt)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.seasonService.CreateMix(ctx, usecase.CreateMixInput{
		SeasonID:    seasonID,
		ScheduledAt: scheduledAt,
		Fee:         req.Fee,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create mix failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, mixToDTO(item))
}

func (h *Handler) GetSeasonRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.GetSeasonRanking")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	rows, err := h.rankingService.SeasonRanking(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "season ranking failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rankingToDTO(rows))
}

func (h *Handler) GetSeasonSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.GetSeasonSummary")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	summary, err := h.rankingService.SeasonSummary(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "season summary failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonSummaryDTO{
		Players:     summary.Players,
		Mixes:       summary.Mixes,
		Collected:   summary.Collected,
		PaymentRate: summary.PaymentRate,
	})
}

func (h *Handler) GetPlayerKDSeries(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.GetPlayerKDSeries")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	playerID := strings.TrimSpace(r.PathValue("playerID"))
	points, err := h.rankingService.PlayerKDSeries(ctx, seasonID, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "kd series failed", "season_id", seasonID, "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]kdPointDTO, 0, len(points))
	for _, p := range points {
		items = append(items, kdPointDTO{MixID: p.MixID, ScheduledAt: formatTime(p.ScheduledAt), KD: p.KD})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListMaps(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.ListMaps")
	defer span.End()

	maps, err := h.seasonService.ListMaps(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list maps failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameMapDTO, 0, len(maps))
	for _, m := range maps {
		items = append(items, gameMapDTO{ID: m.ID, Name: m.Name})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.ListProfiles")
	defer span.End()

	profiles, err := h.profileService.ListProfiles(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list profiles failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]profileDTO, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, profileToDTO(p))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
