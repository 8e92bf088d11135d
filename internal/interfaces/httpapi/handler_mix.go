package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/mix-league/internal/domain/mapstat"
	"github.com/riskibarqy/mix-league/internal/domain/mix"
	"github.com/riskibarqy/mix-league/internal/domain/ranking"
	"github.com/riskibarqy/mix-league/internal/domain/rating"
	"github.com/riskibarqy/mix-league/internal/domain/roster"
	"github.com/riskibarqy/mix-league/internal/usecase"
)

func (h *Handler) GetMix(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.GetMix")
	defer span.End()

	mixID := strings.TrimSpace(r.PathValue("mixID"))
	board, err := h.mixService.GetBoard(ctx, mixID)
	if err != nil {
		h.logger.WarnContext(ctx, "get mix board failed", "mix_id", mixID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, boardToDTO(board))
}

func (h *Handler) AddMixPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.AddMixPlayer")
	defer span.End()

	mixID := strings.TrimSpace(r.PathValue("mixID"))
	var req addPlayerRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.mixService.AddPlayer(ctx, mixID, req.PlayerID); err != nil {
		h.logger.WarnContext(ctx, "add mix player failed", "mix_id", mixID, "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, map[string]string{"mixId": mixID, "playerId": req.PlayerID})
}

func (h *Handler) RemoveMixPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.RemoveMixPlayer")
	defer span.End()

	mixID := strings.TrimSpace(r.PathValue("mixID"))
	playerID := strings.TrimSpace(r.PathValue("playerID"))
	if err := h.mixService.RemovePlayer(ctx, mixID, playerID); err != nil {
		h.logger.WarnContext(ctx, "remove mix player failed", "mix_id", mixID, "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetMixPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.SetMixPayment")
	defer span.End()

	mixID := strings.TrimSpace(r.PathValue("mixID"))
	playerID := strings.TrimSpace(r.PathValue("playerID"))
	var req paymentRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.mixService.SetPayment(ctx, mixID, playerID, roster.PaymentStatus(req.Status)); err != nil {
		h.logger.WarnContext(ctx, "set payment failed", "mix_id", mixID, "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"playerId": playerID, "status": req.Status})
}

func (h *Handler) SelectMixMap(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.SelectMixMap")
	defer span.End()

	mixID := strings.TrimSpace(r.PathValue("mixID"))
	mapID := strings.TrimSpace(r.PathValue("mapID"))
	if err := h.mixService.SelectMap(ctx, mixID, mapID); err != nil {
		h.logger.WarnContext(ctx, "select map failed", "mix_id", mixID, "map_id", mapID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UnselectMixMap(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.UnselectMixMap")
	defer span.End()

	mixID := strings.TrimSpace(r.PathValue("mixID"))
	mapID := strings.TrimSpace(r.PathValue("mapID"))
	if err := h.mixService.UnselectMap(ctx, mixID, mapID); err != nil {
		h.logger.WarnContext(ctx, "unselect map failed", "mix_id", mixID, "map_id", mapID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PatchMapStat(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.PatchMapStat")
	defer span.End()

	mixID := strings.TrimSpace(r.PathValue("mixID"))
	playerID := strings.TrimSpace(r.PathValue("playerID"))
	mapID := strings.TrimSpace(r.PathValue("mapID"))
	var req statPatchRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	stat, err := h.mixService.UpsertStat(ctx, usecase.UpsertStatInput{
		MixID:    mixID,
		PlayerID: playerID,
		MapID:    mapID,
		Patch: mapstat.Patch{
			Kills:   req.Kills,
			Deaths:  req.Deaths,
			Assists: req.Assists,
			MVPs:    req.MVPs,
		},
	})
	if err != nil {
		h.logger.WarnContext(ctx, "upsert map stat failed", "mix_id", mixID, "player_id", playerID, "map_id", mapID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statLineDTO{
		MapID:   stat.MapID,
		Kills:   stat.Kills,
		Deaths:  stat.Deaths,
		Assists: stat.Assists,
		MVPs:    stat.MVPs,
		KD:      ranking.Round2(rating.SafeKD(stat.Kills, stat.Deaths)),
	})
}

func (h *Handler) SetMapResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.SetMapResult")
	defer span.End()

	mixID := strings.TrimSpace(r.PathValue("mixID"))
	mapID := strings.TrimSpace(r.PathValue("mapID"))
	var req mapResultRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.mixService.SetMapResult(ctx, mixID, mapID, mix.Winner(req.Winner)); err != nil {
		h.logger.WarnContext(ctx, "set map result failed", "mix_id", mixID, "map_id", mapID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"mapId": mapID, "winner": req.Winner})
}

func (h *Handler) FinalizeMix(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.FinalizeMix")
	defer span.End()

	mixID := strings.TrimSpace(r.PathValue("mixID"))
	result, err := h.finalizeService.Finalize(ctx, mixID)
	if err != nil {
		h.logger.WarnContext(ctx, "finalize mix failed", "mix_id", mixID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, finalizeToDTO(result))
}
