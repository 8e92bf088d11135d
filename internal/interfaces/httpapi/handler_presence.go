package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) ListPresence(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.ListPresence")
	defer span.End()

	room := strings.TrimSpace(r.PathValue("room"))
	members, err := h.recruitService.ListOnline(ctx, room)
	if err != nil {
		h.logger.WarnContext(ctx, "list presence failed", "room", room, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]memberDTO, 0, len(members))
	for _, m := range members {
		items = append(items, memberToDTO(m))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

// AnnouncePresence doubles as the heartbeat; clients repeat it before the
// presence TTL runs out.
func (h *Handler) AnnouncePresence(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.AnnouncePresence")
	defer span.End()

	room := strings.TrimSpace(r.PathValue("room"))
	var req announceRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	member, err := h.recruitService.Announce(ctx, room, req.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "announce presence failed", "room", room, "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, memberToDTO(member))
}

func (h *Handler) LeavePresence(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.LeavePresence")
	defer span.End()

	room := strings.TrimSpace(r.PathValue("room"))
	userID := strings.TrimSpace(r.PathValue("userID"))
	if err := h.recruitService.Leave(ctx, room, userID); err != nil {
		h.logger.WarnContext(ctx, "leave presence failed", "room", room, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) EnrollOnline(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpans.Start(r.Context(), "httpapi.Handler.EnrollOnline")
	defer span.End()

	mixID := strings.TrimSpace(r.PathValue("mixID"))
	room := strings.TrimSpace(r.URL.Query().Get("room"))
	result, err := h.recruitService.EnrollOnline(ctx, mixID, room)
	if err != nil {
		h.logger.WarnContext(ctx, "enroll online players failed", "mix_id", mixID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, enrollDTO{
		MixID:   result.MixID,
		Added:   nonNil(result.Added),
		Skipped: nonNil(result.Skipped),
	})
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
