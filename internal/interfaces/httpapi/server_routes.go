package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerSeasonRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/seasons", handler.ListSeasons)
	mux.HandleFunc("POST /v1/seasons", handler.CreateSeason)
	mux.HandleFunc("GET /v1/seasons/{seasonID}", handler.GetSeason)
	mux.HandleFunc("GET /v1/seasons/{seasonID}/mixes", handler.ListMixesBySeason)
	mux.HandleFunc("POST /v1/seasons/{seasonID}/mixes", handler.CreateMix)
	mux.HandleFunc("GET /v1/seasons/{seasonID}/ranking", handler.GetSeasonRanking)
	mux.HandleFunc("GET /v1/seasons/{seasonID}/summary", handler.GetSeasonSummary)
	mux.HandleFunc("GET /v1/seasons/{seasonID}/players/{playerID}/kd", handler.GetPlayerKDSeries)
	mux.HandleFunc("GET /v1/maps", handler.ListMaps)
	mux.HandleFunc("GET /v1/profiles", handler.ListProfiles)
}

func registerMixRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/mixes/{mixID}", handler.GetMix)
	mux.HandleFunc("POST /v1/mixes/{mixID}/players", handler.AddMixPlayer)
	mux.HandleFunc("DELETE /v1/mixes/{mixID}/players/{playerID}", handler.RemoveMixPlayer)
	mux.HandleFunc("PUT /v1/mixes/{mixID}/players/{playerID}/payment", handler.SetMixPayment)
	mux.HandleFunc("PUT /v1/mixes/{mixID}/maps/{mapID}", handler.SelectMixMap)
	mux.HandleFunc("DELETE /v1/mixes/{mixID}/maps/{mapID}", handler.UnselectMixMap)
	mux.HandleFunc("PATCH /v1/mixes/{mixID}/players/{playerID}/maps/{mapID}/stats", handler.PatchMapStat)
	mux.HandleFunc("PUT /v1/mixes/{mixID}/maps/{mapID}/result", handler.SetMapResult)
	mux.HandleFunc("POST /v1/mixes/{mixID}/finalize", handler.FinalizeMix)
	mux.HandleFunc("POST /v1/mixes/{mixID}/enroll-online", handler.EnrollOnline)
}

func registerPresenceRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/presence/{room}", handler.ListPresence)
	mux.HandleFunc("POST /v1/presence/{room}", handler.AnnouncePresence)
	mux.HandleFunc("DELETE /v1/presence/{room}/{userID}", handler.LeavePresence)
}
