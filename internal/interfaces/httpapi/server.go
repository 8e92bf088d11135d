package httpapi

import (
	"net/http"

	"github.com/riskibarqy/mix-league/internal/platform/logging"
	"github.com/riskibarqy/mix-league/internal/platform/tracing"
)

var handlerSpans = tracing.NewScope("mix-league/internal/interfaces/httpapi", "httpapi.Handler.")

func NewRouter(handler *Handler, logger *logging.Logger, corsAllowedOrigins []string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerSeasonRoutes(mux, handler)
	registerMixRoutes(mux, handler)
	registerPresenceRoutes(mux, handler)

	return chain(mux,
		requestTracing,
		requestLogging(logger),
		cors(corsAllowedOrigins),
		recoverPanic(logger),
	)
}
