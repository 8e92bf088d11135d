package observability

import (
	"strings"

	"github.com/riskibarqy/mix-league/internal/config"
	"github.com/riskibarqy/mix-league/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
)

// startUptrace installs the global OpenTelemetry providers. Without a DSN
// tracing stays on the no-op providers.
func startUptrace(cfg config.Config, logger *logging.Logger) (stopFunc, error) {
	if strings.TrimSpace(cfg.UptraceDSN) == "" {
		logger.Warn("uptrace enabled without dsn, tracing stays off")
		return nil, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
	)
	logger.Info("uptrace started", "service", cfg.ServiceName, "version", cfg.ServiceVersion, "env", cfg.AppEnv)
	return uptrace.Shutdown, nil
}
