// Package observability starts the optional telemetry sidecars of the API:
// Uptrace tracing, Pyroscope continuous profiling and a pprof listener.
package observability

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/riskibarqy/mix-league/internal/config"
	"github.com/riskibarqy/mix-league/internal/platform/logging"
)

type stopFunc func(context.Context) error

// Telemetry holds whatever Setup started so it can be stopped in reverse
// order.
type Telemetry struct {
	stops  []namedStop
	logger *logging.Logger
}

type namedStop struct {
	name string
	stop stopFunc
}

// Setup starts every component enabled in cfg. On error the components
// already started are shut down before returning.
func Setup(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Telemetry{logger: logger.Named("telemetry")}

	starters := []struct {
		name    string
		enabled bool
		start   func(config.Config, *logging.Logger) (stopFunc, error)
	}{
		{name: "uptrace", enabled: cfg.UptraceEnabled, start: startUptrace},
		{name: "pyroscope", enabled: cfg.PyroscopeEnabled, start: startPyroscope},
		{name: "pprof", enabled: cfg.PprofEnabled, start: startPprof},
	}
	for _, s := range starters {
		if !s.enabled {
			t.logger.Debug("telemetry component disabled", "component", s.name)
			continue
		}
		stop, err := s.start(cfg, t.logger)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("start %s: %w", s.name, err), t.Shutdown(ctx))
		}
		if stop != nil {
			t.stops = append(t.stops, namedStop{name: s.name, stop: stop})
		}
	}
	return t, nil
}

// Enabled lists the running components in start order.
func (t *Telemetry) Enabled() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.stops))
	for _, s := range t.stops {
		names = append(names, s.name)
	}
	return names
}

func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	for _, s := range slices.Backward(t.stops) {
		if err := s.stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", s.name, err))
		}
	}
	t.stops = nil
	return errors.Join(errs...)
}
