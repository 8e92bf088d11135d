package config

import (
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/mix-league/internal/platform/logging"
)

// baseEnv pins the variables a developer machine is likely to export.
func baseEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "STORE_DRIVER", "DB_URL", "POSTGREST_URL", "POSTGREST_API_KEY",
		"UPTRACE_ENABLED", "UPTRACE_DSN", "OTEL_EXPORTER_OTLP_HEADERS",
		"PYROSCOPE_ENABLED", "PPROF_ENABLED", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	baseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	checks := []struct {
		name string
		ok   bool
	}{
		{"app env", cfg.AppEnv == EnvDev},
		{"memory store", cfg.StoreDriver == StoreMemory},
		{"http addr", cfg.HTTPAddr == ":8080"},
		{"service name", cfg.ServiceName == "mix-league-api"},
		{"presence ttl", cfg.PresenceTTL == 45*time.Second},
		{"cache", cfg.CacheEnabled && cfg.CacheTTL == time.Minute},
		{"warm workers", cfg.RankingWarmWorkers == 4},
		{"postgrest retries", cfg.PostgRESTMaxRetries == 2 && cfg.PostgRESTCircuitEnabled},
		{"db pool", cfg.DBMaxOpenConns == 10 && cfg.DBMaxIdleConns == 5 && cfg.DBConnMaxLifetime == 30*time.Minute},
		{"cors wildcard", len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*"},
		{"pyroscope app", cfg.PyroscopeAppName == cfg.ServiceName},
		{"log level", cfg.LogLevel == logging.LevelInfo},
	}
	for _, c := range checks {
		if !c.ok {
			t.Fatalf("unexpected default for %s: %+v", c.name, cfg)
		}
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"app env", map[string]string{"APP_ENV": "invalid"}, "APP_ENV"},
		{"store driver", map[string]string{"STORE_DRIVER": "sqlite"}, "STORE_DRIVER"},
		{"postgrest key", map[string]string{"STORE_DRIVER": StorePostgREST, "POSTGREST_URL": "https://project.supabase.co"}, "POSTGREST_API_KEY"},
		{"negative retries", map[string]string{"POSTGREST_MAX_RETRIES": "-1"}, "POSTGREST_MAX_RETRIES"},
		{"zero pool", map[string]string{"DB_MAX_OPEN_CONNS": "0"}, "DB_MAX_OPEN_CONNS"},
		{"bad ttl", map[string]string{"CACHE_TTL": "bad"}, "CACHE_TTL"},
		{"zero presence ttl", map[string]string{"PRESENCE_TTL": "0s"}, "PRESENCE_TTL"},
		{"bad bool", map[string]string{"CACHE_ENABLED": "sometimes"}, "CACHE_ENABLED"},
		{"uptrace without dsn", map[string]string{"UPTRACE_ENABLED": "true"}, "UPTRACE_DSN"},
		{"pyroscope without server", map[string]string{"PYROSCOPE_ENABLED": "true"}, "PYROSCOPE_SERVER_ADDRESS"},
		{"empty cors", map[string]string{"CORS_ALLOWED_ORIGINS": " , "}, "CORS_ALLOWED_ORIGINS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error to mention %s, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_ReportsEveryInvalidVariable(t *testing.T) {
	baseEnv(t)
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("RANKING_WARM_WORKERS", "many")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, key := range []string{"CACHE_TTL", "RANKING_WARM_WORKERS"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in %v", key, err)
		}
	}
}

func TestLoad_PostgRESTDriverIsNormalized(t *testing.T) {
	baseEnv(t)
	t.Setenv("STORE_DRIVER", " PostgREST ")
	t.Setenv("POSTGREST_URL", "https://project.supabase.co")
	t.Setenv("POSTGREST_API_KEY", "anon")
	t.Setenv("POSTGREST_MAX_RETRIES", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StoreDriver != StorePostgREST || cfg.PostgRESTMaxRetries != 0 {
		t.Fatalf("unexpected config: driver=%q retries=%d", cfg.StoreDriver, cfg.PostgRESTMaxRetries)
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	baseEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `foo=bar, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_BlankValuesFallBack(t *testing.T) {
	baseEnv(t)
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")
	t.Setenv("APP_SERVICE_NAME", "mix-league-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr, got %q", cfg.PprofAddr)
	}
	if cfg.PyroscopeAppName != "mix-league-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
		t.Fatalf("unexpected CORS origins: %+v", cfg.CORSAllowedOrigins)
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]logging.Level{
		"debug":   logging.LevelDebug,
		" WARN ":  logging.LevelWarn,
		"warning": logging.LevelWarn,
		"error":   logging.LevelError,
		"verbose": logging.LevelInfo,
	}
	for raw, want := range tests {
		if got := ParseLogLevel(raw); got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}
