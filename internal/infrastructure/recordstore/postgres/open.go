package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const tracedQueryLimit = 512

// OpenConfig describes the connection pool behind a Store.
type OpenConfig struct {
	URL             string
	ApplicationName string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// Open dials postgres through the traced sqlx driver and checks the
// connection before returning it.
func Open(ctx context.Context, cfg OpenConfig) (*sqlx.DB, error) {
	dsn, err := ConnString(cfg.URL, cfg.ApplicationName)
	if err != nil {
		return nil, err
	}

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBName(DatabaseName(dsn)),
		otelsql.WithQueryFormatter(TraceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if cfg.PingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.PingTimeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// ConnString turns a postgres:// URL or a key=value DSN into key=value form
// and sets application_name unless the caller already did.
func ConnString(raw, applicationName string) (string, error) {
	dsn := strings.TrimSpace(raw)
	if dsn == "" {
		return "", fmt.Errorf("postgres url is required")
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		parsed, err := pq.ParseURL(dsn)
		if err != nil {
			return "", fmt.Errorf("parse postgres url: %w", err)
		}
		dsn = parsed
	}

	if applicationName != "" && connParam(dsn, "application_name") == "" {
		dsn += " application_name=" + quoteConnValue(applicationName)
	}
	return dsn, nil
}

// DatabaseName reports the dbname parameter of a key=value DSN.
func DatabaseName(dsn string) string {
	return connParam(dsn, "dbname")
}

func connParam(dsn, key string) string {
	for _, field := range strings.Fields(dsn) {
		name, value, ok := strings.Cut(field, "=")
		if ok && name == key {
			return strings.Trim(value, `'"`)
		}
	}
	return ""
}

func quoteConnValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// TraceQuery collapses whitespace and caps the statement recorded on spans.
func TraceQuery(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	if len(query) <= tracedQueryLimit {
		return query
	}

	cut := tracedQueryLimit
	for cut > 0 && !utf8.RuneStart(query[cut]) {
		cut--
	}
	return query[:cut] + "..."
}
