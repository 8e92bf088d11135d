package postgrest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/mix-league/internal/platform/logging"
	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
	"github.com/riskibarqy/mix-league/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/sync/singleflight"
)

const (
	restPrefix      = "/rest/v1/"
	maxResponseSize = 8 << 20
)

type Config struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Store talks to a hosted PostgREST endpoint. It has no transactions;
// callers rely on idempotent writes instead.
type Store struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	// Identical concurrent reads share one round trip.
	flight singleflight.Group
}

func NewStore(cfg Config) (*Store, error) {
	baseURL, err := validateBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid POSTGREST_URL")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("postgrest")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}
	breaker := resilience.NewCircuitBreaker(cfg.CircuitBreaker).
		OnStateChange(func(from, to resilience.CircuitState) {
			logger.Warn("circuit breaker state changed", "from", from, "to", to)
		})

	return &Store{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
		breaker:    breaker,
	}, nil
}

func (s *Store) Select(ctx context.Context, collection string, query recordstore.Query) ([]recordstore.Row, error) {
	if query.HasEmptyIn() {
		return nil, nil
	}

	values := filterValues(query.Filters)
	if query.AllColumns() {
		values.Set("select", "*")
	} else {
		values.Set("select", strings.Join(query.Columns, ","))
	}
	if len(query.Order) > 0 {
		parts := make([]string, 0, len(query.Order))
		for _, o := range query.Order {
			if o.Desc {
				parts = append(parts, o.Column+".desc")
				continue
			}
			parts = append(parts, o.Column+".asc")
		}
		values.Set("order", strings.Join(parts, ","))
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}

	fullURL := s.collectionURL(collection, values)
	out, err, _ := s.flight.Do(fullURL, func() (any, error) {
		return s.do(ctx, request{method: http.MethodGet, url: fullURL, retryable: true})
	})
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", collection, err)
	}

	raw, _ := out.([]byte)
	return decodeRows(raw)
}

func (s *Store) Insert(ctx context.Context, collection string, row recordstore.Row) (recordstore.Row, error) {
	raw, err := s.do(ctx, request{
		method: http.MethodPost,
		url:    s.collectionURL(collection, nil),
		body:   row,
		prefer: "return=representation",
	})
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", collection, err)
	}

	rows, err := decodeRows(raw)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", collection, err)
	}
	if len(rows) == 0 {
		return row.Clone(), nil
	}
	return rows[0], nil
}

func (s *Store) Update(ctx context.Context, collection string, patch recordstore.Row, filters ...recordstore.Filter) error {
	if len(patch) == 0 {
		return nil
	}
	if len(filters) == 0 {
		return fmt.Errorf("update %s: filters are required", collection)
	}

	_, err := s.do(ctx, request{
		method:    http.MethodPatch,
		url:       s.collectionURL(collection, filterValues(filters)),
		body:      patch,
		prefer:    "return=minimal",
		retryable: true,
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", collection, err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, collection string, row recordstore.Row, conflictKeys ...string) error {
	values := url.Values{}
	if len(conflictKeys) > 0 {
		values.Set("on_conflict", strings.Join(conflictKeys, ","))
	}

	_, err := s.do(ctx, request{
		method:    http.MethodPost,
		url:       s.collectionURL(collection, values),
		body:      row,
		prefer:    "resolution=merge-duplicates,return=minimal",
		retryable: true,
	})
	if err != nil {
		return fmt.Errorf("upsert %s: %w", collection, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection string, filters ...recordstore.Filter) error {
	if len(filters) == 0 {
		return fmt.Errorf("delete %s: filters are required", collection)
	}

	_, err := s.do(ctx, request{
		method:    http.MethodDelete,
		url:       s.collectionURL(collection, filterValues(filters)),
		prefer:    "return=minimal",
		retryable: true,
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", collection, err)
	}
	return nil
}

type request struct {
	method    string
	url       string
	body      any
	prefer    string
	retryable bool
}

func (s *Store) do(ctx context.Context, req request) ([]byte, error) {
	var payload []byte
	if req.body != nil {
		buf := bytebufferpool.Get()
		defer bytebufferpool.Put(buf)
		if err := sonic.ConfigDefault.NewEncoder(buf).Encode(req.body); err != nil {
			return nil, crerr.Wrap(err, "encode request body")
		}
		payload = buf.Bytes()
	}

	var raw []byte
	err := s.breaker.Execute(func() error {
		var err error
		raw, err = s.execute(ctx, req, payload)
		return err
	}, recordstore.IsTransient)
	if errors.Is(err, resilience.ErrCircuitOpen) {
		s.logger.WarnContext(ctx, "postgrest circuit breaker rejected request", "method", req.method, "state", s.breaker.State())
		return nil, fmt.Errorf("%w: record store is temporarily unavailable: %v", recordstore.ErrTransient, err)
	}
	return raw, err
}

func (s *Store) execute(ctx context.Context, req request, payload []byte) ([]byte, error) {
	attempts := 0
	if req.retryable {
		attempts = s.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= attempts; attempt++ {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
		if err != nil {
			return nil, crerr.Wrap(err, "build request")
		}
		s.setHeaders(httpReq, req.prefer, payload != nil)

		resp, err := s.httpClient.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", recordstore.ErrTransient, sanitizeSensitiveText(err.Error(), s.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", recordstore.ErrTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusConflict:
				return nil, fmt.Errorf("%w: status=%d body=%s", recordstore.ErrConflict, resp.StatusCode, abbreviateBody(raw))
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: status=%d body=%s", recordstore.ErrTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("record store status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == attempts {
			break
		}
		backoff := time.Duration(attempt+1) * 250 * time.Millisecond
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("record store request failed")
	}
	s.logger.WarnContext(ctx, "postgrest request failed", "method", req.method, "url", req.url, "error", lastErr)
	return nil, lastErr
}

func (s *Store) setHeaders(req *http.Request, prefer string, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
}

func (s *Store) collectionURL(collection string, values url.Values) string {
	fullURL := s.baseURL + restPrefix + url.PathEscape(collection)
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}
	return fullURL
}

func filterValues(filters []recordstore.Filter) url.Values {
	values := url.Values{}
	for _, f := range filters {
		switch f.Op {
		case recordstore.OpIn:
			items := make([]string, 0, len(f.Values))
			for _, v := range f.Values {
				items = append(items, quoteListItem(formatValue(v)))
			}
			values.Add(f.Column, "in.("+strings.Join(items, ",")+")")
		default:
			var v any
			if len(f.Values) > 0 {
				v = f.Values[0]
			}
			if v == nil {
				values.Add(f.Column, "is.null")
				continue
			}
			values.Add(f.Column, "eq."+formatValue(v))
		}
	}
	return values
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// quoteListItem wraps in() members that contain reserved characters.
func quoteListItem(v string) string {
	if !strings.ContainsAny(v, `,()" `) {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}

func decodeRows(raw []byte) ([]recordstore.Row, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	var items []map[string]any
	if err := sonic.Unmarshal(raw, &items); err != nil {
		return nil, crerr.Wrap(err, "decode rows")
	}
	out := make([]recordstore.Row, 0, len(items))
	for _, item := range items {
		out = append(out, recordstore.Row(item))
	}
	return out, nil
}

func validateBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func sanitizeSensitiveText(value, secret string) string {
	value = strings.TrimSpace(value)
	if value == "" || secret == "" {
		return value
	}
	return strings.ReplaceAll(value, secret, "REDACTED")
}

func abbreviateBody(raw []byte) string {
	const limit = 512
	text := strings.TrimSpace(string(raw))
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
