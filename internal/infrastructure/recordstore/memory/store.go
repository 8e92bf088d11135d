package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
)

// Store is an in-process record store. Rows keep insertion order, which is
// the "storage order" callers observe when no ordering is requested.
type Store struct {
	mu      sync.RWMutex
	tables  map[string][]recordstore.Row
	uniques map[string][][]string

	txMu sync.Mutex
}

type Option func(*Store)

// WithUniqueKey declares a unique constraint checked on Insert and used as
// the default conflict target for Upsert.
func WithUniqueKey(collection string, columns ...string) Option {
	return func(s *Store) {
		s.uniques[collection] = append(s.uniques[collection], append([]string(nil), columns...))
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		tables:  make(map[string][]recordstore.Row),
		uniques: make(map[string][][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed appends rows without constraint checks.
func (s *Store) Seed(collection string, rows ...recordstore.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		s.tables[collection] = append(s.tables[collection], row.Clone())
	}
}

func (s *Store) Select(_ context.Context, collection string, query recordstore.Query) ([]recordstore.Row, error) {
	if query.HasEmptyIn() {
		return nil, nil
	}

	s.mu.RLock()
	matched := make([]recordstore.Row, 0, len(s.tables[collection]))
	for _, row := range s.tables[collection] {
		if matchesAll(row, query.Filters) {
			matched = append(matched, row)
		}
	}
	s.mu.RUnlock()

	if len(query.Order) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, o := range query.Order {
				cmp := recordstore.Compare(matched[i][o.Column], matched[j][o.Column])
				if cmp == 0 {
					continue
				}
				if o.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
	}
	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}

	columns := query.Columns
	if query.AllColumns() {
		columns = nil
	}
	out := make([]recordstore.Row, 0, len(matched))
	for _, row := range matched {
		out = append(out, row.Project(columns))
	}
	return out, nil
}

func (s *Store) Insert(_ context.Context, collection string, row recordstore.Row) (recordstore.Row, error) {
	if len(row) == 0 {
		return nil, fmt.Errorf("insert into %s: empty row", collection)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range s.uniques[collection] {
		if idx := s.indexByKey(collection, row, key); idx >= 0 {
			return nil, fmt.Errorf("%w: %s (%s)", recordstore.ErrConflict, collection, strings.Join(key, ","))
		}
	}

	stored := row.Clone()
	s.tables[collection] = append(s.tables[collection], stored)
	return stored.Clone(), nil
}

func (s *Store) Update(_ context.Context, collection string, patch recordstore.Row, filters ...recordstore.Filter) error {
	if len(patch) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[collection]
	for i, row := range rows {
		if !matchesAll(row, filters) {
			continue
		}
		next := row.Clone()
		for k, v := range patch {
			next[k] = v
		}
		rows[i] = next
	}
	return nil
}

func (s *Store) Upsert(_ context.Context, collection string, row recordstore.Row, conflictKeys ...string) error {
	if len(row) == 0 {
		return fmt.Errorf("upsert into %s: empty row", collection)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keys := conflictKeys
	if len(keys) == 0 {
		if declared := s.uniques[collection]; len(declared) > 0 {
			keys = declared[0]
		} else {
			keys = []string{"id"}
		}
	}

	if idx := s.indexByKey(collection, row, keys); idx >= 0 {
		next := s.tables[collection][idx].Clone()
		for k, v := range row {
			next[k] = v
		}
		s.tables[collection][idx] = next
		return nil
	}

	s.tables[collection] = append(s.tables[collection], row.Clone())
	return nil
}

func (s *Store) Delete(_ context.Context, collection string, filters ...recordstore.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[collection]
	kept := rows[:0]
	for _, row := range rows {
		if matchesAll(row, filters) {
			continue
		}
		kept = append(kept, row)
	}
	for i := len(kept); i < len(rows); i++ {
		rows[i] = nil
	}
	s.tables[collection] = kept
	return nil
}

// WithinTx serializes transactions and restores a snapshot when fn fails.
// Writes made outside a transaction while one is running are rolled back
// with it; callers that need isolation should route writes through WithinTx.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

// Rows returns a copy of a collection in storage order.
func (s *Store) Rows(collection string) []recordstore.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]recordstore.Row, 0, len(s.tables[collection]))
	for _, row := range s.tables[collection] {
		out = append(out, row.Clone())
	}
	return out
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

func (s *Store) snapshot() map[string][]recordstore.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]recordstore.Row, len(s.tables))
	for name, rows := range s.tables {
		copied := make([]recordstore.Row, 0, len(rows))
		for _, row := range rows {
			copied = append(copied, row.Clone())
		}
		out[name] = copied
	}
	return out
}

func (s *Store) restore(snapshot map[string][]recordstore.Row) {
	s.mu.Lock()
	s.tables = snapshot
	s.mu.Unlock()
}

func (s *Store) indexByKey(collection string, row recordstore.Row, key []string) int {
	if len(key) == 0 {
		return -1
	}
	filters := make([]recordstore.Filter, 0, len(key))
	for _, column := range key {
		value, ok := row[column]
		if !ok {
			return -1
		}
		filters = append(filters, recordstore.Eq(column, value))
	}
	for i, existing := range s.tables[collection] {
		if matchesAll(existing, filters) {
			return i
		}
	}
	return -1
}

func matchesAll(row recordstore.Row, filters []recordstore.Filter) bool {
	for _, f := range filters {
		if !f.Matches(row) {
			return false
		}
	}
	return true
}
