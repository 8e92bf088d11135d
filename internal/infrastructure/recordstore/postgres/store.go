package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"fmt"
	"net"
	"sort"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/mix-league/internal/platform/logging"
	qb "github.com/riskibarqy/mix-league/internal/platform/querybuilder"
	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
)

const uniqueViolation = "23505"

// Store maps collections one-to-one onto tables of the same name.
type Store struct {
	db     *sqlx.DB
	logger *logging.Logger
}

func NewStore(db *sqlx.DB, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{db: db, logger: logger.Named("postgres")}
}

type queryer interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

type txKey struct{}

func (s *Store) conn(ctx context.Context) queryer {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok && tx != nil {
		return tx
	}
	return s.db
}

func (s *Store) Select(ctx context.Context, collection string, query recordstore.Query) ([]recordstore.Row, error) {
	if query.HasEmptyIn() {
		return nil, nil
	}

	columns := query.Columns
	if query.AllColumns() {
		columns = []string{"*"}
	}
	builder := qb.Select(columns...).From(collection).
		Where(conditions(query.Filters)...).
		Limit(query.Limit)
	for _, o := range query.Order {
		if o.Desc {
			builder.OrderBy(o.Column + " DESC")
			continue
		}
		builder.OrderBy(o.Column)
	}
	// Without an explicit order Postgres gives no guarantee; ctid keeps
	// physical insertion order for append-only tables.
	if len(query.Order) == 0 {
		builder.OrderBy("ctid")
	}

	stmt, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select %s query: %w", collection, err)
	}

	rows, err := s.conn(ctx).QueryxContext(ctx, stmt, args...)
	if err != nil {
		return nil, classify(fmt.Sprintf("select %s", collection), err)
	}
	defer rows.Close()

	out := make([]recordstore.Row, 0, 16)
	for rows.Next() {
		raw := make(map[string]any)
		if err := rows.MapScan(raw); err != nil {
			return nil, classify(fmt.Sprintf("scan %s", collection), err)
		}
		out = append(out, normalizeRow(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Sprintf("iterate %s", collection), err)
	}

	return out, nil
}

func (s *Store) Insert(ctx context.Context, collection string, row recordstore.Row) (recordstore.Row, error) {
	columns, values := splitRow(row)
	stmt, args, err := qb.InsertInto(collection).
		Columns(columns...).
		Values(values...).
		Suffix("RETURNING *").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build insert %s query: %w", collection, err)
	}

	raw := make(map[string]any)
	if err := s.conn(ctx).QueryRowxContext(ctx, stmt, args...).MapScan(raw); err != nil {
		return nil, classify(fmt.Sprintf("insert %s", collection), err)
	}
	return normalizeRow(raw), nil
}

func (s *Store) Update(ctx context.Context, collection string, patch recordstore.Row, filters ...recordstore.Filter) error {
	if len(patch) == 0 {
		return nil
	}
	if len(filters) == 0 {
		return fmt.Errorf("update %s: filters are required", collection)
	}

	builder := qb.Update(collection)
	columns, values := splitRow(patch)
	for i, c := range columns {
		builder.Set(c, values[i])
	}
	stmt, args, err := builder.Where(conditions(filters)...).ToSQL()
	if err != nil {
		return fmt.Errorf("build update %s query: %w", collection, err)
	}

	if _, err := s.conn(ctx).ExecContext(ctx, stmt, args...); err != nil {
		return classify(fmt.Sprintf("update %s", collection), err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, collection string, row recordstore.Row, conflictKeys ...string) error {
	if len(conflictKeys) == 0 {
		conflictKeys = []string{"id"}
	}
	columns, values := splitRow(row)
	stmt, args, err := qb.InsertInto(collection).
		Columns(columns...).
		Values(values...).
		OnConflict(conflictKeys...).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert %s query: %w", collection, err)
	}

	if _, err := s.conn(ctx).ExecContext(ctx, stmt, args...); err != nil {
		return classify(fmt.Sprintf("upsert %s", collection), err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection string, filters ...recordstore.Filter) error {
	stmt, args, err := qb.DeleteFrom(collection).Where(conditions(filters)...).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete %s query: %w", collection, err)
	}

	if _, err := s.conn(ctx).ExecContext(ctx, stmt, args...); err != nil {
		return classify(fmt.Sprintf("delete %s", collection), err)
	}
	return nil
}

// WithinTx joins an outer transaction when ctx already carries one.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok && tx != nil {
		return fn(ctx)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify("begin tx", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !stderrors.Is(rbErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "rollback failed", "error", rbErr)
			}
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return classify("commit tx", err)
	}
	return nil
}

func conditions(filters []recordstore.Filter) []qb.Condition {
	out := make([]qb.Condition, 0, len(filters))
	for _, f := range filters {
		switch f.Op {
		case recordstore.OpIn:
			out = append(out, qb.In(f.Column, f.Values))
		default:
			var value any
			if len(f.Values) > 0 {
				value = f.Values[0]
			}
			out = append(out, qb.Eq(f.Column, value))
		}
	}
	return out
}

// splitRow returns columns in a stable order so generated SQL is deterministic.
func splitRow(row recordstore.Row) ([]string, []any) {
	columns := make([]string, 0, len(row))
	for c := range row {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	values := make([]any, 0, len(columns))
	for _, c := range columns {
		values = append(values, row[c])
	}
	return columns, values
}

func normalizeRow(raw map[string]any) recordstore.Row {
	out := make(recordstore.Row, len(raw))
	for k, v := range raw {
		if b, ok := v.([]byte); ok {
			out[k] = string(b)
			continue
		}
		out[k] = v
	}
	return out
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		if string(pqErr.Code) == uniqueViolation {
			return fmt.Errorf("%w: %s: %s", recordstore.ErrConflict, op, pqErr.Message)
		}
		// Class 08 is connection exception, 57P0x is operator intervention / shutdown.
		if pqErr.Code.Class() == "08" || strings.HasPrefix(string(pqErr.Code), "57P0") {
			return fmt.Errorf("%w: %s: %v", recordstore.ErrTransient, op, err)
		}
		return crerr.Wrap(err, op)
	}

	var netErr net.Error
	if stderrors.Is(err, driver.ErrBadConn) || stderrors.As(err, &netErr) {
		return fmt.Errorf("%w: %s: %v", recordstore.ErrTransient, op, err)
	}

	return crerr.Wrap(err, op)
}
