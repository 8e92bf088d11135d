// Package querybuilder renders the small set of postgres statements the
// record store issues. Identifiers are checked against a conservative
// pattern instead of being quoted; values always travel as $n arguments.
package querybuilder

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to splice into SQL as a
// table or column name.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// writer accumulates statement text and its positional arguments.
type writer struct {
	sql  strings.Builder
	args []any
}

func (w *writer) raw(parts ...string) {
	for _, p := range parts {
		w.sql.WriteString(p)
	}
}

func (w *writer) bind(value any) {
	w.args = append(w.args, value)
	w.sql.WriteByte('$')
	w.sql.WriteString(strconv.Itoa(len(w.args)))
}

func (w *writer) list(n int, item func(i int)) {
	for i := range n {
		if i > 0 {
			w.sql.WriteString(", ")
		}
		item(i)
	}
}

func (w *writer) where(conds []Condition) {
	for i, c := range conds {
		if i == 0 {
			w.raw(" WHERE ")
		} else {
			w.raw(" AND ")
		}
		c.render(w)
	}
}

func (w *writer) done() (string, []any, error) {
	return w.sql.String(), w.args, nil
}

// Condition is one term of a WHERE clause; terms are joined with AND.
type Condition interface {
	column() string
	render(w *writer)
}

type eq struct {
	col   string
	value any
}

func Eq(column string, value any) Condition { return eq{col: column, value: value} }

func (c eq) column() string { return c.col }

func (c eq) render(w *writer) {
	w.raw(c.col, " = ")
	w.bind(c.value)
}

type in struct {
	col    string
	values []any
}

// In matches any of values. An empty list matches nothing.
func In(column string, values []any) Condition { return in{col: column, values: values} }

func (c in) column() string { return c.col }

func (c in) render(w *writer) {
	if len(c.values) == 0 {
		w.raw("1=0")
		return
	}
	w.raw(c.col, " IN (")
	w.list(len(c.values), func(i int) { w.bind(c.values[i]) })
	w.raw(")")
}

func checkTable(kind, table string) error {
	switch {
	case strings.TrimSpace(table) == "":
		return fmt.Errorf("%s table is required", kind)
	case !ValidIdentifier(table):
		return fmt.Errorf("invalid %s table %q", kind, table)
	}
	return nil
}

func checkColumns(kind string, columns ...string) error {
	for _, c := range columns {
		if !ValidIdentifier(c) {
			return fmt.Errorf("invalid %s column %q", kind, c)
		}
	}
	return nil
}

func checkConditions(conds []Condition) error {
	for _, c := range conds {
		if !ValidIdentifier(c.column()) {
			return fmt.Errorf("invalid condition column %q", c.column())
		}
	}
	return nil
}

type SelectBuilder struct {
	columns []string
	table   string
	conds   []Condition
	order   []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: slices.Clone(columns)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conds ...Condition) *SelectBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

// OrderBy appends "column", "column ASC" or "column DESC" terms.
func (b *SelectBuilder) OrderBy(terms ...string) *SelectBuilder {
	b.order = append(b.order, terms...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, errors.New("select columns are required")
	}
	if err := checkTable("select", b.table); err != nil {
		return "", nil, err
	}
	for _, c := range b.columns {
		if c != "*" && !ValidIdentifier(c) {
			return "", nil, fmt.Errorf("invalid select column %q", c)
		}
	}
	for _, term := range b.order {
		col, _ := strings.CutSuffix(term, " DESC")
		col, _ = strings.CutSuffix(col, " ASC")
		if !ValidIdentifier(col) {
			return "", nil, fmt.Errorf("invalid order by %q", term)
		}
	}
	if err := checkConditions(b.conds); err != nil {
		return "", nil, err
	}

	var w writer
	w.raw("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.table)
	w.where(b.conds)
	if len(b.order) > 0 {
		w.raw(" ORDER BY ", strings.Join(b.order, ", "))
	}
	if b.limit > 0 {
		w.raw(" LIMIT ", strconv.Itoa(b.limit))
	}
	return w.done()
}

type InsertBuilder struct {
	table    string
	columns  []string
	rows     [][]any
	upsert   bool
	conflict []string
	suffix   string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = slices.Clone(columns)
	return b
}

// Values adds one row; call it repeatedly for a multi-row insert.
func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, slices.Clone(values))
	return b
}

// OnConflict turns the insert into an upsert. Every inserted column outside
// the conflict target is overwritten from EXCLUDED; with nothing left to
// overwrite the statement becomes DO NOTHING.
func (b *InsertBuilder) OnConflict(target ...string) *InsertBuilder {
	b.upsert = true
	b.conflict = slices.Clone(target)
	return b
}

func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if err := checkTable("insert", b.table); err != nil {
		return "", nil, err
	}
	switch {
	case len(b.columns) == 0:
		return "", nil, errors.New("insert columns are required")
	case len(b.rows) == 0:
		return "", nil, errors.New("insert values are required")
	case b.upsert && len(b.conflict) == 0:
		return "", nil, errors.New("conflict target is required")
	}
	if err := checkColumns("insert", slices.Concat(b.columns, b.conflict)...); err != nil {
		return "", nil, err
	}
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", i, len(row), len(b.columns))
		}
	}

	var w writer
	w.raw("INSERT INTO ", b.table, " (", strings.Join(b.columns, ", "), ") VALUES ")
	w.list(len(b.rows), func(r int) {
		w.raw("(")
		w.list(len(b.columns), func(c int) { w.bind(b.rows[r][c]) })
		w.raw(")")
	})
	if b.upsert {
		b.writeConflict(&w)
	}
	if b.suffix != "" {
		w.raw(" ", b.suffix)
	}
	return w.done()
}

func (b *InsertBuilder) writeConflict(w *writer) {
	w.raw(" ON CONFLICT (", strings.Join(b.conflict, ", "), ")")

	var overwrite []string
	for _, c := range b.columns {
		if !slices.Contains(b.conflict, c) {
			overwrite = append(overwrite, c+" = EXCLUDED."+c)
		}
	}
	if len(overwrite) == 0 {
		w.raw(" DO NOTHING")
		return
	}
	w.raw(" DO UPDATE SET ", strings.Join(overwrite, ", "))
}

type assignment struct {
	column string
	value  any
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	conds []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

func (b *UpdateBuilder) Where(conds ...Condition) *UpdateBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if err := checkTable("update", b.table); err != nil {
		return "", nil, err
	}
	if len(b.sets) == 0 {
		return "", nil, errors.New("update sets are required")
	}
	for _, s := range b.sets {
		if err := checkColumns("update", s.column); err != nil {
			return "", nil, err
		}
	}
	if err := checkConditions(b.conds); err != nil {
		return "", nil, err
	}

	var w writer
	w.raw("UPDATE ", b.table, " SET ")
	w.list(len(b.sets), func(i int) {
		w.raw(b.sets[i].column, " = ")
		w.bind(b.sets[i].value)
	})
	w.where(b.conds)
	return w.done()
}

type DeleteBuilder struct {
	table string
	conds []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conds ...Condition) *DeleteBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

// ToSQL refuses an unfiltered delete.
func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if err := checkTable("delete", b.table); err != nil {
		return "", nil, err
	}
	if len(b.conds) == 0 {
		return "", nil, errors.New("delete without conditions is not allowed")
	}
	if err := checkConditions(b.conds); err != nil {
		return "", nil, err
	}

	var w writer
	w.raw("DELETE FROM ", b.table)
	w.where(b.conds)
	return w.done()
}
