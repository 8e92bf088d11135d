package recordstore

import "strings"

type Operator string

const (
	OpEq Operator = "eq"
	OpIn Operator = "in"
)

type Filter struct {
	Column string
	Op     Operator
	Values []any
}

func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Values: []any{value}}
}

func In(column string, values ...any) Filter {
	return Filter{Column: column, Op: OpIn, Values: append([]any(nil), values...)}
}

// InStrings is In for the common case of id lists.
func InStrings(column string, values []string) Filter {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return Filter{Column: column, Op: OpIn, Values: out}
}

// Matches evaluates the filter against a single row.
func (f Filter) Matches(row Row) bool {
	value, ok := row[f.Column]
	if !ok {
		return false
	}
	for _, candidate := range f.Values {
		if Compare(value, candidate) == 0 {
			return true
		}
		if f.Op == OpEq {
			return false
		}
	}
	return false
}

type Order struct {
	Column string
	Desc   bool
}

func Asc(column string) Order {
	return Order{Column: column}
}

func Desc(column string) Order {
	return Order{Column: column, Desc: true}
}

type Query struct {
	Columns []string
	Filters []Filter
	Order   []Order
	Limit   int
}

func Select(columns ...string) Query {
	return Query{Columns: append([]string(nil), columns...)}
}

func (q Query) Where(filters ...Filter) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), filters...)
	return q
}

func (q Query) OrderBy(orders ...Order) Query {
	q.Order = append(append([]Order(nil), q.Order...), orders...)
	return q
}

func (q Query) WithLimit(limit int) Query {
	q.Limit = limit
	return q
}

// AllColumns reports whether the query projects every column.
func (q Query) AllColumns() bool {
	if len(q.Columns) == 0 {
		return true
	}
	for _, c := range q.Columns {
		if strings.TrimSpace(c) == "*" {
			return true
		}
	}
	return false
}

// HasEmptyIn reports whether the query can never match because an IN list is empty.
func (q Query) HasEmptyIn() bool {
	for _, f := range q.Filters {
		if f.Op == OpIn && len(f.Values) == 0 {
			return true
		}
	}
	return false
}
