package recordstore

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Row is one record as returned by a backend. Backends disagree on value
// types (pq returns int64 and []byte, JSON decoders return float64 and
// string), so typed reads go through the accessors below.
type Row map[string]any

func (r Row) Has(column string) bool {
	v, ok := r[column]
	return ok && v != nil
}

func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Project keeps only the given columns; an empty list keeps everything.
func (r Row) Project(columns []string) Row {
	if len(columns) == 0 {
		return r.Clone()
	}
	out := make(Row, len(columns))
	for _, c := range columns {
		c = strings.TrimSpace(c)
		if c == "*" {
			return r.Clone()
		}
		if v, ok := r[c]; ok {
			out[c] = v
		}
	}
	return out
}

func (r Row) String(column string) string {
	switch v := r[column].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// StringOr returns fallback when the column is absent or blank.
func (r Row) StringOr(column, fallback string) string {
	if v := strings.TrimSpace(r.String(column)); v != "" {
		return v
	}
	return fallback
}

func (r Row) Float(column string) float64 {
	v, _ := toFloat(r[column])
	return v
}

func (r Row) Int(column string) int {
	return r.IntOr(column, 0)
}

// IntOr returns fallback when the column is absent or not numeric.
func (r Row) IntOr(column string, fallback int) int {
	v, ok := toFloat(r[column])
	if !ok {
		return fallback
	}
	return int(math.Round(v))
}

func (r Row) Bool(column string) bool {
	switch v := r[column].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	case []byte:
		b, _ := strconv.ParseBool(strings.TrimSpace(string(v)))
		return b
	default:
		f, ok := toFloat(v)
		return ok && f != 0
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (r Row) Time(column string) time.Time {
	switch v := r[column].(type) {
	case time.Time:
		return v
	case *time.Time:
		if v == nil {
			return time.Time{}
		}
		return *v
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	default:
		return time.Time{}
	}
}

func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
		return f, err == nil
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Compare orders two column values. Numbers compare numerically, times
// chronologically, everything else by string form. nil sorts first.
func Compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}

	_, aString := a.(string)
	_, bString := b.(string)
	if !aString && !bString {
		fa, okA := toFloat(a)
		fb, okB := toFloat(b)
		if okA && okB {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
