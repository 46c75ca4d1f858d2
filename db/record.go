package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
)

// Record is one result row keyed by column name.
//
// Values are already coerced to native Go types: INTEGER → int64,
// REAL → float64, TEXT/BLOB → string, NULL → nil. The typed accessors never
// fail: a missing key or an unusable value yields the zero value, so a row
// from a query that projects only some of a table's columns still maps
// cleanly onto a record type.
type Record map[string]any

// Has reports whether the column was present in the row, NULL or not.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Int64 returns the column as an int64, or 0 if absent, NULL or non-numeric.
func (r Record) Int64(key string) int64 {
	n, _ := toInt64(r[key])
	return n
}

// NullInt64 returns the column as *int64, nil if absent, NULL or non-numeric.
func (r Record) NullInt64(key string) *int64 {
	n, ok := toInt64(r[key])
	if !ok {
		return nil
	}
	return &n
}

// Float64 returns the column as a float64, or 0 if absent, NULL or non-numeric.
func (r Record) Float64(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}

// String returns the column as a string, or "" if absent or NULL.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}

// coerce normalises driver values to the Record value set.
func coerce(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	}
	return v
}

// ─────────────────────────────────────────────────────────────────────────────
// Records
// ─────────────────────────────────────────────────────────────────────────────

// Records runs query through q and returns every row as a Record, in the
// order the database produced them. It is one round-trip. Errors go
// through the same mapper as the handle's Exec and Query.
func Records(ctx context.Context, q Querier, query string, args ...any) ([]Record, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		m := make(map[string]any)
		if err := sqlx.MapScan(rows, m); err != nil {
			return nil, fmt.Errorf("questionsdb/db: map scan: %w", err)
		}
		for k, v := range m {
			m[k] = coerce(v)
		}
		out = append(out, Record(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapperOf(q)(err)
	}
	return out, nil
}

// mapperOf returns the error mapping installed on q, so errors surfacing
// during iteration are classified like those from Exec and Query. Foreign
// Querier implementations fall back to the default mapper.
func mapperOf(q Querier) func(error) error {
	if m, ok := q.(interface{ mapErr(error) error }); ok {
		return m.mapErr
	}
	return DefaultErrorMapper().Map
}
