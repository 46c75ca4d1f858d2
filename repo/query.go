package repo

import (
	"context"
	"fmt"

	"github.com/Skryldev/questionsdb/db"
)

// fromRecord maps one field-keyed row onto a record type.
type fromRecord[T any] func(db.Record) T

// findOne runs query and maps the first row. It returns db.ErrNotFound,
// wrapped with label, when the query matches nothing.
func findOne[T any](ctx context.Context, q db.Querier, label string, from fromRecord[T], query string, args ...any) (*T, error) {
	recs, err := db.Records(ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%s: %w", label, db.ErrNotFound)
	}
	v := from(recs[0])
	return &v, nil
}

// findAll runs query and maps every row. No rows is an empty, non-nil slice.
func findAll[T any](ctx context.Context, q db.Querier, label string, from fromRecord[T], query string, args ...any) ([]T, error) {
	recs, err := db.Records(ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		out = append(out, from(r))
	}
	return out, nil
}

// save inserts when *id is 0 and adopts the generated key, otherwise
// updates the row keyed by *id. fields are the non-key columns in the
// statement's column order; updateSQL binds the id last.
func save(ctx context.Context, q db.Querier, label string, id *int64, insertSQL, updateSQL string, fields ...any) error {
	if *id == 0 {
		res, err := q.Exec(ctx, insertSQL, fields...)
		if err != nil {
			return fmt.Errorf("%s: insert: %w", label, err)
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("%s: last insert id: %w", label, err)
		}
		*id = newID
		return nil
	}

	args := append(append([]any(nil), fields...), *id)
	if _, err := q.Exec(ctx, updateSQL, args...); err != nil {
		return fmt.Errorf("%s: update: %w", label, err)
	}
	return nil
}

// countOf runs a single-column COUNT query.
func countOf(ctx context.Context, q db.Querier, label, query string, args ...any) (int64, error) {
	var n int64
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", label, err)
	}
	return n, nil
}

// top returns an empty result without touching storage when n <= 0.
func top[T any](n int, run func() ([]T, error)) ([]T, error) {
	if n <= 0 {
		return []T{}, nil
	}
	return run()
}
