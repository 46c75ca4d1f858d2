package repo_test

import (
	"context"
	"testing"

	"github.com/Skryldev/questionsdb/db"
	"github.com/Skryldev/questionsdb/repo"
	"github.com/Skryldev/questionsdb/schema"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test fixture
// ─────────────────────────────────────────────────────────────────────────────

type fixture struct {
	db      *db.DB
	store   *repo.Store
	counter *db.QueryCounter
}

// newFixture opens a private in-memory database with the forum schema. When
// seeded is true the demo data from schema/seed.sql is loaded as well. The
// counter is reset after setup so tests only see their own statements.
func newFixture(t *testing.T, seeded bool) *fixture {
	t.Helper()

	counter := &db.QueryCounter{}
	database, err := db.OpenWithDriver("sqlite3", db.DriverOptions{
		Database:    ":memory:",
		ForeignKeys: true,
	}, db.Config{
		MaxOpenConns: 1,
		Hooks:        []db.Hook{db.NewMetricsHook(counter)},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	ctx := context.Background()
	if err := schema.Apply(ctx, database); err != nil {
		t.Fatalf("schema: %v", err)
	}
	if seeded {
		if err := schema.Seed(ctx, database); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	counter.Reset()

	return &fixture{db: database, store: repo.NewStore(database), counter: counter}
}

// roundTrips runs fn and returns how many statements it sent to the driver.
func (f *fixture) roundTrips(t *testing.T, fn func() error) int {
	t.Helper()
	f.counter.Reset()
	if err := fn(); err != nil {
		t.Fatalf("operation: %v", err)
	}
	return f.counter.Total()
}

func ids[T any](items []T, id func(T) int64) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}
