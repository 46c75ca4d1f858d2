package schema_test

import (
	"context"
	"testing"

	"github.com/Skryldev/questionsdb/db"
	"github.com/Skryldev/questionsdb/schema"
)

func openMemory(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.OpenWithDriver("sqlite3", db.DriverOptions{Database: ":memory:", ForeignKeys: true}, db.Config{MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestApplyAndSeed(t *testing.T) {
	d := openMemory(t)
	ctx := context.Background()

	if err := schema.Apply(ctx, d); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := schema.Seed(ctx, d); err != nil {
		t.Fatalf("seed: %v", err)
	}

	want := map[string]int{
		"users":              4,
		"questions":          4,
		"replies":            4,
		"question_followers": 6,
		"question_likes":     6,
		"tags":               3,
		"question_tags":      6,
	}
	for table, n := range want {
		var got int
		if err := d.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&got); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if got != n {
			t.Errorf("%s: %d rows, want %d", table, got, n)
		}
	}
}

func TestApply_Idempotent(t *testing.T) {
	d := openMemory(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := schema.Apply(ctx, d); err != nil {
			t.Fatalf("apply #%d: %v", i+1, err)
		}
	}
}

func TestMigrator_UpDown(t *testing.T) {
	path := t.TempDir() + "/questions.db"
	m, err := schema.Migrator("sqlite3://" + path)
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		t.Fatalf("up: %v", err)
	}
	v, dirty, err := m.Version()
	if err != nil || dirty || v != 1 {
		t.Fatalf("version = %d dirty=%v err=%v", v, dirty, err)
	}
	if err := m.Down(); err != nil {
		t.Fatalf("down: %v", err)
	}
}
