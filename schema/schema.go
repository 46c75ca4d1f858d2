// Package schema owns the forum tables. The SQL lives in embedded files so
// that the migrate CLI, tests and the demo program all create the same
// schema.
package schema

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3" // registers "sqlite3://"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Skryldev/questionsdb/db"
)

//go:embed migrations/*.sql
var migrations embed.FS

//go:embed seed.sql
var seed string

// MigrationsDir is the directory, inside the embedded FS and the source
// tree, that holds the versioned migration files.
const MigrationsDir = "migrations"

// Apply creates the schema on d by running every up migration in version
// order inside one transaction. It does not record a migration version;
// use Migrator for databases that will be migrated again later.
func Apply(ctx context.Context, d *db.DB) error {
	files, err := upFiles()
	if err != nil {
		return err
	}
	return d.ExecTx(ctx, func(tx *db.Tx) error {
		for _, name := range files {
			body, err := fs.ReadFile(migrations, MigrationsDir+"/"+name)
			if err != nil {
				return fmt.Errorf("schema: read %s: %w", name, err)
			}
			if _, err := tx.Exec(ctx, string(body)); err != nil {
				return fmt.Errorf("schema: apply %s: %w", name, err)
			}
		}
		return nil
	})
}

// Seed loads the demo users, questions, replies, follows, likes and tags.
// It expects an empty schema.
func Seed(ctx context.Context, d *db.DB) error {
	return d.ExecTx(ctx, func(tx *db.Tx) error {
		if _, err := tx.Exec(ctx, seed); err != nil {
			return fmt.Errorf("schema: seed: %w", err)
		}
		return nil
	})
}

// Migrator returns a golang-migrate instance reading the embedded
// migrations, for a database URL such as "sqlite3://questions.db".
// The caller must Close it.
func Migrator(databaseURL string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations, MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("schema: open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("schema: migrate init: %w", err)
	}
	return m, nil
}

func upFiles() ([]string, error) {
	entries, err := fs.ReadDir(migrations, MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("schema: list migrations: %w", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
