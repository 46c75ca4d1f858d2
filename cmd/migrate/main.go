// Command migrate applies the embedded forum migrations to a database and
// scaffolds new migration files.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/Skryldev/questionsdb/schema"
)

const (
	defaultDatabaseURL    = "sqlite3://questions.db"
	defaultMigrationsPath = "./schema/migrations"
)

func main() {
	_ = godotenv.Load()

	yes := flag.BoolP("yes", "y", false, "skip the drop confirmation prompt")
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	err := run(os.Stdout, args, runOptions{
		databaseURL:    envOr("DATABASE_URL", defaultDatabaseURL),
		migrationsPath: envOr("MIGRATIONS_PATH", defaultMigrationsPath),
		confirm: func() bool {
			return *yes || confirm("drop will destroy every forum table. Type 'yes' to confirm: ")
		},
	})
	if errors.Is(err, errUsage) {
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatalf("%v", err)
	}
}

var errUsage = errors.New("usage")

type runOptions struct {
	databaseURL    string
	migrationsPath string
	confirm        func() bool
}

// run executes one command. The migrator is closed before run returns, on
// every path.
func run(out io.Writer, args []string, opts runOptions) error {
	if args[0] == "create" {
		if len(args) < 2 {
			return errors.New("create: migration name required")
		}
		up, down, err := createMigration(opts.migrationsPath, args[1], time.Now())
		if err != nil {
			return fmt.Errorf("create failed: %w", err)
		}
		slog.Info("migrations: created", "up", up, "down", down)
		return nil
	}

	switch args[0] {
	case "up", "down", "version", "force", "drop":
	default:
		return errUsage
	}

	m, err := schema.Migrator(opts.databaseURL)
	if err != nil {
		return fmt.Errorf("migration init failed: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			slog.Error("migrations: close", "source", srcErr, "database", dbErr)
		}
	}()

	m.Log = &migrateLogger{}

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("up failed: %w", err)
		}
		slog.Info("migrations: up completed")

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("down: invalid steps argument %q", args[1])
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("down failed: %w", err)
		}
		slog.Info("migrations: down completed", "steps", steps)

	case "version":
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("version failed: %w", err)
		}
		fmt.Fprintf(out, "version: %d  dirty: %v\n", v, dirty)

	case "force":
		if len(args) < 2 {
			return errors.New("force: version argument required")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("force: invalid version %q", args[1])
		}
		if err := m.Force(v); err != nil {
			return fmt.Errorf("force failed: %w", err)
		}
		slog.Info("migrations: forced", "version", v)

	case "drop":
		if !opts.confirm() {
			fmt.Fprintln(out, "aborted")
			return nil
		}
		if err := m.Drop(); err != nil {
			return fmt.Errorf("drop failed: %w", err)
		}
		slog.Info("migrations: all tables dropped")
	}
	return nil
}

// confirm reads one line from the terminal. Ctrl-C or EOF count as no.
func confirm(prompt string) bool {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	answer, err := line.Prompt(prompt)
	if err != nil {
		if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
			slog.Error("migrations: reading confirmation", "error", err)
		}
		return false
	}
	return strings.TrimSpace(answer) == "yes"
}

// createMigration writes an empty up/down pair named after the next free
// version in dir. Each file is written atomically.
func createMigration(dir, name string, now time.Time) (string, string, error) {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '_'
	}, strings.TrimSpace(name))
	if name == "" {
		return "", "", errors.New("empty migration name")
	}

	version, err := nextVersion(dir)
	if err != nil {
		return "", "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}

	base := filepath.Join(dir, fmt.Sprintf("%06d_%s", version, name))
	header := fmt.Sprintf("-- %s, created %s\n", name, now.UTC().Format(time.RFC3339))
	up, down := base+".up.sql", base+".down.sql"
	for _, path := range []string{up, down} {
		if err := atomic.WriteFile(path, strings.NewReader(header)); err != nil {
			return "", "", err
		}
	}
	return up, down, nil
}

func nextVersion(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, err
	}
	highest := 0
	for _, e := range entries {
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			continue
		}
		if v, err := strconv.Atoi(prefix); err == nil && v > highest {
			highest = v
		}
	}
	return highest + 1, nil
}

// ─────────────────────────────────────────────────────────────────────────────

type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...any) {
	slog.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
func (l *migrateLogger) Verbose() bool { return false }

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [--yes] <command> [args]

Commands:
  up            Apply all pending migrations
  down [N]      Roll back N migrations (default: 1)
  version       Print current migration version
  force <V>     Force set migration version (bypass dirty state)
  drop          Drop all tables (asks for confirmation unless --yes)
  create NAME   Write an empty up/down migration pair

Migrations are embedded in the binary; "create" writes to the source tree.

Environment:
  DATABASE_URL      Database URL (default: sqlite3://questions.db)
  MIGRATIONS_PATH   Directory for "create" (default: ./schema/migrations)`)
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
