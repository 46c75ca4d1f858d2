package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	up, down, err := createMigration(dir, "Add Question Views", now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "000001_add_question_views.up.sql"), up)
	require.Equal(t, filepath.Join(dir, "000001_add_question_views.down.sql"), down)

	body, err := os.ReadFile(up)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(body), "-- add_question_views, created 2026-01-02T03:04:05Z"))

	up, _, err = createMigration(dir, "second", now)
	require.NoError(t, err)
	require.Equal(t, "000002_second.up.sql", filepath.Base(up))
}

func TestCreateMigration_EmptyName(t *testing.T) {
	_, _, err := createMigration(t.TempDir(), "   ", time.Now())
	require.Error(t, err)
}

func TestNextVersion_FollowsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000001_create_forum.up.sql", "000007_x.up.sql", "README"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	v, err := nextVersion(dir)
	require.NoError(t, err)
	require.Equal(t, 8, v)
}

func migrateOpts(t *testing.T, confirmed bool) runOptions {
	t.Helper()
	return runOptions{
		databaseURL:    "sqlite3://" + filepath.Join(t.TempDir(), "questions.db"),
		migrationsPath: filepath.Join(t.TempDir(), "migrations"),
		confirm:        func() bool { return confirmed },
	}
}

func TestRun_UpVersionDown(t *testing.T) {
	opts := migrateOpts(t, true)
	var out bytes.Buffer

	require.NoError(t, run(&out, []string{"up"}, opts))
	require.NoError(t, run(&out, []string{"version"}, opts))
	require.Contains(t, out.String(), "version: 1  dirty: false")

	out.Reset()
	require.NoError(t, run(&out, []string{"down"}, opts))
	require.NoError(t, run(&out, []string{"version"}, opts))
	require.Contains(t, out.String(), "version: 0  dirty: false")
}

func TestRun_ErrorsAreReturnedAndLeaveDatabaseUsable(t *testing.T) {
	opts := migrateOpts(t, true)
	var out bytes.Buffer

	require.NoError(t, run(&out, []string{"up"}, opts))
	require.Error(t, run(&out, []string{"force", "abc"}, opts))
	require.Error(t, run(&out, []string{"down", "0"}, opts))
	require.ErrorIs(t, run(&out, []string{"sideways"}, opts), errUsage)

	// The failed runs closed their migrator; a new one works normally.
	require.NoError(t, run(&out, []string{"version"}, opts))
	require.Contains(t, out.String(), "version: 1  dirty: false")
}

func TestRun_Drop(t *testing.T) {
	declined := migrateOpts(t, false)
	var out bytes.Buffer
	require.NoError(t, run(&out, []string{"up"}, declined))
	require.NoError(t, run(&out, []string{"drop"}, declined))
	require.Contains(t, out.String(), "aborted")

	confirmed := declined
	confirmed.confirm = func() bool { return true }
	out.Reset()
	require.NoError(t, run(&out, []string{"drop"}, confirmed))
	require.NotContains(t, out.String(), "aborted")
}

func TestRun_Create(t *testing.T) {
	opts := migrateOpts(t, true)
	require.Error(t, run(io.Discard, []string{"create"}, opts))
	require.NoError(t, run(io.Discard, []string{"create", "add_views"}, opts))

	entries, err := os.ReadDir(opts.migrationsPath)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}
