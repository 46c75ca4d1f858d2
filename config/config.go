// Package config resolves the settings shared by the questions CLIs.
//
// Precedence, lowest first: defaults, the JSONC config file, QUESTIONS_*
// environment variables. Flags are applied by the caller on top.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tailscale/hujson"

	"github.com/Skryldev/questionsdb/db"
)

// DefaultPath is the config file read when no path is given. It is
// optional; an explicit path must exist.
const DefaultPath = "questions.jsonc"

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigInvalid      = errors.New("invalid config")
)

// Config holds the resolved settings.
type Config struct {
	Database    string
	Driver      string
	BusyTimeout time.Duration
	LogLevel    slog.Level
	SlowQuery   time.Duration
	LogArgs     bool

	// Source is the config file that was read, empty if none.
	Source string
}

// fileConfig is the on-disk shape. Durations and the level are strings so
// the file can say "250ms" or "debug".
type fileConfig struct {
	Database    string `json:"database"`
	Driver      string `json:"driver"`
	BusyTimeout string `json:"busy_timeout"`
	LogLevel    string `json:"log_level"`
	SlowQuery   string `json:"slow_query"`
	LogArgs     *bool  `json:"log_args"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Database:    "questions.db",
		Driver:      "sqlite3",
		BusyTimeout: 5 * time.Second,
		LogLevel:    slog.LevelInfo,
	}
}

// Load resolves the configuration. path may be empty, in which case
// DefaultPath is used if it exists. env is usually EnvMap(os.Environ()).
func Load(path string, env map[string]string) (Config, error) {
	cfg := Default()

	mustExist := path != ""
	if path == "" {
		path = DefaultPath
	}
	fc, loaded, err := readFile(path, mustExist)
	if err != nil {
		return Config{}, err
	}
	if loaded {
		if cfg, err = merge(cfg, fc); err != nil {
			return Config{}, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
		}
		cfg.Source = path
	}

	if cfg, err = applyEnv(cfg, env); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	if cfg.Database == "" {
		return Config{}, fmt.Errorf("%w: database must not be empty", ErrConfigInvalid)
	}
	if _, err := db.LookupDriver(cfg.Driver); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	return cfg, nil
}

func readFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
			}
			return fileConfig{}, false, nil
		}
		return fileConfig{}, false, fmt.Errorf("read config %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: invalid JSONC: %w", ErrConfigInvalid, path, err)
	}
	var fc fileConfig
	if err := json.Unmarshal(standardized, &fc); err != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: invalid JSON: %w", ErrConfigInvalid, path, err)
	}
	return fc, true, nil
}

func merge(base Config, fc fileConfig) (Config, error) {
	if fc.Database != "" {
		base.Database = fc.Database
	}
	if fc.Driver != "" {
		base.Driver = fc.Driver
	}
	if fc.LogArgs != nil {
		base.LogArgs = *fc.LogArgs
	}
	var err error
	if fc.BusyTimeout != "" {
		if base.BusyTimeout, err = time.ParseDuration(fc.BusyTimeout); err != nil {
			return base, fmt.Errorf("busy_timeout: %w", err)
		}
	}
	if fc.SlowQuery != "" {
		if base.SlowQuery, err = time.ParseDuration(fc.SlowQuery); err != nil {
			return base, fmt.Errorf("slow_query: %w", err)
		}
	}
	if fc.LogLevel != "" {
		if base.LogLevel, err = ParseLevel(fc.LogLevel); err != nil {
			return base, fmt.Errorf("log_level: %w", err)
		}
	}
	return base, nil
}

func applyEnv(cfg Config, env map[string]string) (Config, error) {
	if v := strings.TrimSpace(env["QUESTIONS_DB"]); v != "" {
		cfg.Database = v
	}
	if v := strings.TrimSpace(env["QUESTIONS_DRIVER"]); v != "" {
		cfg.Driver = v
	}
	var err error
	if v := strings.TrimSpace(env["QUESTIONS_BUSY_TIMEOUT"]); v != "" {
		if cfg.BusyTimeout, err = time.ParseDuration(v); err != nil {
			return cfg, fmt.Errorf("QUESTIONS_BUSY_TIMEOUT: %w", err)
		}
	}
	if v := strings.TrimSpace(env["QUESTIONS_SLOW_QUERY"]); v != "" {
		if cfg.SlowQuery, err = time.ParseDuration(v); err != nil {
			return cfg, fmt.Errorf("QUESTIONS_SLOW_QUERY: %w", err)
		}
	}
	if v := strings.TrimSpace(env["QUESTIONS_LOG_LEVEL"]); v != "" {
		if cfg.LogLevel, err = ParseLevel(v); err != nil {
			return cfg, fmt.Errorf("QUESTIONS_LOG_LEVEL: %w", err)
		}
	}
	if v := strings.TrimSpace(env["QUESTIONS_LOG_ARGS"]); v != "" {
		if cfg.LogArgs, err = strconv.ParseBool(v); err != nil {
			return cfg, fmt.Errorf("QUESTIONS_LOG_ARGS: %w", err)
		}
	}
	return cfg, nil
}

// ParseLevel accepts debug, info, warn or error, in any case.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// EnvMap turns os.Environ-style KEY=VALUE pairs into a map.
func EnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// DriverOptions returns the structured connection options for the
// configured database. Foreign keys are always enforced.
func (c Config) DriverOptions() db.DriverOptions {
	return db.DriverOptions{
		Database:    c.Database,
		ForeignKeys: true,
		BusyTimeout: c.BusyTimeout,
	}
}

// DBConfig builds a db.Config for the configured driver, with a DSN from
// the driver registry and the given hooks installed.
func (c Config) DBConfig(hooks ...db.Hook) (db.Config, error) {
	drv, err := db.LookupDriver(c.Driver)
	if err != nil {
		return db.Config{}, err
	}
	dsn, err := drv.DSN(c.DriverOptions())
	if err != nil {
		return db.Config{}, err
	}
	cfg := db.Config{
		DSN:        dsn,
		DriverName: drv.Name(),
		Hooks:      hooks,
	}
	if c.Database == ":memory:" {
		cfg.MaxOpenConns = 1
	}
	return cfg, nil
}

// LogHook returns the statement logging hook for these settings.
func (c Config) LogHook(logger *slog.Logger) db.Hook {
	return db.NewLogHook(db.LogHookConfig{
		Logger:             logger,
		SlowQueryThreshold: c.SlowQuery,
		LogArgs:            c.LogArgs,
	})
}
