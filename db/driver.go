package db

// Pluggable driver adapters. Each adapter knows how to build a DSN for its
// engine and which ErrorMapper to install, so OpenWithDriver can stay
// engine-agnostic.

import (
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
	_ "modernc.org/sqlite"          // registers "sqlite"
)

// ─────────────────────────────────────────────────────────────────────────────
// Driver interface
// ─────────────────────────────────────────────────────────────────────────────

// Driver encapsulates engine-specific behaviour.
type Driver interface {
	// Name returns the name passed to sql.Register, e.g. "sqlite3".
	Name() string

	// DSN converts structured options into a driver DSN string.
	DSN(opts DriverOptions) (string, error)

	// ErrorMapper returns a mapper tuned to this driver's error types.
	ErrorMapper() ErrorMapper
}

// DriverOptions carries connection parameters in a driver-agnostic form.
type DriverOptions struct {
	// Database is the database file path, or ":memory:".
	Database string
	// ForeignKeys turns on foreign key enforcement for every connection.
	ForeignKeys bool
	// BusyTimeout makes a connection wait on a locked database file.
	BusyTimeout time.Duration
	// Extra holds driver-specific key/value parameters.
	Extra map[string]string
}

// ─────────────────────────────────────────────────────────────────────────────
// Driver registry
// ─────────────────────────────────────────────────────────────────────────────

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// RegisterDriver adds a Driver to the registry.
// Panics if a driver with the same name is already registered.
func RegisterDriver(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if _, ok := drivers[d.Name()]; ok {
		panic(fmt.Sprintf("questionsdb/db: driver %q already registered", d.Name()))
	}
	drivers[d.Name()] = d
}

// LookupDriver returns the registered Driver by name or an error.
func LookupDriver(name string) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("questionsdb/db: driver %q not registered", name)
	}
	return d, nil
}

// OpenWithDriver opens a DB using a registered Driver and structured options,
// so callers never assemble DSNs by hand.
//
//	d, err := db.OpenWithDriver("sqlite3", db.DriverOptions{
//	    Database: "questions.db", ForeignKeys: true, BusyTimeout: 5 * time.Second,
//	}, db.Config{})
func OpenWithDriver(driverName string, driverOpts DriverOptions, cfg Config) (*DB, error) {
	drv, err := LookupDriver(driverName)
	if err != nil {
		return nil, err
	}

	dsn, err := drv.DSN(driverOpts)
	if err != nil {
		return nil, fmt.Errorf("questionsdb/db: DSN construction failed: %w", err)
	}

	cfg.DriverName = drv.Name()
	cfg.DSN = dsn

	d, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	d.SetErrorMapper(ChainMapper(drv.ErrorMapper(), DefaultErrorMapper()))
	return d, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// SQLite adapter (mattn/go-sqlite3)
// ─────────────────────────────────────────────────────────────────────────────

// SQLiteDriver is the cgo mattn/go-sqlite3 adapter and the default engine.
type SQLiteDriver struct{}

func (SQLiteDriver) Name() string { return "sqlite3" }

func (SQLiteDriver) DSN(o DriverOptions) (string, error) {
	if o.Database == "" {
		return "", fmt.Errorf("sqlite3 driver: Database (file path) is required")
	}
	params := map[string]string{}
	if o.ForeignKeys {
		params["_foreign_keys"] = "on"
	}
	if o.BusyTimeout > 0 {
		params["_busy_timeout"] = fmt.Sprint(o.BusyTimeout.Milliseconds())
	}
	for k, v := range o.Extra {
		params[k] = v
	}
	return o.Database + encodeParams(params), nil
}

func (SQLiteDriver) ErrorMapper() ErrorMapper { return ErrorMapperFunc(mapSQLiteOnly) }

// ─────────────────────────────────────────────────────────────────────────────
// SQLite adapter (modernc.org/sqlite)
// ─────────────────────────────────────────────────────────────────────────────

// ModerncDriver is the pure-Go modernc.org/sqlite adapter, for builds
// without cgo.
type ModerncDriver struct{}

func (ModerncDriver) Name() string { return "sqlite" }

func (ModerncDriver) DSN(o DriverOptions) (string, error) {
	if o.Database == "" {
		return "", fmt.Errorf("sqlite driver: Database (file path) is required")
	}
	v := url.Values{}
	if o.ForeignKeys {
		v.Add("_pragma", "foreign_keys(1)")
	}
	if o.BusyTimeout > 0 {
		v.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", o.BusyTimeout.Milliseconds()))
	}
	for k, val := range o.Extra {
		v.Add(k, val)
	}
	if len(v) == 0 {
		return o.Database, nil
	}
	return o.Database + "?" + v.Encode(), nil
}

func (ModerncDriver) ErrorMapper() ErrorMapper { return ErrorMapperFunc(mapSQLiteOnly) }

func mapSQLiteOnly(err error) error {
	if err == nil {
		return nil
	}
	if mapped := mapSQLite3Error(err); mapped != nil {
		return mapped
	}
	if mapped := mapSQLiteMessage(err); mapped != nil {
		return mapped
	}
	return err
}

// encodeParams renders params as a query string in key order, so the same
// options always produce the same DSN.
func encodeParams(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := ""
	for i, k := range keys {
		if i == 0 {
			s += "?"
		} else {
			s += "&"
		}
		s += k + "=" + params[k]
	}
	return s
}

func init() {
	RegisterDriver(SQLiteDriver{})
	RegisterDriver(ModerncDriver{})
}
