package db

import "sync"

// Provider hands out one shared *DB for the life of the process. The first
// call to DB opens the handle; every later call returns the same handle, or
// the same error if opening failed.
//
// A Provider is passed to whatever needs storage instead of living in a
// package-level variable, so tests can build their own.
type Provider struct {
	open func() (*DB, error)

	once sync.Once
	db   *DB
	err  error
}

// NewProvider returns a Provider that opens cfg on first use.
func NewProvider(cfg Config) *Provider {
	return &Provider{open: func() (*DB, error) { return Open(cfg) }}
}

// NewDriverProvider returns a Provider that opens through the driver
// registry on first use (see OpenWithDriver).
func NewDriverProvider(driverName string, opts DriverOptions, cfg Config) *Provider {
	return &Provider{open: func() (*DB, error) { return OpenWithDriver(driverName, opts, cfg) }}
}

// DB returns the shared handle, opening it on the first call.
func (p *Provider) DB() (*DB, error) {
	p.once.Do(func() {
		p.db, p.err = p.open()
	})
	return p.db, p.err
}

// Close closes the shared handle if it was ever opened.
func (p *Provider) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}
