// Package store provides data storage interfaces and implementations.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/radiodir/internal/model"
)

// Store errors.
var (
	ErrNotFound       = errors.New("station not found")
	ErrInvalidID      = errors.New("invalid station ID")
	ErrNilStation     = errors.New("station cannot be nil")
	ErrUnknownBackend = errors.New("unknown database backend")
)

// Store defines the interface for station storage operations.
type Store interface {
	// List returns all stations from the store.
	List(ctx context.Context) ([]model.Station, error)

	// Get retrieves a station by its ID.
	Get(ctx context.Context, id int64) (*model.Station, error)

	// Create adds a new station and returns the ID assigned by the store.
	Create(ctx context.Context, in *model.StationInput) (int64, error)

	// Update replaces the mutable fields of an existing station.
	Update(ctx context.Context, id int64, in *model.StationInput) error

	// Delete removes a station by its ID.
	Delete(ctx context.Context, id int64) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the resources held by the store.
	Close() error
}

// Open creates a store for the given database URL. The scheme selects the backend:
// memory://, sqlite://path (also sqlite3:// and file:) or postgres://...
func Open(ctx context.Context, databaseURL string, opts Options, logger *zap.Logger) (Store, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "memory":
		logger.Info("using in-memory station store")
		return NewMemoryStore(), nil
	case "sqlite", "sqlite3", "file":
		path := sqlitePath(u)
		logger.Info("using sqlite station store", zap.String("path", path))
		return openSQL(ctx, DialectSQLite, path, opts)
	case "postgres", "postgresql":
		logger.Info("using postgres station store", zap.String("host", u.Host))
		return openSQL(ctx, DialectPostgres, databaseURL, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, u.Scheme)
	}
}

// openSQL keeps a failed open from returning a non-nil Store holding a nil pointer.
func openSQL(ctx context.Context, dialect Dialect, dsn string, opts Options) (Store, error) {
	s, err := OpenSQLStore(ctx, dialect, dsn, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// sqlitePath extracts the database file path from a sqlite URL.
// Both sqlite://database.sqlite and sqlite:///var/lib/radios.db are accepted.
func sqlitePath(u *url.URL) string {
	if u.Opaque != "" {
		return u.Opaque
	}

	path := u.Host + u.Path
	if path == "" {
		return ":memory:"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	return path
}
