package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/vyrodovalexey/radiodir/internal/model"
)

// DefaultMaxOpenConns is the connection pool size used when Options leaves it unset.
const DefaultMaxOpenConns = 10

// sqliteBusyTimeout is appended to file-backed sqlite DSNs so that concurrent
// writers wait for the lock instead of failing immediately.
const sqliteBusyTimeout = "_busy_timeout=5000"

// Dialect describes the SQL differences between supported databases.
type Dialect struct {
	Name        string
	DriverName  string
	CreateTable string
}

// Supported dialects.
var (
	DialectSQLite = Dialect{
		Name:       "sqlite",
		DriverName: "sqlite3",
		CreateTable: `CREATE TABLE IF NOT EXISTS radios (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			stream_url TEXT NOT NULL,
			genre TEXT,
			country TEXT
		)`,
	}

	DialectPostgres = Dialect{
		Name:       "postgres",
		DriverName: "postgres",
		CreateTable: `CREATE TABLE IF NOT EXISTS radios (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			stream_url TEXT NOT NULL,
			genre TEXT,
			country TEXT
		)`,
	}
)

const (
	queryListStations  = `SELECT id, name, stream_url, genre, country FROM radios ORDER BY id`
	queryGetStation    = `SELECT id, name, stream_url, genre, country FROM radios WHERE id = ?`
	queryInsertStation = `INSERT INTO radios (name, stream_url, genre, country) VALUES (?, ?, ?, ?) RETURNING id`
	queryUpdateStation = `UPDATE radios SET name = ?, stream_url = ?, genre = ?, country = ? WHERE id = ?`
	queryDeleteStation = `DELETE FROM radios WHERE id = ?`
)

// Options tunes the connection pool of a SQLStore.
type Options struct {
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// SQLStore implements Store on top of a relational database with a single radios table.
type SQLStore struct {
	db      *sqlx.DB
	dialect Dialect
}

// OpenSQLStore connects to the database, verifies the connection and creates the
// radios table if it does not exist.
func OpenSQLStore(ctx context.Context, dialect Dialect, dsn string, opts Options) (*SQLStore, error) {
	memory := dialect.DriverName == DialectSQLite.DriverName && isSQLiteMemory(dsn)
	if dialect.DriverName == DialectSQLite.DriverName && !memory {
		dsn = withSQLiteBusyTimeout(dsn)
	}

	db, err := sqlx.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", dialect.Name, err)
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = DefaultMaxOpenConns
	}
	// Every connection to an in-memory sqlite database sees its own empty database.
	if memory {
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	s := &SQLStore{db: db, dialect: dialect}

	if err := s.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// NewSQLStore wraps an existing connection. The radios table must already exist.
func NewSQLStore(db *sqlx.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// migrate creates the radios table if it is absent.
func (s *SQLStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.CreateTable); err != nil {
		return fmt.Errorf("creating radios table: %w", err)
	}
	return nil
}

// withConn acquires a dedicated connection for the duration of fn.
func (s *SQLStore) withConn(ctx context.Context, fn func(conn *sqlx.Conn) error) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

// List returns all stations from the store.
func (s *SQLStore) List(ctx context.Context) ([]model.Station, error) {
	stations := make([]model.Station, 0)

	err := s.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &stations, queryListStations)
	})
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}

	return stations, nil
}

// Get retrieves a station by its ID.
func (s *SQLStore) Get(ctx context.Context, id int64) (*model.Station, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	var station model.Station

	err := s.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.GetContext(ctx, &station, conn.Rebind(queryGetStation), id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get station %d: %w", id, err)
	}

	return &station, nil
}

// Create inserts a new station and returns the ID assigned by the database.
func (s *SQLStore) Create(ctx context.Context, in *model.StationInput) (int64, error) {
	if in == nil {
		return 0, ErrNilStation
	}

	var id int64

	err := s.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.QueryRowxContext(ctx, conn.Rebind(queryInsertStation),
			in.Name, in.StreamURL, in.Genre, in.Country,
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("create station: %w", err)
	}

	return id, nil
}

// Update replaces all mutable fields of the station. Zero affected rows means
// the station does not exist.
func (s *SQLStore) Update(ctx context.Context, id int64, in *model.StationInput) error {
	if id <= 0 {
		return ErrInvalidID
	}

	if in == nil {
		return ErrNilStation
	}

	return s.execAffectingOne(ctx, "update station", queryUpdateStation,
		in.Name, in.StreamURL, in.Genre, in.Country, id,
	)
}

// Delete removes a station by its ID.
func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}

	return s.execAffectingOne(ctx, "delete station", queryDeleteStation, id)
}

// execAffectingOne runs a statement and maps zero affected rows to ErrNotFound.
func (s *SQLStore) execAffectingOne(ctx context.Context, operation, query string, args ...any) error {
	var affected int64

	err := s.withConn(ctx, func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx, conn.Rebind(query), args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Ping verifies the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging %s database: %w", s.dialect.Name, err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// isSQLiteMemory reports whether the DSN names a private in-memory database.
func isSQLiteMemory(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// withSQLiteBusyTimeout adds a busy timeout to the DSN unless one is set.
func withSQLiteBusyTimeout(dsn string) string {
	if strings.Contains(dsn, "_busy_timeout") || strings.Contains(dsn, "_timeout") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqliteBusyTimeout
	}
	return dsn + "?" + sqliteBusyTimeout
}
