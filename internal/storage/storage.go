// Package storage provides the data persistence layer for rupee.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Veraticus/rupee-flow/internal/common"
	"github.com/Veraticus/rupee-flow/internal/service"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config selects a database.
type Config struct {
	Driver string
	DSN    string
}

// Store implements service.Storage over database/sql.
type Store struct {
	db     *sql.DB
	driver string
}

var _ service.Storage = (*Store)(nil)

// Open connects to the configured database. SQLite databases are created on
// demand; the schema is not migrated until Migrate is called.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if err := validateString(cfg.DSN, "dsn"); err != nil {
		return nil, err
	}

	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case DriverSQLite:
		db, err = openSQLite(cfg.DSN)
	case DriverPostgres:
		db, err = sql.Open(DriverPostgres, cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: unsupported driver %q", common.ErrInvalidConfig, cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, driver: cfg.Driver}, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(DriverSQLite, path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// SQLite doesn't benefit from multiple connections, and an in-memory
	// database only exists on the connection that created it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	return db, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the database driver name.
func (s *Store) Driver() string {
	return s.driver
}

// rebind rewrites ? placeholders to $N for Postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// classify maps driver errors onto the application's sentinel errors so
// callers can decide whether to retry.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return fmt.Errorf("%w: %w", common.ErrDatabaseBusy, err)
		case sqlite3.ErrCorrupt, sqlite3.ErrNotADB:
			return fmt.Errorf("%w: %w", common.ErrDatabaseCorrupted, err)
		case sqlite3.ErrConstraint:
			return fmt.Errorf("%w: %w", common.ErrDuplicateEntry, err)
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "40", "53", "57":
			// connection exception, transaction rollback, insufficient
			// resources, operator intervention
			return fmt.Errorf("%w: %w", common.ErrDatabaseBusy, err)
		case "23":
			return fmt.Errorf("%w: %w", common.ErrDuplicateEntry, err)
		}
	}

	return err
}
