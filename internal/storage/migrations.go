package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration. Statements must be
// valid for both SQLite and Postgres.
type Migration struct {
	Description string
	Statements  []string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Messages",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS messages (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				sender TEXT NOT NULL DEFAULT '',
				body TEXT NOT NULL,
				received_at TIMESTAMP NOT NULL,
				processed BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_messages_unprocessed ON messages(processed, received_at)`,
			`CREATE INDEX IF NOT EXISTS idx_messages_user ON messages(user_id)`,
		},
	},
	{
		Version:     2,
		Description: "Extracted transactions",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS transactions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				source_message_id TEXT NOT NULL REFERENCES messages(id),
				account_number TEXT NOT NULL,
				transaction_type TEXT NOT NULL,
				amount TEXT NOT NULL,
				currency TEXT NOT NULL,
				transaction_date TIMESTAMP NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				reference_id TEXT NOT NULL DEFAULT '',
				fingerprint TEXT NOT NULL DEFAULT '',
				confidence_score INTEGER NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_transactions_user_fingerprint ON transactions(user_id, fingerprint)`,
			`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(transaction_date)`,
		},
	},
	{
		Version:     3,
		Description: "Latest reported balance per user",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS balances (
				user_id TEXT PRIMARY KEY,
				balance TEXT NOT NULL,
				source_message_id TEXT NOT NULL,
				reported_at TIMESTAMP NOT NULL
			)`,
		},
	},
}

// Migrate brings the schema up to ExpectedSchemaVersion. Applied versions
// are recorded in schema_version.
func (s *Store) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}
		if err := s.apply(ctx, migration); err != nil {
			return err
		}
		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

func (s *Store) apply(ctx context.Context, migration Migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range migration.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		s.rebind(`INSERT INTO schema_version (version, description) VALUES (?, ?)`),
		migration.Version, migration.Description); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
	}
	return nil
}

// SchemaVersion returns the highest applied migration, or 0.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return int(version.Int64), nil
}
