// Package testutil provides test utilities for rupee: in-memory databases
// with migrations applied and seeded messages.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/rupee-flow/internal/model"
	"github.com/Veraticus/rupee-flow/internal/service"
	"github.com/Veraticus/rupee-flow/internal/storage"
	"github.com/Veraticus/rupee-flow/internal/testutil/messages"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage  *storage.Store
	t        *testing.T
	Messages messages.Messages
}

// SetupTestDB creates a new in-memory test database seeded with msgs.
// It automatically handles migrations and cleanup.
func SetupTestDB(t *testing.T, msgs messages.Messages) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Messages: msgs})
}

// SetupTestDBWithBuilder creates a test database using a message builder.
//
// Example:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b messages.Builder) messages.Builder {
//		return b.WithFixture(messages.FixtureMixedInbox)
//	})
func SetupTestDBWithBuilder(t *testing.T, configure func(messages.Builder) messages.Builder) *TestDB {
	t.Helper()

	builder := messages.NewBuilder(t)
	if configure != nil {
		builder = configure(builder)
	}
	return SetupTestDB(t, builder.Messages())
}

// MustGetMessage returns the stored message with id or fails the test.
func (db *TestDB) MustGetMessage(id string) model.Message {
	db.t.Helper()
	msg, err := db.Storage.GetMessage(context.Background(), id)
	if err != nil {
		db.t.Fatalf("failed to get message %q: %v", id, err)
	}
	return *msg
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	Messages       messages.Messages
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	ctx := context.Background()
	store, err := storage.Open(ctx, storage.Config{Driver: storage.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Register cleanup
	t.Cleanup(func() {
		_ = store.Close()
	})

	// Run migrations unless skipped
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	if len(opts.Messages) > 0 {
		if err := store.SaveMessages(ctx, opts.Messages); err != nil {
			t.Fatalf("failed to seed messages: %v", err)
		}
	}

	// Run custom setup
	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage:  store,
		Messages: opts.Messages,
		t:        t,
	}
}
