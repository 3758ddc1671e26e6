// Package testutils provides database testing helpers built on transaction
// isolation: each test runs inside a transaction that is rolled back when
// the test completes, so tests can run in parallel against the same schema
// without interfering and without manual cleanup.
package testutils

import (
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/taskraft/taskraft-api/migrations"
)

// migrationsRunOnce ensures the schema is set up only once per test binary.
var migrationsRunOnce sync.Once

// IsIntegrationTestEnvironment reports whether a test database is available.
// Database-backed tests skip themselves when it returns false.
func IsIntegrationTestEnvironment() bool {
	return os.Getenv("DATABASE_URL") != ""
}

// MustGetTestDatabaseURL returns the test database URL or panics. Callers
// must check IsIntegrationTestEnvironment first.
func MustGetTestDatabaseURL() string {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		panic("DATABASE_URL is not set; integration tests require a test database")
	}
	return url
}

// SetupTestDatabaseSchema resets the schema to baseline and applies all
// embedded migrations. Safe to call from multiple TestMain functions; the
// work runs once per binary.
func SetupTestDatabaseSchema(db *sql.DB) error {
	var setupErr error
	migrationsRunOnce.Do(func() {
		goose.SetBaseFS(migrations.FS)
		if err := goose.SetDialect("postgres"); err != nil {
			setupErr = fmt.Errorf("failed to set goose dialect: %w", err)
			return
		}
		if err := goose.DownTo(db, ".", 0); err != nil {
			setupErr = fmt.Errorf("failed to reset schema: %w", err)
			return
		}
		if err := goose.Up(db, "."); err != nil {
			setupErr = fmt.Errorf("failed to apply migrations: %w", err)
			return
		}
	})
	return setupErr
}

// WithTx runs fn inside a transaction that is always rolled back, giving the
// test a private view of the database.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("failed to begin test transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			t.Errorf("failed to roll back test transaction: %v", err)
		}
	}()
	fn(t, tx)
}
