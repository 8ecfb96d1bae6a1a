package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/roadmapper/internal/db"
)

// NewTestDB creates an in-memory trace database with all migrations applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestTraceStore creates a TraceStore over a fresh in-memory database.
func NewTestTraceStore(t *testing.T) (*db.TraceStore, *sql.DB) {
	t.Helper()
	database := NewTestDB(t)
	return db.NewTraceStore(database), database
}
