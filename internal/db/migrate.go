package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is idempotent so the
// whole list is replayed on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form in sqlite.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS trace_requests (
		id           TEXT PRIMARY KEY,
		attempts     INTEGER NOT NULL DEFAULT 0,
		succeeded    INTEGER NOT NULL DEFAULT 0,
		first_seen   TEXT NOT NULL,
		last_seen    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS llm_calls (
		id          TEXT PRIMARY KEY,
		request_id  TEXT NOT NULL REFERENCES trace_requests(id) ON DELETE CASCADE,
		backend     TEXT NOT NULL DEFAULT '',
		model       TEXT NOT NULL DEFAULT '',
		attempt     INTEGER NOT NULL,
		latency_ms  INTEGER NOT NULL DEFAULT 0,
		success     INTEGER NOT NULL CHECK(success IN (0,1)),
		created_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_llm_calls_request ON llm_calls(request_id)`,
	`CREATE INDEX IF NOT EXISTS idx_llm_calls_created ON llm_calls(created_at)`,

	// Error detail columns were added after the first release.
	`ALTER TABLE llm_calls ADD COLUMN error_code TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE llm_calls ADD COLUMN error TEXT NOT NULL DEFAULT ''`,
}
