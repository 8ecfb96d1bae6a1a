package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// CallTrace is one persisted completion attempt.
type CallTrace struct {
	ID        string
	RequestID string
	Backend   string
	Model     string
	Attempt   int
	LatencyMs int64
	Success   bool
	ErrorCode string
	Error     string
	CreatedAt time.Time
}

// TraceSummary aggregates the stored attempts.
type TraceSummary struct {
	Requests     int
	Calls        int
	Failures     int
	AvgLatencyMs float64
}

// TraceStore records completion attempts for offline inspection.
type TraceStore struct {
	db  *sql.DB
	uow UnitOfWork
	now func() time.Time
}

// NewTraceStore wraps an opened trace database.
func NewTraceStore(db *sql.DB) *TraceStore {
	return &TraceStore{db: db, uow: NewTxUnitOfWork(db), now: time.Now}
}

// WithUnitOfWork swaps the transaction runner. Used by rollback tests.
func (s *TraceStore) WithUnitOfWork(uow UnitOfWork) *TraceStore {
	s.uow = uow
	return s
}

// Record stores one attempt and rolls it into its request row. Attempts
// without a request id are grouped under a fresh one.
func (s *TraceStore) Record(ctx context.Context, c CallTrace) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.RequestID == "" {
		c.RequestID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	ts := c.CreatedAt.UTC().Format(timeLayout)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO trace_requests (id, first_seen, last_seen)
			VALUES (?, ?, ?)
			ON CONFLICT(id) DO NOTHING`, c.RequestID, ts, ts); err != nil {
			return fmt.Errorf("upserting trace request: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO llm_calls
			(id, request_id, backend, model, attempt, latency_ms, success, error_code, error, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.RequestID, c.Backend, c.Model, c.Attempt, c.LatencyMs,
			boolToInt(c.Success), c.ErrorCode, c.Error, ts); err != nil {
			return fmt.Errorf("inserting llm call: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE trace_requests
			SET attempts = attempts + 1,
			    succeeded = MAX(succeeded, ?),
			    last_seen = ?
			WHERE id = ?`, boolToInt(c.Success), ts, c.RequestID); err != nil {
			return fmt.Errorf("updating trace request: %w", err)
		}
		return nil
	})
}

// Recent returns up to limit attempts, newest first.
func (s *TraceStore) Recent(ctx context.Context, limit int) ([]CallTrace, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, request_id, backend, model, attempt,
			latency_ms, success, error_code, error, created_at
		FROM llm_calls
		ORDER BY created_at DESC, attempt DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying llm calls: %w", err)
	}
	defer rows.Close()

	var out []CallTrace
	for rows.Next() {
		var (
			c       CallTrace
			success int
			created string
		)
		if err := rows.Scan(&c.ID, &c.RequestID, &c.Backend, &c.Model, &c.Attempt,
			&c.LatencyMs, &success, &c.ErrorCode, &c.Error, &created); err != nil {
			return nil, fmt.Errorf("scanning llm call: %w", err)
		}
		c.Success = success == 1
		c.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Summary aggregates every stored attempt.
func (s *TraceStore) Summary(ctx context.Context) (TraceSummary, error) {
	var sum TraceSummary
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `SELECT
			(SELECT COUNT(*) FROM trace_requests),
			COUNT(*),
			COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0),
			AVG(latency_ms)
		FROM llm_calls`).Scan(&sum.Requests, &sum.Calls, &sum.Failures, &avg)
	if err != nil {
		return TraceSummary{}, fmt.Errorf("summarising llm calls: %w", err)
	}
	sum.AvgLatencyMs = avg.Float64
	return sum, nil
}

// Prune deletes requests last seen before cutoff together with their calls.
func (s *TraceStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	ts := cutoff.UTC().Format(timeLayout)
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM llm_calls
			WHERE request_id IN (SELECT id FROM trace_requests WHERE last_seen < ?)`, ts); err != nil {
			return fmt.Errorf("pruning llm calls: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM trace_requests WHERE last_seen < ?`, ts)
		if err != nil {
			return fmt.Errorf("pruning trace requests: %w", err)
		}
		removed, err = res.RowsAffected()
		return err
	})
	return removed, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
