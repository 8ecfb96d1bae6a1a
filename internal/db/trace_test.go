package db_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/roadmapper/internal/db"
	"github.com/alexanderramin/roadmapper/internal/llm"
	"github.com/alexanderramin/roadmapper/internal/testutil"
)

func TestTraceStore_RecordAndRecent(t *testing.T) {
	store, _ := testutil.NewTestTraceStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, db.CallTrace{
		RequestID: "r1", Backend: "ollama", Model: "llama3.2", Attempt: 1,
		LatencyMs: 40, ErrorCode: "INVALID_OUTPUT", Error: "no JSON", CreatedAt: base,
	}))
	require.NoError(t, store.Record(ctx, db.CallTrace{
		RequestID: "r1", Backend: "ollama", Model: "llama3.2", Attempt: 2,
		LatencyMs: 60, Success: true, CreatedAt: base.Add(time.Second),
	}))

	calls, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, calls, 2)

	assert.Equal(t, 2, calls[0].Attempt)
	assert.True(t, calls[0].Success)
	assert.Equal(t, base.Add(time.Second), calls[0].CreatedAt)
	assert.Equal(t, "INVALID_OUTPUT", calls[1].ErrorCode)
	assert.Equal(t, "no JSON", calls[1].Error)

	sum, err := store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Requests)
	assert.Equal(t, 2, sum.Calls)
	assert.Equal(t, 1, sum.Failures)
	assert.InDelta(t, 50.0, sum.AvgLatencyMs, 0.001)
}

func TestTraceStore_SummaryEmpty(t *testing.T) {
	store, _ := testutil.NewTestTraceStore(t)

	sum, err := store.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, db.TraceSummary{}, sum)
}

func TestTraceStore_RequestRowAggregates(t *testing.T) {
	store, database := testutil.NewTestTraceStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.Record(ctx, db.CallTrace{RequestID: "r9", Attempt: i, Success: i == 3}))
	}

	var attempts, succeeded int
	err := database.QueryRow(`SELECT attempts, succeeded FROM trace_requests WHERE id = ?`, "r9").
		Scan(&attempts, &succeeded)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 1, succeeded)
}

func TestTraceStore_RecordRollsBackOnFailure(t *testing.T) {
	store, database := testutil.NewTestTraceStore(t)
	store.WithUnitOfWork(&testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: errors.New("disk full")})

	err := store.Record(context.Background(), db.CallTrace{RequestID: "r1", Attempt: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM trace_requests`).Scan(&n))
	assert.Zero(t, n, "request row should be rolled back with the failed call insert")
}

func TestTraceStore_Prune(t *testing.T) {
	store, _ := testutil.NewTestTraceStore(t)
	ctx := context.Background()
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, db.CallTrace{RequestID: "old", Attempt: 1, CreatedAt: old}))
	require.NoError(t, store.Record(ctx, db.CallTrace{RequestID: "new", Attempt: 1, CreatedAt: recent}))

	removed, err := store.Prune(ctx, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	calls, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "new", calls[0].RequestID)
}

func TestTraceObserver_PersistsEvents(t *testing.T) {
	store, _ := testutil.NewTestTraceStore(t)
	obs := db.NewTraceObserver(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	obs.OnCallComplete(llm.CallEvent{
		RequestID: "req-1",
		Backend:   llm.BackendSQL,
		Model:     "snowflake-arctic",
		Attempt:   1,
		LatencyMs: 12,
		Success:   true,
	})

	calls, err := store.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "req-1", calls[0].RequestID)
	assert.Equal(t, "sql", calls[0].Backend)
	assert.Equal(t, "snowflake-arctic", calls[0].Model)
	assert.True(t, calls[0].Success)
}
