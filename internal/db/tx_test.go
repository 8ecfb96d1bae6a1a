package db_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/roadmapper/internal/db"
	"github.com/alexanderramin/roadmapper/internal/testutil"
)

const insertRequest = `INSERT INTO trace_requests (id, first_seen, last_seen) VALUES (?, 'x', 'x')`

func requestExists(t *testing.T, database *sql.DB, id string) bool {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM trace_requests WHERE id = ?`, id).Scan(&n))
	return n == 1
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := db.NewTxUnitOfWork(database)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, insertRequest, "k1")
		return err
	})
	require.NoError(t, err)

	assert.True(t, requestExists(t, database, "k1"), "row should exist after commit")
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := db.NewTxUnitOfWork(database)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, insertRequest, "k2"); err != nil {
			return err
		}
		return fmt.Errorf("deliberate failure")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliberate failure")

	assert.False(t, requestExists(t, database, "k2"), "row should not exist after rollback")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := db.NewTxUnitOfWork(database)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_, _ = tx.ExecContext(ctx, insertRequest, "k3")
			panic("boom")
		})
	})

	assert.False(t, requestExists(t, database, "k3"), "row should not exist after panic rollback")
}

func TestUnitOfWorkFunc_WrapsTraceStoreWrites(t *testing.T) {
	store, database := testutil.NewTestTraceStore(t)
	inner := db.NewTxUnitOfWork(database)
	var calls int
	store.WithUnitOfWork(db.UnitOfWorkFunc(func(ctx context.Context, fn func(context.Context, db.DBTX) error) error {
		calls++
		return inner.WithinTx(ctx, fn)
	}))

	require.NoError(t, store.Record(context.Background(), db.CallTrace{RequestID: "k4", Attempt: 1}))

	assert.Equal(t, 1, calls)
	assert.True(t, requestExists(t, database, "k4"))
}
