package base

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruslano69/tdtp-bulk/pkg/bulk"
)

func newMockConn(t *testing.T) (Execer, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, mock
}

func TestSession_FeedbackBeforeExec(t *testing.T) {
	s := NewSession(nil, SessionDialect{}, false)

	_, err := s.LastInsertID(context.Background())
	assert.Error(t, err)
	_, err = s.AffectedRows(context.Background())
	assert.Error(t, err)
}

func TestSession_LastRowID(t *testing.T) {
	conn, mock := newMockConn(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO t VALUES (1),(2),(3)").WillReturnResult(sqlmock.NewResult(10, 3))
	mock.ExpectExec("INSERT OR IGNORE INTO t VALUES (1)").WillReturnResult(sqlmock.NewResult(10, 0))

	s := NewSession(conn, SessionDialect{LastRowID: true}, false)

	_, err := s.Exec(ctx, "INSERT INTO t VALUES (1),(2),(3)")
	require.NoError(t, err)
	first, err := s.LastInsertID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), first)

	_, err = s.Exec(ctx, "INSERT OR IGNORE INTO t VALUES (1)")
	require.NoError(t, err)
	first, err = s.LastInsertID(ctx)
	require.NoError(t, err)
	assert.Zero(t, first)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_ClassifyError(t *testing.T) {
	conn, mock := newMockConn(t)
	ctx := context.Background()
	cause := errors.New("UNIQUE constraint failed")

	mock.ExpectExec("INSERT INTO t VALUES (1)").WillReturnError(cause)

	s := NewSession(conn, SessionDialect{ClassifyError: bulk.DuplicateKeyError}, false)
	_, err := s.Exec(ctx, "INSERT INTO t VALUES (1)")
	require.Error(t, err)
	assert.True(t, bulk.IsDuplicateKey(err))
	assert.ErrorIs(t, err, cause)

	// A failed statement leaves no feedback behind.
	_, err = s.AffectedRows(ctx)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_MaxPacketSize(t *testing.T) {
	s := NewSession(nil, SessionDialect{}, false)
	n, err := s.MaxPacketSize(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "no limit reader means unbounded")

	calls := 0
	s = NewSession(nil, SessionDialect{
		MaxPacketSize: func(context.Context, Execer) (int, error) {
			calls++
			return 1024, nil
		},
	}, false)
	for i := 0; i < 2; i++ {
		n, err = s.MaxPacketSize(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1024, n)
	}
	assert.Equal(t, 1, calls)
}

func TestSession_Scopes(t *testing.T) {
	conn, mock := newMockConn(t)
	ctx := context.Background()

	mock.ExpectExec("BEGIN").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SAVEPOINT tdtp_bulk_2").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ROLLBACK TO SAVEPOINT tdtp_bulk_2").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("RELEASE SAVEPOINT tdtp_bulk_2").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ROLLBACK").WillReturnResult(sqlmock.NewResult(0, 0))

	s := NewSession(conn, SessionDialect{BeginStatement: "BEGIN"}, false)
	outer, err := s.BeginNested(ctx)
	require.NoError(t, err)
	inner, err := s.BeginNested(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, outer.Rollback(ctx), ErrScopeDone)
	require.NoError(t, inner.Rollback(ctx))
	require.NoError(t, outer.Rollback(ctx))
	assert.ErrorIs(t, outer.Commit(ctx), ErrScopeDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}
