package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruslano69/tdtp-bulk/pkg/adapters"
	"github.com/ruslano69/tdtp-bulk/pkg/bulk"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	ctx := context.Background()

	a := &Adapter{}
	require.NoError(t, a.Connect(ctx, adapters.Config{Type: AdapterType, DSN: ":memory:"}))
	t.Cleanup(func() { a.Close(ctx) })

	_, err := a.DB().ExecContext(ctx, `CREATE TABLE items (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		qty  INTEGER
	)`)
	require.NoError(t, err)
	return a
}

func itemRows(n int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{fmt.Sprintf("item-%02d", i)}
	}
	return rows
}

func countItems(t *testing.T, a *Adapter) int {
	t.Helper()
	var n int
	require.NoError(t, a.DB().QueryRow("SELECT COUNT(*) FROM items").Scan(&n))
	return n
}

// batchedOptions fits three ('item-NN') rows per statement: the prefix is
// 36 bytes and each fragment 11.
func batchedOptions() adapters.ImportOptions {
	opts := adapters.DefaultImportOptions()
	opts.MaxPacketSize = 80
	return opts
}

func TestAdapter_Metadata(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	assert.Equal(t, "sqlite", a.GetDatabaseType())
	require.NoError(t, a.Ping(ctx))

	version, err := a.GetDatabaseVersion(ctx)
	require.NoError(t, err)
	assert.Contains(t, version, "SQLite 3.")

	exists, err := a.TableExists(ctx, "items")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = a.TableExists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestImportRows_SingleStatement(t *testing.T) {
	a := newTestAdapter(t)

	res, err := a.ImportRows(context.Background(), "items", []string{"name", "qty"},
		[][]any{{"bolt", 10}, {"nut's", nil}}, adapters.DefaultImportOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, res.StatementsExecuted)
	assert.Equal(t, []int64{1, 2}, res.GeneratedIDs)

	var name string
	require.NoError(t, a.DB().QueryRow("SELECT name FROM items WHERE id = 2").Scan(&name))
	assert.Equal(t, "nut's", name)
}

func TestImportRows_BatchesKeepIDOrder(t *testing.T) {
	a := newTestAdapter(t)

	res, err := a.ImportRows(context.Background(), "items", []string{"name"}, itemRows(10), batchedOptions())
	require.NoError(t, err)

	assert.Equal(t, 4, res.StatementsExecuted)
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, res.GeneratedIDs)
	assert.Equal(t, 10, countItems(t, a))

	// Generated ids belong to the rows in input order.
	var name string
	require.NoError(t, a.DB().QueryRow("SELECT name FROM items WHERE id = 7").Scan(&name))
	assert.Equal(t, "item-06", name)
}

func TestImportRows_DuplicateRollsBackEverything(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	_, err := a.DB().ExecContext(ctx, "INSERT INTO items (name) VALUES ('item-05')")
	require.NoError(t, err)

	res, err := a.ImportRows(ctx, "items", []string{"name"}, itemRows(10), batchedOptions())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, bulk.IsDuplicateKey(err))

	var stmtErr *bulk.StatementError
	require.ErrorAs(t, err, &stmtErr)
	assert.Equal(t, 2, stmtErr.Statement)

	// The first batch was committed to nothing.
	assert.Equal(t, 1, countItems(t, a))
}

func TestImportRows_IgnoreDuplicates(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	_, err := a.DB().ExecContext(ctx, "INSERT INTO items (name) VALUES ('item-01')")
	require.NoError(t, err)

	opts := batchedOptions()
	opts.Strategy = adapters.StrategyIgnore
	res, err := a.ImportRows(ctx, "items", []string{"name"}, itemRows(5), opts)
	require.NoError(t, err)

	assert.Empty(t, res.GeneratedIDs)
	assert.Equal(t, 5, countItems(t, a))
}

func TestImportRows_ReplaceUnsupported(t *testing.T) {
	a := newTestAdapter(t)

	opts := adapters.DefaultImportOptions()
	opts.Strategy = adapters.StrategyReplace
	opts.KeyColumns = []string{"name"}
	_, err := a.ImportRows(context.Background(), "items", []string{"name", "qty"}, [][]any{{"a", 1}}, opts)
	assert.ErrorIs(t, err, bulk.ErrInvalidSpec)
}

func TestImportRowsTx_FailureKeepsOuterTransaction(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	tx, err := a.DB().BeginTx(ctx, nil)
	require.NoError(t, err)
	_, err = tx.ExecContext(ctx, "INSERT INTO items (name) VALUES ('item-08')")
	require.NoError(t, err)

	_, err = a.ImportRowsTx(ctx, tx, "items", []string{"name"}, itemRows(10), batchedOptions())
	require.Error(t, err)
	assert.True(t, bulk.IsDuplicateKey(err))

	res, err := a.ImportRowsTx(ctx, tx, "items", []string{"name"}, [][]any{{"extra-1"}, {"extra-2"}}, batchedOptions())
	require.NoError(t, err)
	assert.Len(t, res.GeneratedIDs, 2)

	require.NoError(t, tx.Commit())
	assert.Equal(t, 3, countItems(t, a))
}
