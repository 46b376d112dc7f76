package base

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruslano69/tdtp-bulk/pkg/adapters"
	"github.com/ruslano69/tdtp-bulk/pkg/bulk"
)

func backtick(name string) string { return "`" + name + "`" }

func newTestHelper() *ImportHelper {
	return NewImportHelper(bulk.MySQL, mysqlFormatter, backtick, zerolog.Nop())
}

func TestBuildRequest_Fail(t *testing.T) {
	req, err := newTestHelper().BuildRequest("users", []string{"id", "name"},
		[][]any{{1, "a"}, {2, "b"}}, adapters.ImportOptions{Strategy: adapters.StrategyFail})
	require.NoError(t, err)

	assert.Equal(t, "`users`", req.Table)
	assert.Equal(t, "INSERT INTO `users` (`id`,`name`) VALUES ", req.Prefix)
	assert.Equal(t, []bulk.RowFragment{"(1,'a')", "(2,'b')"}, req.Fragments)
	assert.False(t, req.Options.IgnoreDuplicates)
	assert.Nil(t, req.Options.Upsert)
}

func TestBuildRequest_Ignore(t *testing.T) {
	req, err := newTestHelper().BuildRequest("users", []string{"id"},
		[][]any{{1}}, adapters.ImportOptions{Strategy: adapters.StrategyIgnore})
	require.NoError(t, err)
	assert.True(t, req.Options.IgnoreDuplicates)
}

func TestBuildRequest_Replace(t *testing.T) {
	req, err := newTestHelper().BuildRequest("users", []string{"id", "name", "age"},
		[][]any{{1, "a", 3}}, adapters.ImportOptions{
			Strategy:   adapters.StrategyReplace,
			KeyColumns: []string{"ID"},
		})
	require.NoError(t, err)
	assert.Equal(t, bulk.ColumnList{"`name`", "`age`"}, req.Options.Upsert)

	req, err = newTestHelper().BuildRequest("users", []string{"id", "name", "age"},
		[][]any{{1, "a", 3}}, adapters.ImportOptions{
			Strategy:      adapters.StrategyReplace,
			UpdateColumns: []string{"age"},
		})
	require.NoError(t, err)
	assert.Equal(t, bulk.ColumnList{"`age`"}, req.Options.Upsert)
}

func TestBuildRequest_Errors(t *testing.T) {
	h := newTestHelper()

	_, err := h.BuildRequest("", []string{"id"}, [][]any{{1}}, adapters.ImportOptions{})
	assert.ErrorIs(t, err, bulk.ErrInvalidSpec)

	_, err = h.BuildRequest("t", nil, [][]any{{1}}, adapters.ImportOptions{})
	assert.ErrorIs(t, err, bulk.ErrInvalidSpec)

	_, err = h.BuildRequest("t", []string{"id", "name"}, [][]any{{1}}, adapters.ImportOptions{})
	assert.ErrorIs(t, err, bulk.ErrInvalidSpec)

	_, err = h.BuildRequest("t", []string{"id"}, [][]any{{1}}, adapters.ImportOptions{
		Strategy:   adapters.StrategyReplace,
		KeyColumns: []string{"id"},
	})
	assert.ErrorIs(t, err, bulk.ErrInvalidSpec)

	_, err = h.BuildRequest("t", []string{"id"}, [][]any{{1}}, adapters.ImportOptions{Strategy: "merge"})
	assert.ErrorIs(t, err, bulk.ErrInvalidSpec)

	_, err = h.BuildRequest("t", []string{"id"}, [][]any{{struct{}{}}}, adapters.ImportOptions{})
	assert.ErrorContains(t, err, "row 1")
}
