package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ruslano69/tdtp-bulk/pkg/adapters"
	"github.com/ruslano69/tdtp-bulk/pkg/adapters/base"
	"github.com/ruslano69/tdtp-bulk/pkg/bulk"
)

// maxSQLLength - SQLITE_MAX_SQL_LENGTH стандартной сборки
const maxSQLLength = 1_000_000_000

// Dialect без upsert: ON CONFLICT требует conflict target и не сообщает
// результат по строкам так, как это делает MySQL
var Dialect = bulk.Dialect{
	Name:           AdapterType,
	IgnoreModifier: "OR IGNORE",
}

// Formatter преобразует значения Go в литералы SQLite
var Formatter = base.ValueFormatter{EscapeString: base.DoubleQuoteEscape}

var sessionDialect = base.SessionDialect{
	BeginStatement: "BEGIN",
	MaxPacketSize: func(context.Context, base.Execer) (int, error) {
		return maxSQLLength, nil
	},
	ClassifyError: classifyError,
	LastRowID:     true,
}

// QuoteIdentifier оборачивает имя в двойные кавычки, удваивая вложенные
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// NewSession создает bulk сессию на выделенном соединении
func NewSession(conn *sql.Conn) *base.Session {
	return base.NewSession(conn, sessionDialect, false)
}

// NewTxSession создает bulk сессию внутри открытой транзакции
func NewTxSession(tx *sql.Tx) *base.Session {
	return base.NewSession(tx, sessionDialect, true)
}

// ImportRows вставляет строки через выделенное соединение из пула
func (a *Adapter) ImportRows(ctx context.Context, tableName string, columns []string, rows [][]any, opts adapters.ImportOptions) (*bulk.Result, error) {
	conn, err := a.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	return a.importHelper.ImportRows(ctx, NewSession(conn), tableName, columns, rows, opts)
}

// ImportRowsTx вставляет строки в транзакции вызывающего кода через savepoint
func (a *Adapter) ImportRowsTx(ctx context.Context, tx *sql.Tx, tableName string, columns []string, rows [][]any, opts adapters.ImportOptions) (*bulk.Result, error) {
	return a.importHelper.ImportRows(ctx, NewTxSession(tx), tableName, columns, rows, opts)
}

func classifyError(err error) error {
	switch errorCode(err) {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return bulk.DuplicateKeyError(err)
	}
	return err
}

// IsRetryable - импорт упал на заблокированной БД
func IsRetryable(err error) bool {
	switch errorCode(err) & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

func errorCode(err error) int {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()
	}
	return 0
}
