package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ruslano69/tdtp-bulk/pkg/adapters"
	"github.com/ruslano69/tdtp-bulk/pkg/adapters/base"
	"github.com/ruslano69/tdtp-bulk/pkg/bulk"
)

// Formatter преобразует значения Go в литералы MySQL
var Formatter = base.ValueFormatter{EscapeString: base.BackslashEscape}

// QuoteIdentifier оборачивает имя в обратные кавычки, удваивая вложенные
func QuoteIdentifier(name string) string {
	out := make([]byte, 0, len(name)+2)
	out = append(out, '`')
	for i := 0; i < len(name); i++ {
		if name[i] == '`' {
			out = append(out, '`')
		}
		out = append(out, name[i])
	}
	return string(append(out, '`'))
}

// ImportRows вставляет строки через выделенное соединение из пула.
// Все запросы импорта выполняются на этом соединении
func (a *Adapter) ImportRows(ctx context.Context, tableName string, columns []string, rows [][]any, opts adapters.ImportOptions) (*bulk.Result, error) {
	conn, err := a.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	return a.importHelper.ImportRows(ctx, NewSession(conn), tableName, columns, rows, opts)
}

// ImportRowsTx вставляет строки в транзакции вызывающего кода. Импорт
// выполняется в savepoint, поэтому после ошибки tx остается рабочей
func (a *Adapter) ImportRowsTx(ctx context.Context, tx *sql.Tx, tableName string, columns []string, rows [][]any, opts adapters.ImportOptions) (*bulk.Result, error) {
	return a.importHelper.ImportRows(ctx, NewTxSession(tx), tableName, columns, rows, opts)
}
