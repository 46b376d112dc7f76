package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ruslano69/tdtp-bulk/pkg/adapters/base"
)

var sessionDialect = base.SessionDialect{
	BeginStatement: "START TRANSACTION",
	MaxPacketSize:  maxAllowedPacket,
	ClassifyError:  classifyError,
}

// NewSession создает bulk сессию на выделенном соединении.
// Scope на ней открывают настоящие транзакции
func NewSession(conn *sql.Conn) *base.Session {
	return base.NewSession(conn, sessionDialect, false)
}

// NewTxSession создает bulk сессию внутри открытой транзакции.
// Scope на ней - savepoint
func NewTxSession(tx *sql.Tx) *base.Session {
	return base.NewSession(tx, sessionDialect, true)
}

func maxAllowedPacket(ctx context.Context, conn base.Execer) (int, error) {
	var n int64
	if err := conn.QueryRowContext(ctx, "SELECT @@max_allowed_packet").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to read max_allowed_packet: %w", err)
	}
	return int(n), nil
}
