package mysql

import (
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/ruslano69/tdtp-bulk/pkg/bulk"
)

// Коды ошибок сервера MySQL для классификации
const (
	erDupEntry          = 1062
	erNetPacketTooLarge = 1153
	erLockWaitTimeout   = 1205
	erLockDeadlock      = 1213
)

// classifyError помечает нарушения уникальности как bulk.ErrDuplicateKey.
// Ошибка драйвера остается доступной через errors.As
func classifyError(err error) error {
	if errorNumber(err) == erDupEntry {
		return bulk.DuplicateKeyError(err)
	}
	return err
}

// IsRetryable - имеет ли смысл повторить импорт:
// deadlock, таймаут ожидания блокировки, потеря соединения
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	switch errorNumber(err) {
	case erLockDeadlock, erLockWaitTimeout:
		return true
	}
	return false
}

// IsPacketTooLarge - сервер отклонил запрос больше max_allowed_packet
func IsPacketTooLarge(err error) bool {
	return errorNumber(err) == erNetPacketTooLarge || errors.Is(err, mysql.ErrPktTooLarge)
}

func errorNumber(err error) uint16 {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number
	}
	return 0
}
