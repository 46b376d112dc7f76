package adapters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ruslano69/tdtp-bulk/pkg/bulk"
)

// Config конфигурация подключения к БД, общая для всех адаптеров
type Config struct {
	// Type - имя зарегистрированного адаптера: "mysql", "sqlite"
	Type string

	// DSN - строка подключения в формате драйвера
	//   MySQL:  "user:pass@tcp(localhost:3306)/dbname"
	//   SQLite: "file:app.db"
	DSN string

	// Timeout ограничивает Connect и Ping. 0 - без дополнительного таймаута
	Timeout time.Duration

	// MaxConns ограничивает пул соединений. 0 - значение драйвера
	MaxConns int
}

// Adapter - универсальный интерфейс адаптера БД
type Adapter interface {
	// ========== Жизненный цикл ==========

	Connect(ctx context.Context, cfg Config) error
	Close(ctx context.Context) error
	Ping(ctx context.Context) error

	// ========== Метаданные ==========

	GetDatabaseType() string
	GetDatabaseVersion(ctx context.Context) (string, error)
	TableExists(ctx context.Context, tableName string) (bool, error)

	// ========== Импорт ==========

	// ImportRows вставляет rows в tableName минимальным числом запросов,
	// которое позволяет лимит пакета сервера. Импорт атомарный
	ImportRows(ctx context.Context, tableName string, columns []string, rows [][]any, opts ImportOptions) (*bulk.Result, error)
}

// ImportStrategy стратегия обработки конфликтов по ключу при импорте
type ImportStrategy string

const (
	// StrategyReplace обновляет существующие строки (INSERT ... ON DUPLICATE KEY UPDATE)
	StrategyReplace ImportStrategy = "replace"

	// StrategyIgnore пропускает дубликаты (INSERT IGNORE / INSERT OR IGNORE)
	StrategyIgnore ImportStrategy = "ignore"

	// StrategyFail прерывает импорт на первом дубликате (обычный INSERT)
	StrategyFail ImportStrategy = "fail"
)

// ParseImportStrategy разбирает имя стратегии из флагов или конфига
func ParseImportStrategy(s string) (ImportStrategy, error) {
	switch ImportStrategy(s) {
	case StrategyReplace, StrategyIgnore, StrategyFail:
		return ImportStrategy(s), nil
	case "":
		return StrategyFail, nil
	default:
		return "", fmt.Errorf("invalid import strategy: %s (valid: replace, ignore, fail)", s)
	}
}

// ImportOptions параметры ImportRows
type ImportOptions struct {
	Strategy ImportStrategy

	// KeyColumns исключаются из списка обновляемых колонок StrategyReplace
	KeyColumns []string

	// UpdateColumns, если задан, заменяет вычисленный список
	// обновляемых колонок StrategyReplace
	UpdateColumns []string

	// ForceSingleStatement отправляет все строки одним запросом
	ForceSingleStatement bool

	// MaxPacketSize переопределяет лимит, полученный от сервера
	MaxPacketSize int

	// SkipGeneratedIDs отключает восстановление id для таблиц
	// без auto-increment ключа
	SkipGeneratedIDs bool
}

// DefaultImportOptions возвращает параметры по умолчанию
func DefaultImportOptions() ImportOptions {
	return ImportOptions{
		Strategy: StrategyFail,
	}
}

// UpsertColumns возвращает колонки, которые перезаписывает StrategyReplace:
// UpdateColumns, если задан, иначе все колонки кроме KeyColumns
func (o ImportOptions) UpsertColumns(columns []string) []string {
	if len(o.UpdateColumns) > 0 {
		return o.UpdateColumns
	}
	keys := make(map[string]struct{}, len(o.KeyColumns))
	for _, k := range o.KeyColumns {
		keys[strings.ToLower(k)] = struct{}{}
	}
	var out []string
	for _, c := range columns {
		if _, ok := keys[strings.ToLower(c)]; !ok {
			out = append(out, c)
		}
	}
	return out
}
