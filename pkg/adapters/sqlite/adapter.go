package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/ruslano69/tdtp-bulk/pkg/adapters"
	"github.com/ruslano69/tdtp-bulk/pkg/adapters/base"
)

// AdapterType - имя, под которым регистрируется адаптер SQLite
const AdapterType = "sqlite"

var _ adapters.Adapter = (*Adapter)(nil)

func init() {
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{}
	})
}

// Adapter реализует adapters.Adapter для файлов SQLite и БД в памяти
type Adapter struct {
	db           *sql.DB
	logger       zerolog.Logger
	importHelper *base.ImportHelper
}

// NewImportHelper возвращает ImportHelper с экранированием SQLite
func NewImportHelper(logger zerolog.Logger) *base.ImportHelper {
	return base.NewImportHelper(Dialect, Formatter, QuoteIdentifier, logger)
}

// Connect открывает файл БД и применяет PRAGMA для массовой загрузки
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	db, err := sql.Open(AdapterType, cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Каждое соединение к :memory: - отдельная БД
	switch {
	case strings.Contains(cfg.DSN, ":memory:"):
		db.SetMaxOpenConns(1)
	case cfg.MaxConns > 0:
		db.SetMaxOpenConns(cfg.MaxConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = db
	a.logger = log.With().Str("adapter", AdapterType).Logger()
	a.applyPragmas(ctx)
	a.importHelper = NewImportHelper(a.logger)
	return nil
}

// applyPragmas настраивает БД для больших вставок. Ошибки только
// логируются: например, page_size игнорируется существующими БД
func (a *Adapter) applyPragmas(ctx context.Context) {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA page_size = 4096",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := a.db.ExecContext(ctx, pragma); err != nil {
			a.logger.Warn().Err(err).Str("pragma", pragma).Msg("pragma failed")
		}
	}
}

// Close закрывает БД
func (a *Adapter) Close(ctx context.Context) error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Ping проверяет соединение
func (a *Adapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("adapter not connected")
	}
	return a.db.PingContext(ctx)
}

// GetDatabaseType возвращает "sqlite"
func (a *Adapter) GetDatabaseType() string {
	return AdapterType
}

// GetDatabaseVersion возвращает версию библиотеки, например "SQLite 3.49.1"
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	var version string
	err := a.db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version)
	if err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return "SQLite " + version, nil
}

// TableExists ищет таблицу в sqlite_master
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM sqlite_master
		WHERE type='table' AND name=?
	`

	var count int
	err := a.db.QueryRowContext(ctx, query, tableName).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}

	return count > 0, nil
}

// DB возвращает *sql.DB
func (a *Adapter) DB() *sql.DB {
	return a.db
}
