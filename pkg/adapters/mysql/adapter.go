package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ruslano69/tdtp-bulk/pkg/adapters"
	"github.com/ruslano69/tdtp-bulk/pkg/adapters/base"
	"github.com/ruslano69/tdtp-bulk/pkg/bulk"
)

// AdapterType - имя, под которым регистрируется адаптер MySQL
const AdapterType = "mysql"

var _ adapters.Adapter = (*Adapter)(nil)

// Adapter реализует adapters.Adapter для MySQL и MariaDB
type Adapter struct {
	db           *sql.DB
	config       adapters.Config
	logger       zerolog.Logger
	importHelper *base.ImportHelper
}

func init() {
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{}
	})
}

// NewImportHelper возвращает ImportHelper с экранированием MySQL
func NewImportHelper(logger zerolog.Logger) *base.ImportHelper {
	return base.NewImportHelper(bulk.MySQL, Formatter, QuoteIdentifier, logger)
}

// driverConfig разбирает dsn и заставляет драйвер использовать
// max_allowed_packet сервера, тот же лимит, по которому сессия режет запросы.
// Иначе драйвер держит собственный клиентский лимит 64 MiB
func driverConfig(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid DSN: %w", err)
	}
	cfg.MaxAllowedPacket = 0
	return cfg, nil
}

// Connect открывает пул соединений и проверяет доступность сервера
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	dcfg, err := driverConfig(cfg.DSN)
	if err != nil {
		return err
	}
	connector, err := mysql.NewConnector(dcfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db := sql.OpenDB(connector)
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}

	pingCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = db
	a.config = cfg
	a.logger = log.With().Str("adapter", AdapterType).Logger()
	a.importHelper = NewImportHelper(a.logger)
	return nil
}

// Close закрывает пул соединений
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

// GetDatabaseType возвращает "mysql"
func (a *Adapter) GetDatabaseType() string {
	return AdapterType
}

// GetDatabaseVersion возвращает версию сервера
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	var version string
	err := a.db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version)
	if err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// TableExists проверяет information_schema текущей БД
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
	`

	var count int
	err := a.db.QueryRowContext(ctx, query, tableName).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}

	return count > 0, nil
}

// DB возвращает пул соединений
func (a *Adapter) DB() *sql.DB {
	return a.db
}
