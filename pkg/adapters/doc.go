/*
Package adapters предоставляет универсальный интерфейс для bulk импорта
в различные СУБД.

# Архитектура двухуровневого адаптера

	┌─────────────────────────────────────────┐
	│  pkg/bulk                               │
	│  - Pack / BuildStatement / Reconstruct  │
	│  - Importer over a bulk.Session         │
	└─────────────────▲───────────────────────┘
	                  │
	┌─────────────────┴───────────────────────┐
	│  Level 1: Adapter interface             │  ← pkg/adapters/adapter.go
	│                                         │
	│  type Adapter interface {               │
	│    Connect(ctx, Config) error           │
	│    ImportRows(ctx, table, cols, rows,   │
	│               ImportOptions)            │
	│    ...                                  │
	│  }                                      │
	└─────────────────┬───────────────────────┘
	                  │
	          ┌───────┴───────┐
	          │               │
	   ┌──────▼─────┐  ┌──────▼─────┐
	   │ MySQL      │  │ SQLite     │  ← Level 2: сессии, экранирование,
	   │ Adapter    │  │ Adapter    │     классификация ошибок
	   └────────────┘  └────────────┘

Каждая реализация Level 2 владеет своей bulk.Session: MySQL закрепляет одно
соединение и читает @@max_allowed_packet, SQLite вычисляет первый rowid
по последнему.

# Использование

	import (
	    "github.com/ruslano69/tdtp-bulk/pkg/adapters"
	    _ "github.com/ruslano69/tdtp-bulk/pkg/adapters/mysql"
	)

	adapter, err := adapters.New(ctx, adapters.Config{
	    Type: "mysql",
	    DSN:  "app:secret@tcp(db:3306)/shop",
	})
	if err != nil {
	    return err
	}
	defer adapter.Close(ctx)

	res, err := adapter.ImportRows(ctx, "orders",
	    []string{"id", "customer", "total"},
	    rows,
	    adapters.ImportOptions{Strategy: adapters.StrategyReplace, KeyColumns: []string{"id"}},
	)
*/
package adapters
