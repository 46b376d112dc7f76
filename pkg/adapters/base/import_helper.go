package base

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ruslano69/tdtp-bulk/pkg/adapters"
	"github.com/ruslano69/tdtp-bulk/pkg/bulk"
)

// ImportHelper содержит общую логику импорта для всех адаптеров:
// преобразует строки в bulk.Request и выполняет его в сессии
type ImportHelper struct {
	dialect         bulk.Dialect
	formatter       ValueFormatter
	quoteIdentifier func(string) string
	logger          zerolog.Logger
}

// NewImportHelper создает ImportHelper для диалекта СУБД
func NewImportHelper(dialect bulk.Dialect, formatter ValueFormatter, quoteIdentifier func(string) string, logger zerolog.Logger) *ImportHelper {
	return &ImportHelper{
		dialect:         dialect,
		formatter:       formatter,
		quoteIdentifier: quoteIdentifier,
		logger:          logger,
	}
}

// BuildRequest преобразует строки во фрагменты и стратегию импорта
// в параметры bulk
func (h *ImportHelper) BuildRequest(tableName string, columns []string, rows [][]any, opts adapters.ImportOptions) (bulk.Request, error) {
	if tableName == "" {
		return bulk.Request{}, fmt.Errorf("%w: table name is empty", bulk.ErrInvalidSpec)
	}
	if len(columns) == 0 {
		return bulk.Request{}, fmt.Errorf("%w: no columns for table %s", bulk.ErrInvalidSpec, tableName)
	}

	fragments := make([]bulk.RowFragment, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return bulk.Request{}, fmt.Errorf("%w: row %d has %d values, expected %d",
				bulk.ErrInvalidSpec, i+1, len(row), len(columns))
		}
		frag, err := h.formatter.FormatRow(row)
		if err != nil {
			return bulk.Request{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		fragments[i] = frag
	}

	table := h.quoteIdentifier(tableName)
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = h.quoteIdentifier(c)
	}

	req := bulk.Request{
		Table:     table,
		Prefix:    fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(quoted, ",")),
		Fragments: fragments,
		Options: bulk.Options{
			ForceSingleStatement: opts.ForceSingleStatement,
			SkipGeneratedIDs:     opts.SkipGeneratedIDs,
		},
	}

	switch opts.Strategy {
	case adapters.StrategyFail, "":
	case adapters.StrategyIgnore:
		req.Options.IgnoreDuplicates = true
	case adapters.StrategyReplace:
		update := opts.UpsertColumns(columns)
		if len(update) == 0 {
			return bulk.Request{}, fmt.Errorf("%w: replace strategy needs at least one non-key column", bulk.ErrInvalidSpec)
		}
		list := make(bulk.ColumnList, len(update))
		for i, c := range update {
			list[i] = h.quoteIdentifier(c)
		}
		req.Options.Upsert = list
	default:
		return bulk.Request{}, fmt.Errorf("%w: unsupported import strategy %q", bulk.ErrInvalidSpec, opts.Strategy)
	}

	return req, nil
}

// ImportRows строит запрос и выполняет его в сессии
func (h *ImportHelper) ImportRows(ctx context.Context, session bulk.Session, tableName string, columns []string, rows [][]any, opts adapters.ImportOptions) (*bulk.Result, error) {
	req, err := h.BuildRequest(tableName, columns, rows, opts)
	if err != nil {
		return nil, err
	}

	importer := bulk.NewImporter(session,
		bulk.WithDialect(h.dialect),
		bulk.WithLogger(h.logger),
		bulk.WithMaxPacketSize(opts.MaxPacketSize),
	)
	res, err := importer.Import(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("import into %s failed: %w", tableName, err)
	}
	return res, nil
}
