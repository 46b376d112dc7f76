package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruslano69/tdtp-bulk/pkg/adapters"
	"github.com/ruslano69/tdtp-bulk/pkg/adapters/mysql"
	"github.com/ruslano69/tdtp-bulk/pkg/adapters/sqlite"
	"github.com/ruslano69/tdtp-bulk/pkg/bulk"
	"github.com/ruslano69/tdtp-bulk/pkg/resultlog"
	"github.com/ruslano69/tdtp-bulk/pkg/retry"
	"github.com/ruslano69/tdtp-bulk/pkg/source"
)

// importJob is one CLI import after flags and config are merged.
type importJob struct {
	Input   string
	Table   string
	Source  source.Options
	Options adapters.ImportOptions
}

// deadLetter is stored in the DLQ when an import runs out of attempts.
type deadLetter struct {
	Input string `json:"input"`
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

// newImportJob merges the command line over the import section of config.
func newImportJob(cfg *Config, f *Flags) (importJob, error) {
	job := importJob{
		Input:  *f.Input,
		Table:  *f.Table,
		Source: cfg.Import.SourceOptions(),
		Options: adapters.ImportOptions{
			KeyColumns:           cfg.Import.KeyColumns,
			UpdateColumns:        cfg.Import.UpdateColumns,
			ForceSingleStatement: cfg.Import.ForceSingleStatement || *f.ForceSingle,
			MaxPacketSize:        cfg.Import.MaxPacketSize,
			SkipGeneratedIDs:     cfg.Import.SkipGeneratedIDs || *f.SkipIDs,
		},
	}
	if job.Input == "" {
		return importJob{}, fmt.Errorf("-input is required")
	}

	strategy := cfg.Import.Strategy
	if *f.Strategy != "" {
		strategy = *f.Strategy
	}
	var err error
	if job.Options.Strategy, err = adapters.ParseImportStrategy(strategy); err != nil {
		return importJob{}, err
	}

	if keys := f.KeyColumns(); len(keys) > 0 {
		job.Options.KeyColumns = keys
	}
	if *f.MaxPacket > 0 {
		job.Options.MaxPacketSize = *f.MaxPacket
	}
	if *f.Sheet != "" {
		job.Source.Sheet = *f.Sheet
	}
	if *f.NullLiteral != "" {
		job.Source.NullLiteral = *f.NullLiteral
	}
	return job, nil
}

// retryableFor returns the error classifier of a database type.
func retryableFor(dbType string) func(error) bool {
	switch dbType {
	case mysql.AdapterType:
		return mysql.IsRetryable
	case sqlite.AdapterType:
		return sqlite.IsRetryable
	default:
		return func(error) bool { return false }
	}
}

// runImport reads the input file and imports it with retries. The summary is
// filled for failed imports too.
func runImport(ctx context.Context, cfg *Config, job importJob, logger zerolog.Logger) (resultlog.ImportSummary, error) {
	started := time.Now()
	fail := func(table string, rows int, err error) (resultlog.ImportSummary, error) {
		summary := resultlog.NewImportSummary(table, rows, nil, started, time.Now(), err)
		summary.Source = job.Input
		return summary, err
	}

	table, err := source.ReadFile(job.Input, job.Source)
	if err != nil {
		return fail(job.Table, 0, err)
	}
	if job.Table == "" {
		job.Table = table.Name
	}
	if len(job.Options.KeyColumns) == 0 {
		job.Options.KeyColumns = table.Keys
	}
	log := logger.With().Str("table", job.Table).Str("input", job.Input).Logger()
	log.Info().Int("rows", len(table.Rows)).Int("columns", len(table.Columns)).Msg("input parsed")

	adapter, err := adapters.New(ctx, cfg.Database.AdapterConfig())
	if err != nil {
		return fail(job.Table, len(table.Rows), err)
	}
	defer adapter.Close(ctx)

	retryCfg := cfg.Retry
	retryCfg.Retryable = retryableFor(cfg.Database.Type)
	retryCfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("import failed, retrying")
	}
	retryer, err := retry.NewRetryer(retryCfg)
	if err != nil {
		return fail(job.Table, len(table.Rows), err)
	}
	defer retryer.Close()

	var res *bulk.Result
	err = retryer.DoWithData(ctx, func(ctx context.Context) error {
		var err error
		res, err = adapter.ImportRows(ctx, job.Table, table.Columns, table.Rows, job.Options)
		return err
	}, deadLetter{Input: job.Input, Table: job.Table, Rows: len(table.Rows)})

	summary := resultlog.NewImportSummary(job.Table, len(table.Rows), res, started, time.Now(), err)
	summary.Source = job.Input
	return summary, err
}

// printSummary writes the human readable outcome.
func printSummary(w io.Writer, s resultlog.ImportSummary) {
	if s.Status != "success" {
		fmt.Fprintf(w, "✗ Import into %s failed after %dms\n", s.Table, s.DurationMs)
		return
	}
	fmt.Fprintf(w, "✓ Imported %d rows into %s\n", s.Rows, s.Table)
	fmt.Fprintf(w, "  Statements:    %d\n", s.Statements)
	if s.GeneratedIDs > 0 {
		fmt.Fprintf(w, "  Generated ids: %d..%d\n", s.FirstID, s.LastID)
	}
	fmt.Fprintf(w, "  Duration:      %dms\n", s.DurationMs)
}
