// tdtpbulk loads CSV and XLSX files into MySQL or SQLite tables using
// multi-row INSERT statements sized to the server packet limit.
//
// Usage:
//
//	tdtpbulk -config config.yaml -input users.csv [-table users] [-strategy ignore]
//	tdtpbulk -create-config-mysql
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ruslano69/tdtp-bulk/pkg/resultlog"
)

const version = "1.0.0"

func main() {
	flags := ParseFlags()

	if *flags.Version {
		fmt.Printf("tdtpbulk version %s\n", version)
		return
	}

	if *flags.CreateConfigMySQL {
		createConfigTemplate("mysql")
		return
	}
	if *flags.CreateConfigSQLite {
		createConfigTemplate("sqlite")
		return
	}

	config, err := LoadConfig(*flags.Config)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	if *flags.LogLevel != "" {
		config.Log.Level = *flags.LogLevel
	}
	logger, err := newLogger(config.Log)
	if err != nil {
		fatal("Invalid log config: %v", err)
	}
	log.Logger = logger

	job, err := newImportJob(config, flags)
	if err != nil {
		fatal("Invalid arguments: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, importErr := runImport(ctx, config, job, logger)
	printSummary(os.Stdout, summary)
	report(ctx, config, summary, *flags.MetricsFile, logger)

	if importErr != nil {
		stop()
		fatal("Import failed: %v", importErr)
	}
}

// report publishes the summary to Redis and the metrics file. Failures are
// logged: the import itself is already finished.
func report(ctx context.Context, config *Config, summary resultlog.ImportSummary, metricsFile string, logger zerolog.Logger) {
	resultlog.Observe(summary)
	if metricsFile != "" {
		if err := resultlog.WriteMetrics(metricsFile); err != nil {
			logger.Error().Err(err).Str("file", metricsFile).Msg("failed to write metrics")
		}
	}

	if !config.ResultLog.Enabled {
		return
	}
	publisher := resultlog.NewRedisPublisher(config.ResultLog)
	defer publisher.Close()

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := publisher.Publish(pubCtx, summary); err != nil {
		logger.Error().Err(err).Msg("failed to publish import result")
		return
	}
	logger.Debug().Str("key", publisher.StateKey()).Msg("import result published")
}

// newLogger builds the process logger from the log section.
func newLogger(cfg LogConfig) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		var err error
		if level, err = zerolog.ParseLevel(cfg.Level); err != nil {
			return zerolog.Nop(), err
		}
	}

	switch cfg.Format {
	case "", "console":
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Logger(), nil
	case "json":
		return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger(), nil
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

// createConfigTemplate creates a sample configuration file
func createConfigTemplate(dbType string) {
	filename := fmt.Sprintf("config.%s.yaml", dbType)
	if err := SaveConfig(filename, CreateSampleConfig(dbType)); err != nil {
		fatal("Failed to create config: %v", err)
	}
	fmt.Printf("✓ Configuration template created: %s\n", filename)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
