package main

import (
	"flag"
	"strings"
)

// Flags holds all command-line flags
type Flags struct {
	// Import
	Input       *string
	Table       *string
	Strategy    *string
	Keys        *string
	ForceSingle *bool
	MaxPacket   *int
	SkipIDs     *bool
	Sheet       *string
	NullLiteral *string

	// Output
	Config      *string
	MetricsFile *string
	LogLevel    *string

	// Config creation
	CreateConfigMySQL  *bool
	CreateConfigSQLite *bool

	Version *bool
}

// ParseFlags defines and parses all command-line flags
func ParseFlags() *Flags {
	f := defineFlags(flag.CommandLine)
	flag.Parse()
	return f
}

func defineFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}

	f.Input = fs.String("input", "", "Input file: .csv, .tsv or .xlsx, optionally .zst compressed")
	f.Table = fs.String("table", "", "Target table (default: sheet or file name)")
	f.Strategy = fs.String("strategy", "", "Duplicate key strategy: fail, ignore, replace (overrides config)")
	f.Keys = fs.String("keys", "", "Comma-separated key columns for the replace strategy")
	f.ForceSingle = fs.Bool("force-single", false, "Send all rows in one statement regardless of max_allowed_packet")
	f.MaxPacket = fs.Int("max-packet", 0, "Statement size limit in bytes (default: ask the server)")
	f.SkipIDs = fs.Bool("skip-ids", false, "Do not reconstruct generated ids")
	f.Sheet = fs.String("sheet", "", "Excel sheet name (default: first sheet)")
	f.NullLiteral = fs.String("null", "", "Cell value read as NULL (overrides config)")

	f.Config = fs.String("config", "config.yaml", "Configuration file path")
	f.MetricsFile = fs.String("metrics-file", "", "Write Prometheus metrics to this file after the import")
	f.LogLevel = fs.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")

	f.CreateConfigMySQL = fs.Bool("create-config-mysql", false, "Create sample MySQL configuration")
	f.CreateConfigSQLite = fs.Bool("create-config-sqlite", false, "Create sample SQLite configuration")

	f.Version = fs.Bool("version", false, "Show version")

	return f
}

// KeyColumns splits -keys.
func (f *Flags) KeyColumns() []string {
	if *f.Keys == "" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(*f.Keys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
