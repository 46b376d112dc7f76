package main

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"

	"github.com/ruslano69/tdtp-bulk/pkg/adapters"
	"github.com/ruslano69/tdtp-bulk/pkg/resultlog"
	"github.com/ruslano69/tdtp-bulk/pkg/retry"
	"github.com/ruslano69/tdtp-bulk/pkg/source"
)

// Config represents the main configuration structure
type Config struct {
	Database  DatabaseConfig   `yaml:"database"`
	Import    ImportConfig     `yaml:"import,omitempty"`
	Retry     retry.Config     `yaml:"retry,omitempty"`
	ResultLog resultlog.Config `yaml:"result_log,omitempty"`
	Log       LogConfig        `yaml:"log,omitempty"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Type     string            `yaml:"type"`               // mysql, sqlite
	Host     string            `yaml:"host,omitempty"`     // For network databases
	Port     int               `yaml:"port,omitempty"`     // Database port
	Database string            `yaml:"database"`           // Database name or file path
	User     string            `yaml:"user,omitempty"`     // Username
	Password string            `yaml:"password,omitempty"` // Password
	Params   map[string]string `yaml:"params,omitempty"`   // Extra DSN parameters
	Timeout  time.Duration     `yaml:"timeout,omitempty"`  // Connect timeout
	MaxConns int               `yaml:"max_conns,omitempty"`
}

// ImportConfig contains defaults for the import flags
type ImportConfig struct {
	Strategy             string   `yaml:"strategy,omitempty"` // fail, ignore, replace
	KeyColumns           []string `yaml:"key_columns,omitempty"`
	UpdateColumns        []string `yaml:"update_columns,omitempty"`
	ForceSingleStatement bool     `yaml:"force_single_statement,omitempty"`
	MaxPacketSize        int      `yaml:"max_packet_size,omitempty"`
	SkipGeneratedIDs     bool     `yaml:"skip_generated_ids,omitempty"`
	NullLiteral          string   `yaml:"null_literal,omitempty"`
	Delimiter            string   `yaml:"delimiter,omitempty"`
	Sheet                string   `yaml:"sheet,omitempty"`
}

// LogConfig selects the log level and output format
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // console, json
}

// LoadConfig loads configuration from YAML file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig saves configuration to YAML file
func SaveConfig(filename string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the sections that can be checked without connecting.
func (c *Config) Validate() error {
	if !adapters.IsRegistered(c.Database.Type) {
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if _, err := adapters.ParseImportStrategy(c.Import.Strategy); err != nil {
		return err
	}
	if len([]rune(c.Import.Delimiter)) > 1 {
		return fmt.Errorf("import.delimiter must be a single character, got %q", c.Import.Delimiter)
	}
	if err := c.Retry.Validate(); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	if err := c.ResultLog.Validate(); err != nil {
		return err
	}
	return nil
}

// CreateSampleConfig creates sample configuration for different database types
func CreateSampleConfig(dbType string) *Config {
	config := &Config{
		Database: DatabaseConfig{
			Type: dbType,
		},
		Import: ImportConfig{
			Strategy:    string(adapters.StrategyFail),
			NullLiteral: "NULL",
		},
		Retry: retry.EnableRetry(3, time.Second),
		ResultLog: resultlog.Config{
			Enabled: false,
			Address: "localhost:6379",
			Name:    "tdtp-bulk",
			TTL:     24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}

	switch dbType {
	case "sqlite":
		config.Database.Database = "database.db"

	case "mysql":
		config.Database.Host = "localhost"
		config.Database.Port = 3306
		config.Database.Database = "mydb"
		config.Database.User = "root"
		config.Database.Password = "password"
		config.Database.Timeout = 10 * time.Second
	}

	return config
}

// BuildDSN constructs database connection string from config
func (c *DatabaseConfig) BuildDSN() string {
	switch c.Type {
	case "sqlite":
		return c.Database

	case "mysql":
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
		mc.DBName = c.Database
		mc.ParseTime = true
		// Take the packet limit from the server so that the driver accepts
		// every statement the importer builds.
		mc.MaxAllowedPacket = 0
		mc.Params = c.Params
		if c.Timeout > 0 {
			mc.Timeout = c.Timeout
		}
		return mc.FormatDSN()

	default:
		return ""
	}
}

// AdapterConfig builds the adapter configuration.
func (c *DatabaseConfig) AdapterConfig() adapters.Config {
	return adapters.Config{
		Type:     c.Type,
		DSN:      c.BuildDSN(),
		Timeout:  c.Timeout,
		MaxConns: c.MaxConns,
	}
}

// SourceOptions maps the import section onto reader options.
func (c *ImportConfig) SourceOptions() source.Options {
	opts := source.Options{
		Sheet:       c.Sheet,
		NullLiteral: c.NullLiteral,
	}
	if r := []rune(c.Delimiter); len(r) == 1 {
		opts.Delimiter = r[0]
	}
	return opts
}
