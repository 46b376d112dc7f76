package retry

import (
	"fmt"
	"time"
)

// BackoffStrategy - стратегия роста задержки между попытками
type BackoffStrategy string

const (
	BackoffConstant    BackoffStrategy = "constant"
	BackoffLinear      BackoffStrategy = "linear"
	BackoffExponential BackoffStrategy = "exponential"
)

// Config конфигурация retry механизма
type Config struct {
	Enabled bool `yaml:"enabled"`

	// MaxAttempts включает первую попытку. 0 - без ограничения
	MaxAttempts int `yaml:"max_attempts"`

	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`

	Backoff           BackoffStrategy `yaml:"backoff"`
	BackoffMultiplier float64         `yaml:"backoff_multiplier"`

	// Jitter случайно изменяет задержку в пределах ±Jitter от ее значения
	Jitter float64 `yaml:"jitter"`

	DLQ DLQConfig `yaml:"dlq"`

	// Retryable решает, стоит ли повторять попытку после ошибки.
	// nil - повторяем при любой ошибке
	Retryable func(error) bool `yaml:"-"`

	// OnRetry вызывается перед ожиданием следующей попытки
	OnRetry func(attempt int, err error, delay time.Duration) `yaml:"-"`
}

// DLQConfig конфигурация Dead Letter Queue (хранится в файле)
type DLQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	FilePath string `yaml:"file_path"`

	// MaxSize - при превышении удаляются самые старые записи. 0 - без ограничения
	MaxSize int `yaml:"max_size"`

	RetentionPeriod time.Duration `yaml:"retention_period"`
}

// Validate проверяет конфигурацию и заполняет множитель по умолчанию
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be >= 0, got %d", c.MaxAttempts)
	}
	if c.InitialDelay < 0 {
		return fmt.Errorf("initial_delay must be >= 0")
	}
	if c.MaxDelay < c.InitialDelay {
		return fmt.Errorf("max_delay (%v) must be >= initial_delay (%v)", c.MaxDelay, c.InitialDelay)
	}

	switch c.Backoff {
	case BackoffConstant, BackoffLinear, BackoffExponential:
	default:
		return fmt.Errorf("invalid backoff strategy: %q", c.Backoff)
	}

	if c.BackoffMultiplier <= 0 {
		c.BackoffMultiplier = 2.0
	}
	if c.Jitter < 0 || c.Jitter > 1.0 {
		return fmt.Errorf("jitter must be between 0.0 and 1.0, got %f", c.Jitter)
	}
	if c.DLQ.Enabled && c.DLQ.FilePath == "" {
		return fmt.Errorf("dlq.file_path is required when the dlq is enabled")
	}

	return nil
}

// DefaultConfig возвращает выключенную конфигурацию с разумными значениями
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       3,
		InitialDelay:      time.Second,
		MaxDelay:          30 * time.Second,
		Backoff:           BackoffExponential,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
		DLQ: DLQConfig{
			FilePath:        "./import-dlq.json",
			MaxSize:         10000,
			RetentionPeriod: 7 * 24 * time.Hour,
		},
	}
}

// EnableRetry возвращает включенную конфигурацию
func EnableRetry(maxAttempts int, initialDelay time.Duration) Config {
	config := DefaultConfig()
	config.Enabled = true
	config.MaxAttempts = maxAttempts
	config.InitialDelay = initialDelay
	return config
}
