package retry

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("deadlock found")

func fastConfig(maxAttempts int) Config {
	config := EnableRetry(maxAttempts, time.Millisecond)
	config.MaxDelay = 5 * time.Millisecond
	config.Jitter = 0
	return config
}

func TestRetryer_SuccessFirstAttempt(t *testing.T) {
	r, err := NewRetryer(fastConfig(3))
	require.NoError(t, err)

	attempts := 0
	err = r.Do(context.Background(), func(context.Context) error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryer_SuccessAfterRetries(t *testing.T) {
	config := fastConfig(5)
	var delays []time.Duration
	config.OnRetry = func(attempt int, err error, delay time.Duration) {
		delays = append(delays, delay)
	}
	r, err := NewRetryer(config)
	require.NoError(t, err)

	attempts := 0
	err = r.Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTransient
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, delays)
}

func TestRetryer_MaxAttemptsExceeded(t *testing.T) {
	r, err := NewRetryer(fastConfig(3))
	require.NoError(t, err)

	attempts := 0
	err = r.Do(context.Background(), func(context.Context) error {
		attempts++
		return errTransient
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.ErrorIs(t, err, ErrMaxAttempts)
	assert.ErrorIs(t, err, errTransient)
}

func TestRetryer_ClassifierStopsPermanentErrors(t *testing.T) {
	permanent := errors.New("duplicate entry")
	config := fastConfig(5)
	config.Retryable = func(err error) bool { return errors.Is(err, errTransient) }
	r, err := NewRetryer(config)
	require.NoError(t, err)

	attempts := 0
	err = r.Do(context.Background(), func(context.Context) error {
		attempts++
		return permanent
	})
	assert.Same(t, permanent, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryer_Disabled(t *testing.T) {
	r, err := NewRetryer(DefaultConfig())
	require.NoError(t, err)

	attempts := 0
	err = r.Do(context.Background(), func(context.Context) error {
		attempts++
		return errTransient
	})
	assert.Same(t, errTransient, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryer_ContextCancelled(t *testing.T) {
	config := fastConfig(0)
	config.InitialDelay = time.Hour
	config.MaxDelay = time.Hour
	r, err := NewRetryer(config)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err = r.Do(ctx, func(context.Context) error {
		attempts++
		cancel()
		return errTransient
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, attempts)
}

func TestRetryer_Delays(t *testing.T) {
	tests := []struct {
		backoff BackoffStrategy
		want    []time.Duration
	}{
		{BackoffConstant, []time.Duration{100, 100, 100, 100}},
		{BackoffLinear, []time.Duration{100, 200, 300, 400}},
		{BackoffExponential, []time.Duration{100, 200, 400, 500}},
	}

	for _, tt := range tests {
		t.Run(string(tt.backoff), func(t *testing.T) {
			config := EnableRetry(5, 100)
			config.MaxDelay = 500
			config.Jitter = 0
			config.Backoff = tt.backoff
			r, err := NewRetryer(config)
			require.NoError(t, err)

			for i, want := range tt.want {
				assert.Equal(t, want, r.delay(i+1), "attempt %d", i+1)
			}
		})
	}
}

func TestRetryer_JitterStaysInRange(t *testing.T) {
	config := EnableRetry(3, 100*time.Millisecond)
	config.Backoff = BackoffConstant
	config.Jitter = 0.5
	r, err := NewRetryer(config)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		d := r.delay(1)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestRetryer_DeadLettersExhaustedImports(t *testing.T) {
	config := fastConfig(2)
	config.DLQ.Enabled = true
	config.DLQ.FilePath = filepath.Join(t.TempDir(), "dlq.json")
	r, err := NewRetryer(config)
	require.NoError(t, err)
	defer r.Close()

	data := map[string]any{"table": "users", "rows": 3}
	err = r.DoWithData(context.Background(), func(context.Context) error { return errTransient }, data)
	require.Error(t, err)

	entries := r.DLQ().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Attempts)
	assert.Equal(t, "max_attempts_exceeded", entries[0].FailureType)
	assert.Equal(t, errTransient.Error(), entries[0].LastError)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative attempts", func(c *Config) { c.MaxAttempts = -1 }},
		{"negative delay", func(c *Config) { c.InitialDelay = -1 }},
		{"max below initial", func(c *Config) { c.MaxDelay = c.InitialDelay / 2 }},
		{"unknown backoff", func(c *Config) { c.Backoff = "fibonacci" }},
		{"jitter above one", func(c *Config) { c.Jitter = 1.5 }},
		{"dlq without path", func(c *Config) { c.DLQ.Enabled = true; c.DLQ.FilePath = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := EnableRetry(3, time.Second)
			tt.modify(&config)
			assert.Error(t, config.Validate())
		})
	}

	config := EnableRetry(3, time.Second)
	config.BackoffMultiplier = 0
	require.NoError(t, config.Validate())
	assert.Equal(t, 2.0, config.BackoffMultiplier)

	disabled := Config{MaxAttempts: -1}
	assert.NoError(t, disabled.Validate())
}
