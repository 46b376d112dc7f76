package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// ErrMaxAttempts оборачивает последнюю ошибку, когда попытки исчерпаны
var ErrMaxAttempts = errors.New("max retry attempts exceeded")

// RetryableFunc - одна попытка операции
type RetryableFunc func(ctx context.Context) error

// Retryer выполняет retry логику до успеха, неповторяемой ошибки
// или исчерпания попыток
type Retryer struct {
	config Config
	dlq    *DLQ
}

// NewRetryer проверяет конфигурацию и открывает DLQ если он включен
func NewRetryer(config Config) (*Retryer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}

	r := &Retryer{config: config}
	if config.Enabled && config.DLQ.Enabled {
		dlq, err := NewDLQ(config.DLQ)
		if err != nil {
			return nil, fmt.Errorf("failed to open DLQ: %w", err)
		}
		r.dlq = dlq
	}
	return r, nil
}

// Do выполняет функцию с retry
func (r *Retryer) Do(ctx context.Context, fn RetryableFunc) error {
	return r.DoWithData(ctx, fn, nil)
}

// DoWithData выполняет функцию с retry и сохраняет данные в DLQ
// вместе с последней ошибкой, если попытки исчерпаны
func (r *Retryer) DoWithData(ctx context.Context, fn RetryableFunc, data any) error {
	if !r.config.Enabled {
		return fn(ctx)
	}

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !r.retryable(err) {
			return err
		}

		if r.config.MaxAttempts > 0 && attempt >= r.config.MaxAttempts {
			r.deadLetter(attempt, err, data)
			return fmt.Errorf("%w (%d): %w", ErrMaxAttempts, r.config.MaxAttempts, err)
		}

		delay := r.delay(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled after %d attempts: %w", attempt, errors.Join(ctx.Err(), err))
		}
	}
}

func (r *Retryer) deadLetter(attempts int, err error, data any) {
	if r.dlq == nil || data == nil {
		return
	}
	// Ошибка записи в DLQ не должна скрывать ошибку импорта
	_ = r.dlq.Add(DLQEntry{
		Timestamp:   time.Now(),
		Attempts:    attempts,
		LastError:   err.Error(),
		FailureType: "max_attempts_exceeded",
		Data:        data,
	})
}

// delay вычисляет задержку перед попыткой attempt+1
func (r *Retryer) delay(attempt int) time.Duration {
	var delay time.Duration

	switch r.config.Backoff {
	case BackoffLinear:
		delay = r.config.InitialDelay * time.Duration(attempt)
	case BackoffExponential:
		multiplier := math.Pow(r.config.BackoffMultiplier, float64(attempt-1))
		delay = time.Duration(float64(r.config.InitialDelay) * multiplier)
	default:
		delay = r.config.InitialDelay
	}

	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}

	if r.config.Jitter > 0 {
		delay += time.Duration(float64(delay) * r.config.Jitter * (rand.Float64()*2 - 1))
		if delay < 0 {
			delay = r.config.InitialDelay
		}
	}

	return delay
}

func (r *Retryer) retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if r.config.Retryable == nil {
		return true
	}
	return r.config.Retryable(err)
}

// DLQ возвращает dead letter queue или nil, если DLQ отключен
func (r *Retryer) DLQ() *DLQ {
	return r.dlq
}

// Close сохраняет DLQ на диск
func (r *Retryer) Close() error {
	if r.dlq != nil {
		return r.dlq.Save()
	}
	return nil
}
