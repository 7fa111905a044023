package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// MaxRetriesExceededError indicates that the maximum number of retry attempts has been exceeded
type MaxRetriesExceededError struct {
	MaxAttempts int
	LastError   error
}

func (e *MaxRetriesExceededError) Error() string {
	if e.LastError != nil {
		// LastError is already wrapped with context, so just return it
		return e.LastError.Error()
	}
	return fmt.Sprintf("max retry attempts exceeded (%d attempts)", e.MaxAttempts)
}

func (e *MaxRetriesExceededError) Unwrap() error {
	return e.LastError
}

// ContextCancelledError indicates that the context was cancelled during a retry
type ContextCancelledError struct {
	CtxErr    error
	LastError error
}

func (e *ContextCancelledError) Error() string {
	msg := "context cancelled during retry: " + e.CtxErr.Error()
	if e.LastError != nil {
		msg += ", last error: " + e.LastError.Error()
	}
	return msg
}

func (e *ContextCancelledError) Unwrap() error {
	if e.LastError != nil {
		return e.LastError
	}
	return e.CtxErr
}

// RetryConfig configures retry behavior
type RetryConfig struct {
	// MaxAttempts is the maximum number of retries after the first call
	MaxAttempts int
	// InitialDelay is the delay before the first retry
	InitialDelay time.Duration
	// MaxDelay caps the retry delay
	MaxDelay time.Duration
	// Multiplier increases delay after each retry
	Multiplier float64
	// Jitter adds ±Jitter percentage of random variation to each delay
	Jitter float64
	// OnRetry is an optional callback called before each retry attempt
	OnRetry func(attempt int, err error)
	// ShouldRetry determines if an error should be retried. A nil func never retries.
	ShouldRetry func(err error) bool
}

// WithRetry executes a function with automatic retry logic
func WithRetry(ctx context.Context, config RetryConfig, fn func(attempt int) error) error {
	_, err := WithRetryForResult(ctx, config, func(attempt int) (struct{}, error) {
		return struct{}{}, fn(attempt)
	})
	return err
}

// WithRetryForResult executes a function that returns a result and error,
// automatically retrying on errors that match the config's ShouldRetry function
func WithRetryForResult[T any](ctx context.Context, config RetryConfig, fn func(attempt int) (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		result, err := fn(attempt)
		if err == nil {
			return result, nil
		}

		if config.ShouldRetry == nil || !config.ShouldRetry(err) {
			return result, err
		}

		if attempt >= config.MaxAttempts {
			// Wrap the error with fmt.Errorf to preserve the original chain
			wrappedErr := fmt.Errorf("max retry attempts exceeded (%d attempts): %w", config.MaxAttempts, err)
			return zero, &MaxRetriesExceededError{
				MaxAttempts: config.MaxAttempts,
				LastError:   wrappedErr,
			}
		}

		if config.OnRetry != nil {
			config.OnRetry(attempt+1, err)
		}

		delay := calculateDelayWithJitter(config.InitialDelay, config.Multiplier, config.Jitter, attempt)
		if config.MaxDelay > 0 && delay > config.MaxDelay {
			delay = config.MaxDelay
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			wrappedErr := fmt.Errorf("context cancelled during retry: %w", err)
			return zero, &ContextCancelledError{
				CtxErr:    ctx.Err(),
				LastError: wrappedErr,
			}
		case <-timer.C:
		}
	}
}

// calculateDelayWithJitter computes exponential backoff delay with jitter
// For attempt=0, returns initial delay. For attempt=n, returns initial * multiplier^n
func calculateDelayWithJitter(initial time.Duration, multiplier float64, jitter float64, attempt int) time.Duration {
	baseDelay := float64(initial) * math.Pow(multiplier, float64(attempt))

	if jitter > 0 {
		jitterAmount := (rand.Float64()*2 - 1) * jitter // Range: [-jitter, +jitter]
		baseDelay = baseDelay * (1 + jitterAmount)
	}

	return time.Duration(baseDelay)
}
