package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func testConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
		ShouldRetry:  func(err error) bool { return errors.Is(err, errTransient) },
	}
}

func TestWithRetryForResult_SucceedsAfterRetry(t *testing.T) {
	var retried []int
	cfg := testConfig()
	cfg.OnRetry = func(attempt int, err error) { retried = append(retried, attempt) }

	got, err := WithRetryForResult(context.Background(), cfg, func(attempt int) (string, error) {
		if attempt == 0 {
			return "", errTransient
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, []int{1}, retried)
}

func TestWithRetryForResult_NonRetryableReturnsImmediately(t *testing.T) {
	calls := 0
	permanent := errors.New("permanent")

	_, err := WithRetryForResult(context.Background(), testConfig(), func(attempt int) (int, error) {
		calls++
		return 0, permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestWithRetryForResult_MaxAttemptsExceeded(t *testing.T) {
	calls := 0

	_, err := WithRetryForResult(context.Background(), testConfig(), func(attempt int) (int, error) {
		calls++
		return 0, errTransient
	})

	var maxErr *MaxRetriesExceededError
	require.ErrorAs(t, err, &maxErr)
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := testConfig()
	cfg.InitialDelay = time.Hour
	cfg.MaxDelay = time.Hour

	err := WithRetry(ctx, cfg, func(attempt int) error { return errTransient })

	var ctxErr *ContextCancelledError
	require.ErrorAs(t, err, &ctxErr)
	assert.ErrorIs(t, ctxErr.CtxErr, context.Canceled)
}
