package network

import (
	"maps"
	"time"

	"threepole/lib/utils/logging"
	"threepole/lib/utils/retry"
)

// TransientNetworkErrorRetryConfig retries timeouts and connection errors a
// few times within a single request. Anything else surfaces to the caller.
func TransientNetworkErrorRetryConfig(logger logging.Logger, loggingFields map[string]any) retry.RetryConfig {
	return retry.RetryConfig{
		MaxAttempts:  2,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
		OnRetry: func(attempt int, err error) {
			fields := map[string]any{
				logging.ATTEMPT: attempt,
				logging.TYPE:    string(CategorizeNetworkError(err).Type),
			}
			maps.Copy(fields, loggingFields)
			logger.Warn("TRANSIENT_NETWORK_ERROR", err, fields)
		},
		ShouldRetry: ShouldRetry,
	}
}
