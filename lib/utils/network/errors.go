package network

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// NetworkError represents categorized network errors
type NetworkError struct {
	Type    NetworkErrorType
	Message string
	Err     error
}

type NetworkErrorType string

const (
	ErrorTypeTimeout    NetworkErrorType = "timeout"
	ErrorTypeConnection NetworkErrorType = "connection"
	ErrorTypeUnknown    NetworkErrorType = "unknown"
)

var connectionErrnos = []error{
	syscall.ECONNREFUSED,
	syscall.ECONNRESET,
	syscall.ECONNABORTED,
	syscall.EPIPE,
	syscall.ENETUNREACH,
	syscall.EHOSTUNREACH,
}

var connectionMessages = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"connection closed",
	"broken pipe",
	"network is unreachable",
	"eof",
}

// CategorizeNetworkError analyzes an error and returns a NetworkError with appropriate category
func CategorizeNetworkError(err error) *NetworkError {
	if err == nil {
		return nil
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &NetworkError{Type: ErrorTypeTimeout, Message: "Request timed out", Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &NetworkError{Type: ErrorTypeConnection, Message: "Connection error", Err: err}
	}
	for _, errno := range connectionErrnos {
		if errors.Is(err, errno) {
			return &NetworkError{Type: ErrorTypeConnection, Message: "Connection error", Err: err}
		}
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return &NetworkError{Type: ErrorTypeTimeout, Message: "Request timed out", Err: err}
	}
	for _, msg := range connectionMessages {
		if strings.Contains(errStr, msg) {
			return &NetworkError{Type: ErrorTypeConnection, Message: "Connection error", Err: err}
		}
	}

	return &NetworkError{Type: ErrorTypeUnknown, Message: "Network error", Err: err}
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	netErr := CategorizeNetworkError(err)
	return netErr != nil && netErr.Type == ErrorTypeTimeout
}

// IsConnectionError checks if an error is a connection error
func IsConnectionError(err error) bool {
	netErr := CategorizeNetworkError(err)
	return netErr != nil && netErr.Type == ErrorTypeConnection
}

// ShouldRetry determines if an error is retryable.
// Cancellation is never retried; timeouts and connection errors are.
func ShouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	netErr := CategorizeNetworkError(err)
	return netErr != nil && (netErr.Type == ErrorTypeTimeout || netErr.Type == ErrorTypeConnection)
}

// Unwrap implements the unwrap interface for error wrapping
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}
