package bungie

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindNetwork ErrorKind = iota
	KindDeserialize
	KindBungie
	KindResponseMissing
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindDeserialize:
		return "deserialize"
	case KindBungie:
		return "bungie_error"
	case KindResponseMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// ResponseError is returned by every Client request that does not produce a payload.
type ResponseError struct {
	Kind ErrorKind

	// KindDeserialize
	StatusCode int

	// KindBungie
	ErrorCode       int
	ErrorStatus     string
	Message         string
	ThrottleSeconds int

	// KindNetwork and KindDeserialize
	Err error
}

func (e *ResponseError) Error() string {
	switch e.Kind {
	case KindDeserialize:
		return fmt.Sprintf("Failed to parse response (code %d): %v", e.StatusCode, e.Err)
	case KindBungie:
		if e.ThrottleSeconds > 0 {
			return fmt.Sprintf("%s (%d), throttled! (%ds)", e.Message, e.ErrorCode, e.ThrottleSeconds)
		}
		return fmt.Sprintf("%s (%d)", e.Message, e.ErrorCode)
	case KindResponseMissing:
		return "Response object missing"
	default:
		if e.Err == nil {
			return "network error"
		}
		return e.Err.Error()
	}
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

// IsResponseMissing reports whether err is a success envelope without a payload.
func IsResponseMissing(err error) bool {
	var respErr *ResponseError
	return errors.As(err, &respErr) && respErr.Kind == KindResponseMissing
}

// IsBungieError reports whether err carries the given Bungie error code.
func IsBungieError(err error, code int) bool {
	var respErr *ResponseError
	return errors.As(err, &respErr) && respErr.Kind == KindBungie && respErr.ErrorCode == code
}

func errorKind(err error) ErrorKind {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.Kind
	}
	return KindNetwork
}
