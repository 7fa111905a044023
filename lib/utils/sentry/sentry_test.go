package sentry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeFields(t *testing.T) {
	tags, extras := scopeFields(map[string]any{
		"run_id":        "3f2c",
		"membership_id": "4611686018467284386",
		"activity_hash": uint32(1234),
		"page":          2,
	})

	assert.Equal(t, map[string]string{
		"run_id":        "3f2c",
		"membership_id": "4611686018467284386",
		"activity_hash": "1234",
	}, tags)
	assert.Equal(t, map[string]any{"page": 2}, extras)
}

func TestCaptureError_NoopWhenNotInitialized(t *testing.T) {
	assert.NotPanics(t, func() {
		CaptureError("error", "REFRESH_FAILED", assert.AnError, nil)
		Flush()
	})
}
