package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_UnwrapsToSentinel(t *testing.T) {
	err := NewInvalidTransitionError("cannot move from new to ready")

	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, "cannot move from new to ready", err.Error())
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: NewValidationError("bad input"), want: http.StatusBadRequest},
		{name: "not_found", err: NewNotFoundError("gone"), want: http.StatusNotFound},
		{name: "invalid_transition", err: NewInvalidTransitionError("no"), want: http.StatusConflict},
		{name: "terminal", err: NewOrderTerminalError("done"), want: http.StatusConflict},
		{name: "persistence", err: NewPersistenceError("db down"), want: http.StatusInternalServerError},
		{name: "rate_limited", err: NewRateLimitedError("slow down"), want: http.StatusTooManyRequests},
		{name: "bare_sentinel", err: ErrEmptyMessage, want: http.StatusBadRequest},
		{name: "wrapped_sentinel", err: fmt.Errorf("send failed: %w", ErrTimeout), want: http.StatusGatewayTimeout},
		{name: "unknown", err: errors.New("mystery"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewTemporaryError("blip")))
	assert.True(t, IsRetryable(NewPersistenceError("db down")))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", ErrTimeout)))
	assert.False(t, IsRetryable(NewValidationError("bad input")))
	assert.False(t, IsRetryable(errors.New("mystery")))
}

func TestWithContext(t *testing.T) {
	err := NewNotFoundError("order not found").WithContext("orderID", "wi-1a2b3c4d")

	assert.Equal(t, "wi-1a2b3c4d", err.Context["orderID"])
}
