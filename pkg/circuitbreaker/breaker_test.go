package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestBreaker(resetTimeout time.Duration) *CircuitBreaker {
	return New(Config{
		FailureThreshold: 3,
		ResetTimeout:     resetTimeout,
		HalfOpenMaxCalls: 2,
	})
}

func TestBreaker_StartsClosed(t *testing.T) {
	cb := newTestBreaker(time.Minute)

	assert.Equal(t, StateClosed, cb.GetState())
	assert.True(t, cb.Allow())
}

func TestBreaker_OpensAtFailureThreshold(t *testing.T) {
	cb := newTestBreaker(time.Minute)

	cb.Failure()
	cb.Failure()
	assert.Equal(t, StateClosed, cb.GetState())

	cb.Failure()
	assert.Equal(t, StateOpen, cb.GetState())
	assert.False(t, cb.Allow())
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := newTestBreaker(time.Minute)

	cb.Failure()
	cb.Failure()
	cb.Success()

	cb.Failure()
	cb.Failure()
	assert.Equal(t, StateClosed, cb.GetState(), "success resets the consecutive failure count")
}

func TestBreaker_HalfOpenAfterResetTimeout(t *testing.T) {
	cb := newTestBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		cb.Failure()
	}
	assert.Equal(t, StateOpen, cb.GetState())

	time.Sleep(20 * time.Millisecond)

	assert.True(t, cb.Allow(), "first probe after the reset timeout is allowed")
	assert.Equal(t, StateHalfOpen, cb.GetState())
}

func TestBreaker_HalfOpenLimitsProbeCalls(t *testing.T) {
	cb := newTestBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		cb.Failure()
	}

	time.Sleep(20 * time.Millisecond)

	assert.True(t, cb.Allow())
	assert.True(t, cb.Allow())
	assert.False(t, cb.Allow(), "probes beyond HalfOpenMaxCalls are rejected")
}

func TestBreaker_HalfOpenSuccessCloses(t *testing.T) {
	cb := newTestBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		cb.Failure()
	}

	time.Sleep(20 * time.Millisecond)

	assert.True(t, cb.Allow())
	cb.Success()

	assert.Equal(t, StateClosed, cb.GetState())
	assert.True(t, cb.Allow())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := newTestBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		cb.Failure()
	}

	time.Sleep(20 * time.Millisecond)

	assert.True(t, cb.Allow())
	cb.Failure()

	assert.Equal(t, StateOpen, cb.GetState())
	assert.False(t, cb.Allow())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
}
