package circuitbreaker

import (
	"sync"
	"sync/atomic"
	"time"
)

// State represents the state of the circuit breaker
type State int

const (
	StateClosed   State = iota // normal operation, requests allowed
	StateHalfOpen              // probing whether the dependency recovered
	StateOpen                  // requests are rejected
)

// String returns a human readable state name
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// CircuitBreaker implements the circuit breaker pattern
type CircuitBreaker struct {
	state            int32
	failureThreshold int64
	resetTimeout     time.Duration
	halfOpenMaxCalls int64
	failureCount     int64
	halfOpenCalls    int64
	lastStateChange  time.Time
	mutex            sync.RWMutex
}

// Config configures a CircuitBreaker
type Config struct {
	FailureThreshold int64
	ResetTimeout     time.Duration
	HalfOpenMaxCalls int64
}

// New creates a new circuit breaker
func New(config Config) *CircuitBreaker {
	return &CircuitBreaker{
		state:            int32(StateClosed),
		failureThreshold: config.FailureThreshold,
		resetTimeout:     config.ResetTimeout,
		halfOpenMaxCalls: config.HalfOpenMaxCalls,
		lastStateChange:  time.Now(),
	}
}

// Allow checks if a request is allowed based on the circuit breaker state
func (cb *CircuitBreaker) Allow() bool {
	state := State(atomic.LoadInt32(&cb.state))

	switch state {
	case StateClosed:
		return true
	case StateOpen:
		cb.mutex.RLock()
		elapsed := time.Since(cb.lastStateChange)
		cb.mutex.RUnlock()

		if elapsed >= cb.resetTimeout {
			if atomic.CompareAndSwapInt32(&cb.state, int32(StateOpen), int32(StateHalfOpen)) {
				cb.mutex.Lock()
				cb.lastStateChange = time.Now()
				atomic.StoreInt64(&cb.halfOpenCalls, 0)
				cb.mutex.Unlock()
			}
			return cb.Allow()
		}
		return false
	case StateHalfOpen:
		calls := atomic.AddInt64(&cb.halfOpenCalls, 1)
		return calls <= cb.halfOpenMaxCalls
	default:
		return false
	}
}

// Success reports a successful operation
func (cb *CircuitBreaker) Success() {
	state := State(atomic.LoadInt32(&cb.state))

	switch state {
	case StateHalfOpen:
		if atomic.CompareAndSwapInt32(&cb.state, int32(StateHalfOpen), int32(StateClosed)) {
			cb.mutex.Lock()
			cb.lastStateChange = time.Now()
			atomic.StoreInt64(&cb.failureCount, 0)
			cb.mutex.Unlock()
		}
	case StateClosed:
		atomic.StoreInt64(&cb.failureCount, 0)
	}
}

// Failure reports a failed operation
func (cb *CircuitBreaker) Failure() {
	state := State(atomic.LoadInt32(&cb.state))

	if state == StateClosed {
		failureCount := atomic.AddInt64(&cb.failureCount, 1)

		if failureCount >= cb.failureThreshold {
			if atomic.CompareAndSwapInt32(&cb.state, int32(StateClosed), int32(StateOpen)) {
				cb.mutex.Lock()
				cb.lastStateChange = time.Now()
				cb.mutex.Unlock()
			}
		}
	} else if state == StateHalfOpen {
		if atomic.CompareAndSwapInt32(&cb.state, int32(StateHalfOpen), int32(StateOpen)) {
			cb.mutex.Lock()
			cb.lastStateChange = time.Now()
			cb.mutex.Unlock()
		}
	}
}

// GetState returns the current state of the circuit breaker
func (cb *CircuitBreaker) GetState() State {
	return State(atomic.LoadInt32(&cb.state))
}
