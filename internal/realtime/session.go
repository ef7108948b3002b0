package realtime

import (
	"sync"

	"github.com/printhub/realtime-api/internal/models"
)

// sendBufferSize bounds how many undelivered events a session may queue before
// further events are dropped for that session only.
const sendBufferSize = 64

// Session is an opaque handle for one connected realtime client. It is valid
// from connect until disconnect and never persisted.
type Session struct {
	ID string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession creates a new session handle
func NewSession() *Session {
	return &Session{
		ID:   models.GenerateID("sess"),
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// TrySend queues data for delivery without blocking. It returns false when the
// session's buffer is full or the session is closed; the event is dropped for
// this recipient only.
func (s *Session) TrySend(data []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

// Outbound returns the channel the transport's write loop drains
func (s *Session) Outbound() <-chan []byte {
	return s.send
}

// Close marks the session as disconnected. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// Done is closed when the session has been closed
func (s *Session) Done() <-chan struct{} {
	return s.done
}
