package ratelimit

import (
	"sync"
	"time"
)

// IPRateLimiter rate limits based on client IP addresses
type IPRateLimiter struct {
	limiters   map[string]*ipEntry
	mu         sync.Mutex
	maxTokens  float64
	refillRate float64
	maxIdle    time.Duration
	cleanup    *time.Ticker
	stopChan   chan struct{}
	stopOnce   sync.Once
}

type ipEntry struct {
	bucket   *TokenBucket
	lastSeen time.Time
}

// NewIPRateLimiter creates a new IPRateLimiter
func NewIPRateLimiter(maxTokens, refillRate float64) *IPRateLimiter {
	limiter := &IPRateLimiter{
		limiters:   make(map[string]*ipEntry),
		maxTokens:  maxTokens,
		refillRate: refillRate,
		maxIdle:    30 * time.Minute,
		cleanup:    time.NewTicker(10 * time.Minute),
		stopChan:   make(chan struct{}),
	}

	go limiter.cleanupLoop()

	return limiter
}

// Allow checks if a request from the given IP can proceed
func (ipl *IPRateLimiter) Allow(ip string) bool {
	return ipl.getBucket(ip).Allow()
}

// getBucket returns the token bucket for the given IP, creating one if needed
func (ipl *IPRateLimiter) getBucket(ip string) *TokenBucket {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	entry, exists := ipl.limiters[ip]

	if !exists {
		entry = &ipEntry{bucket: NewTokenBucket(ipl.maxTokens, ipl.refillRate)}
		ipl.limiters[ip] = entry
	}

	entry.lastSeen = time.Now()
	return entry.bucket
}

// cleanupLoop periodically removes idle limiters to bound memory
func (ipl *IPRateLimiter) cleanupLoop() {
	for {
		select {
		case <-ipl.cleanup.C:
			cutoff := time.Now().Add(-ipl.maxIdle)

			ipl.mu.Lock()
			for ip, entry := range ipl.limiters {
				if entry.lastSeen.Before(cutoff) {
					delete(ipl.limiters, ip)
				}
			}
			ipl.mu.Unlock()
		case <-ipl.stopChan:
			ipl.cleanup.Stop()
			return
		}
	}
}

// Stop stops the IP rate limiter's background cleanup
func (ipl *IPRateLimiter) Stop() {
	ipl.stopOnce.Do(func() {
		close(ipl.stopChan)
	})
}
