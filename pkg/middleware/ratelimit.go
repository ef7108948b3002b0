package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/printhub/realtime-api/pkg/logger"
	"github.com/printhub/realtime-api/pkg/ratelimit"
)

// RateLimiterMiddleware applies rate limiting to incoming requests
type RateLimiterMiddleware struct {
	globalLimiter     *ratelimit.TokenBucket
	ipLimiter         *ratelimit.IPRateLimiter
	logger            logger.Logger
	trustForwardedFor bool
}

// RateLimiterConfig configures the rate limiter middleware
type RateLimiterConfig struct {
	GlobalMaxTokens   float64
	GlobalRefillRate  float64
	IPMaxTokens       float64
	IPRefillRate      float64
	TrustForwardedFor bool
}

// NewRateLimiterMiddleware creates a new rate limiter middleware
func NewRateLimiterMiddleware(cfg *RateLimiterConfig, logger logger.Logger) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		globalLimiter:     ratelimit.NewTokenBucket(cfg.GlobalMaxTokens, cfg.GlobalRefillRate),
		ipLimiter:         ratelimit.NewIPRateLimiter(cfg.IPMaxTokens, cfg.IPRefillRate),
		logger:            logger,
		trustForwardedFor: cfg.TrustForwardedFor,
	}
}

// Middleware returns a middleware function
func (m *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.globalLimiter.Allow() {
			m.logger.Warn("Global rate limit exceeded", "method", r.Method, "path", r.URL.Path)

			w.Header().Set("Retry-After", "10")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("Rate limit exceeded. Please try again later."))
			return
		}

		ip := m.getClientIP(r)

		if !m.ipLimiter.Allow(ip) {
			m.logger.Warn("IP rate limit exceeded", "method", r.Method, "path", r.URL.Path, "ip", ip)

			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("Rate limit exceeded. Please try again later."))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Stop stops the background state of the middleware's limiters
func (m *RateLimiterMiddleware) Stop() {
	m.ipLimiter.Stop()
}

// getClientIP extracts the client IP from the request
func (m *RateLimiterMiddleware) getClientIP(r *http.Request) string {
	if m.trustForwardedFor {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			// First address in the chain is the originating client
			parts := strings.Split(forwarded, ",")
			return strings.TrimSpace(parts[0])
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
