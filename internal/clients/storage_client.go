package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/printhub/realtime-api/pkg/circuitbreaker"
	"github.com/printhub/realtime-api/pkg/errors"
	"github.com/printhub/realtime-api/pkg/logger"
	"github.com/printhub/realtime-api/pkg/retry"
)

// StorageClient talks to the blob store holding uploaded order files. The
// store itself is an opaque collaborator; this client only verifies that a
// storage path refers to an object that actually exists.
type StorageClient struct {
	baseURL     string
	httpClient  *http.Client
	logger      logger.Logger
	retryConfig *retry.RetryConfig
	breaker     *circuitbreaker.CircuitBreaker
}

// NewStorageClient creates a new StorageClient instance
func NewStorageClient(baseURL string, logger logger.Logger) *StorageClient {
	httpClient := &http.Client{
		Timeout: 5 * time.Second,
	}

	retryConfig := &retry.RetryConfig{
		MaxAttempts: 3,
		BackoffStrategy: &retry.ExponentialBackoff{
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      1.5,
			JitterFactor:    0.2,
		},
		Logger: logger,
		RetryableErrors: []error{
			errors.ErrTimeout,
			errors.ErrTemporaryFailure,
		},
	}

	breaker := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
		HalfOpenMaxCalls: 2,
	})

	return &StorageClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
		logger:      logger,
		retryConfig: retryConfig,
		breaker:     breaker,
	}
}

// VerifyObject checks that the object at storagePath exists in the blob store.
// A missing object is a validation failure; an unreachable store is a
// temporary failure and never results in a partial write upstream.
func (c *StorageClient) VerifyObject(ctx context.Context, storagePath string) error {
	if !c.breaker.Allow() {
		c.logger.Warn("Storage circuit breaker open, rejecting verification", "path", storagePath)
		return errors.NewTemporaryError("storage service unavailable")
	}

	err := retry.Retry(ctx, func() error {
		return c.headObject(ctx, storagePath)
	}, c.retryConfig)

	if err != nil {
		if errors.IsRetryable(err) {
			c.breaker.Failure()
		}
		return err
	}

	c.breaker.Success()
	return nil
}

// headObject performs a single HEAD request against the blob store
func (c *StorageClient) headObject(ctx context.Context, storagePath string) error {
	endpoint := c.baseURL + "/" + url.PathEscape(strings.TrimLeft(storagePath, "/"))

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)

	if err != nil {
		return fmt.Errorf("failed to build storage request: %w", err)
	}

	resp, err := c.httpClient.Do(req)

	if err != nil {
		c.logger.Warn("Storage request failed", "error", err, "path", storagePath)
		return errors.NewTemporaryError("storage request failed: " + err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return errors.NewValidationError("uploaded file not found in storage: " + storagePath)
	case resp.StatusCode >= 500:
		return errors.NewTemporaryError(fmt.Sprintf("storage returned status %d", resp.StatusCode))
	default:
		return errors.NewValidationError(fmt.Sprintf("storage rejected %s with status %d", storagePath, resp.StatusCode))
	}
}
