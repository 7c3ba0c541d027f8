package embed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rareminds/skillhub/internal/apperrors"
)

// Retry defaults. With these values a permanently throttling provider sees
// five attempts separated by 1s, 2s, 4s and 8s waits.
const (
	DefaultMaxRetries        = 4
	DefaultInitialBackoff    = 1 * time.Second
	DefaultBackoffMultiplier = 2
)

// RetryClient wraps a Client and retries rate-limited calls with exponential
// backoff. Any failure that is not classified as throttling is returned
// immediately; the retry budget exists only for the provider telling us to
// slow down.
type RetryClient struct {
	inner      Client
	maxRetries int
	initial    time.Duration
	multiplier int
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *slog.Logger
}

// RetryOption configures a RetryClient.
type RetryOption func(*RetryClient)

// WithMaxRetries sets how many retries follow the initial attempt.
func WithMaxRetries(n int) RetryOption {
	return func(c *RetryClient) {
		c.maxRetries = n
	}
}

// WithInitialBackoff sets the delay before the first retry.
func WithInitialBackoff(d time.Duration) RetryOption {
	return func(c *RetryClient) {
		c.initial = d
	}
}

// WithBackoffMultiplier sets the factor applied to the delay after every retry.
func WithBackoffMultiplier(m int) RetryOption {
	return func(c *RetryClient) {
		c.multiplier = m
	}
}

// WithRetryLogger sets the logger used for backoff warnings.
func WithRetryLogger(logger *slog.Logger) RetryOption {
	return func(c *RetryClient) {
		c.logger = logger
	}
}

// withSleep replaces the backoff sleep. Tests use it to record delays.
func withSleep(sleep func(ctx context.Context, d time.Duration) error) RetryOption {
	return func(c *RetryClient) {
		c.sleep = sleep
	}
}

// NewRetryClient wraps inner with rate-limit-aware retries.
func NewRetryClient(inner Client, opts ...RetryOption) *RetryClient {
	c := &RetryClient{
		inner:      inner,
		maxRetries: DefaultMaxRetries,
		initial:    DefaultInitialBackoff,
		multiplier: DefaultBackoffMultiplier,
		sleep:      sleepCtx,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.maxRetries < 0 {
		c.maxRetries = 0
	}

	if c.multiplier < 1 {
		c.multiplier = 1
	}

	return c
}

// CreateEmbedding calls the wrapped client, retrying up to maxRetries times
// when the failure is classified as throttling. Total attempts = maxRetries+1.
func (c *RetryClient) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	delay := c.initial

	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		vec, err := c.inner.CreateEmbedding(ctx, input)
		if err == nil {
			return vec, nil
		}

		if !apperrors.IsRateLimited(err) {
			return nil, err
		}

		lastErr = err

		if attempt == c.maxRetries {
			break
		}

		c.logger.Warn("embedding provider throttled, backing off",
			"attempt", attempt+1,
			"max_attempts", c.maxRetries+1,
			"delay", delay,
		)

		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}

		delay *= time.Duration(c.multiplier)
	}

	return nil, fmt.Errorf("embedding retries exhausted after %d attempts: %w", c.maxRetries+1, lastErr)
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
