package embed

import (
	"context"

	"golang.org/x/time/rate"
)

// LimitedClient wraps a Client behind a token bucket so outbound request rate
// is bounded independently of batch size and inter-batch delay. The pipeline
// still processes entities sequentially; the limiter is the hard guarantee
// against exceeding provider throughput limits.
type LimitedClient struct {
	inner   Client
	limiter *rate.Limiter
}

// NewLimitedClient wraps inner with limiter. A nil limiter means no limiting.
func NewLimitedClient(inner Client, limiter *rate.Limiter) *LimitedClient {
	return &LimitedClient{inner: inner, limiter: limiter}
}

// CreateEmbedding waits for a token, then delegates to the wrapped client.
func (c *LimitedClient) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	return c.inner.CreateEmbedding(ctx, input)
}
