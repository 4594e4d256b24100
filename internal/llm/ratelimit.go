package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedClient decorates a Client with a token-bucket limiter so bursts
// of pipeline activity cannot exceed the provider's request quota.
type RateLimitedClient struct {
	inner   Client
	limiter *rate.Limiter
}

// NewRateLimitedClient wraps inner with a limiter allowing requestsPerMinute
// sustained requests and a burst of one.
func NewRateLimitedClient(inner Client, requestsPerMinute int) *RateLimitedClient {
	interval := time.Minute / time.Duration(requestsPerMinute)
	return &RateLimitedClient{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// GenerateResponse blocks until the limiter admits the request, then
// delegates. Waiting is aborted when ctx expires.
func (c *RateLimitedClient) GenerateResponse(ctx context.Context, req GenerationRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return c.inner.GenerateResponse(ctx, req)
}
