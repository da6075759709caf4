package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitedProvider wraps a Provider with a token bucket that allows at
// most rpm model calls per minute across all sessions.
type RateLimitedProvider struct {
	provider Provider
	rpm      int
	poll     time.Duration

	mu       sync.Mutex
	tokens   int
	lastFill time.Time
}

// NewRateLimitedProvider wraps provider. An rpm of zero or less disables
// limiting and returns provider unchanged.
func NewRateLimitedProvider(provider Provider, rpm int) Provider {
	if rpm <= 0 {
		return provider
	}
	return &RateLimitedProvider{
		provider: provider,
		rpm:      rpm,
		poll:     100 * time.Millisecond,
		tokens:   rpm,
		lastFill: time.Now(),
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

func (r *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.provider.Complete(ctx, req)
}

func (r *RateLimitedProvider) take() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if refill := int(now.Sub(r.lastFill).Seconds() * float64(r.rpm) / 60.0); refill > 0 {
		r.tokens = min(r.tokens+refill, r.rpm)
		r.lastFill = now
	}
	if r.tokens == 0 {
		return false
	}
	r.tokens--
	return true
}

func (r *RateLimitedProvider) wait(ctx context.Context) error {
	for !r.take() {
		if err := sleepCtx(ctx, r.poll); err != nil {
			return err
		}
	}
	return nil
}
