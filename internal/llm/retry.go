package llm

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// RetryingProvider retries failed calls with exponential backoff. The
// first retry waits baseDelay and each later one doubles it; there is no
// wait before the first attempt or after the last.
type RetryingProvider struct {
	next      Provider
	attempts  int
	baseDelay time.Duration
	logger    *zap.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewRetryingProvider wraps next so that each call is attempted up to
// attempts times.
func NewRetryingProvider(next Provider, attempts int, baseDelay time.Duration, logger *zap.Logger) *RetryingProvider {
	if attempts < 1 {
		attempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingProvider{
		next:      next,
		attempts:  attempts,
		baseDelay: baseDelay,
		logger:    logger,
		sleep:     sleepCtx,
	}
}

func (r *RetryingProvider) Name() string {
	return r.next.Name()
}

func (r *RetryingProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var errs []error
	for i := 0; i < r.attempts; i++ {
		if i > 0 {
			delay := r.baseDelay * time.Duration(1<<(i-1))
			if err := r.sleep(ctx, delay); err != nil {
				errs = append(errs, err)
				break
			}
		}

		resp, err := r.next.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		// A missing credential will not fix itself.
		if errors.Is(err, ErrNotConfigured) {
			return nil, err
		}
		errs = append(errs, err)
		r.logger.Warn("model call failed",
			zap.String("provider", r.next.Name()),
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", r.attempts),
			zap.Error(err),
		)
	}
	return nil, &RetryError{Attempts: errs}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
