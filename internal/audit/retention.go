package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweep deletes entries older than retention, once at start and then on
// every interval, until ctx is done. A zero retention disables it.
func (s *Store) Sweep(ctx context.Context, retention, interval time.Duration, logger *zap.Logger) error {
	if retention <= 0 {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sweep := func() {
		n, err := s.DeleteBefore(ctx, time.Now().Add(-retention))
		switch {
		case err != nil && ctx.Err() == nil:
			logger.Warn("audit retention sweep failed", zap.Error(err))
		case n > 0:
			logger.Info("deleted expired audit entries", zap.Int64("deleted", n), zap.Duration("retention", retention))
		}
	}

	sweep()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sweep()
		}
	}
}
