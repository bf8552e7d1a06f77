package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultPublishPolicy is tuned for the request path: a handful of short
// attempts, so a slow broker never holds a response for long.
func DefaultPublishPolicy(log *zap.Logger) Policy {
	return Policy{
		Name:     "auth_events_publish",
		Attempts: 3,
		Backoff:  ExpoJitter{Base: 50 * time.Millisecond, Max: 500 * time.Millisecond, Jitter: 0.2},
		Retryable: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("event publish retry", zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && !errors.Is(err, context.Canceled) {
				log.Error("event publish retries exhausted", zap.Error(err))
			}
		},
	}
}
