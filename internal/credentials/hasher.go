package credentials

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

var hashDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "credentials_bcrypt_duration_seconds",
	Help:    "Time spent in bcrypt, by operation.",
	Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
}, []string{"op"})

type HasherConfig struct {
	Cost int
	// Workers bounds concurrent bcrypt runs; 0 means runtime.NumCPU().
	Workers int
}

// Hasher wraps bcrypt. Hashing is deliberately slow, so calls are admitted
// through a weighted semaphore and give up when the caller's context ends.
type Hasher struct {
	cost int
	sem  *semaphore.Weighted
}

func NewHasher(cfg HasherConfig) (*Hasher, error) {
	if cfg.Cost < bcrypt.MinCost || cfg.Cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cfg.Cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Hasher{cost: cfg.Cost, sem: semaphore.NewWeighted(int64(workers))}, nil
}

func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	var digest []byte
	err := h.run(ctx, "hash", func() error {
		var err error
		digest, err = bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A mismatch is (false, nil);
// errors are reserved for cancellation and unusable digests.
func (h *Hasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	var match bool
	err := h.run(ctx, "verify", func() error {
		err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
		switch {
		case err == nil:
			match = true
			return nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return false, fmt.Errorf("verify password: %w", err)
	}
	return match, nil
}

func (h *Hasher) run(ctx context.Context, op string, fn func() error) error {
	ctx, span := otel.Tracer("credentials").Start(ctx, "bcrypt."+op)
	defer span.End()

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer h.sem.Release(1)

	start := time.Now()
	err := fn()
	hashDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
	}
	return err
}
