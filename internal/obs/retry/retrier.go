package retry

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Backoff interface {
	Next(attempt int) time.Duration
}

// ExpoJitter doubles Base per attempt, caps at Max and spreads by ±Jitter.
type ExpoJitter struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64
}

func (b ExpoJitter) Next(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := float64(b.Base) * math.Pow(2, float64(attempt))
	if b.Max > 0 && time.Duration(d) > b.Max {
		d = float64(b.Max)
	}
	if b.Jitter > 0 {
		d *= 1 + (rand.Float64()*2-1)*b.Jitter
	}
	return time.Duration(d)
}

type Policy struct {
	Name      string
	Attempts  int
	Backoff   Backoff
	Retryable func(error) bool
	OnAttempt func(attempt int, err error)
	OnExhaust func(lastErr error)
}

var (
	retryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retry_attempts_total",
		Help: "Total retry attempts (including final).",
	}, []string{"name"})
	retryExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retry_exhausted_total",
		Help: "Operations that exhausted all retries.",
	}, []string{"name"})
	retryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retry_duration_seconds",
		Help:    "Total time spent inside retry.Do (success or fail).",
		Buckets: prometheus.DefBuckets,
	}, []string{"name"})
)

func (p Policy) normalized() Policy {
	if p.Name == "" {
		p.Name = "default"
	}
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if p.Retryable == nil {
		p.Retryable = func(err error) bool { return err != nil }
	}
	if p.Backoff == nil {
		p.Backoff = ExpoJitter{Base: 100 * time.Millisecond, Max: time.Second}
	}
	return p
}

// Do runs fn until it succeeds, returns a non-retryable error, runs out of
// attempts or ctx is done.
func Do(ctx context.Context, fn func() error, p Policy) error {
	p = p.normalized()
	start := time.Now()
	defer func() { retryLatency.WithLabelValues(p.Name).Observe(time.Since(start).Seconds()) }()

	span := trace.SpanFromContext(ctx)

	var err error
	for i := 0; i < p.Attempts; i++ {
		err = fn()
		retryAttempts.WithLabelValues(p.Name).Inc()
		if err == nil {
			return nil
		}
		if p.OnAttempt != nil {
			p.OnAttempt(i, err)
		}
		if span.IsRecording() {
			span.AddEvent("retry.attempt", trace.WithAttributes(
				attribute.String("retry.name", p.Name),
				attribute.Int("retry.attempt", i+1),
			))
		}
		if !p.Retryable(err) || i == p.Attempts-1 {
			break
		}
		t := time.NewTimer(p.Backoff.Next(i))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	retryExhausted.WithLabelValues(p.Name).Inc()
	if p.OnExhaust != nil {
		p.OnExhaust(err)
	}
	return err
}
