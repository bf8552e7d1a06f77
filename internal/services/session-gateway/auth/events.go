package auth

import (
	"context"
	"sync"
	"time"

	domainauth "github.com/NordCoder/session-gateway/internal/domain/auth"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// Emitter publishes auth events off the request path. Failures are logged and
// never reach the caller. A nil *Emitter drops everything.
type Emitter struct {
	pub domainauth.EventPublisher
	log *zap.Logger
	now func() time.Time
	wg  sync.WaitGroup
}

func NewEmitter(pub domainauth.EventPublisher, log *zap.Logger) *Emitter {
	if pub == nil {
		pub = domainauth.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{pub: pub, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (e *Emitter) Emit(ctx context.Context, ev domainauth.Event) {
	if e == nil {
		return
	}
	if _, nop := e.pub.(domainauth.NopPublisher); nop {
		return
	}
	if ev.At.IsZero() {
		ev.At = e.now()
	}
	ctx = context.WithoutCancel(ctx)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		if err := e.pub.Publish(ctx, ev); err != nil {
			e.log.Warn("auth event dropped",
				zap.String("type", string(ev.Type)),
				zap.String("account_id", ev.AccountID),
				zap.Error(err))
		}
	}()
}

// Wait blocks until in-flight publishes finish. Called on shutdown.
func (e *Emitter) Wait() {
	if e == nil {
		return
	}
	e.wg.Wait()
}
