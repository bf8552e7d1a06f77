package auth

import (
	"context"
	"time"
)

// Denylist records token ids revoked before their natural expiry.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopDenylist is used when revocation is disabled; nothing is ever revoked.
type NopDenylist struct{}

func (NopDenylist) Revoke(context.Context, string, time.Time) error { return nil }
func (NopDenylist) IsRevoked(context.Context, string) (bool, error) { return false, nil }

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
