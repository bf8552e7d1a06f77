package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NordCoder/session-gateway/internal/domain/auth"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "denylist:"

var _ auth.Denylist = (*Denylist)(nil)

// Denylist keeps revoked token ids until the token would have expired on its
// own; after that the signature check rejects it anyway.
type Denylist struct {
	client goredis.Cmdable
	// grace covers the verifier's clock leeway.
	grace time.Duration
	now   func() time.Time
}

func NewDenylist(client goredis.Cmdable, grace time.Duration) *Denylist {
	return &Denylist{client: client, grace: grace, now: time.Now}
}

func key(tokenID string) string { return keyPrefix + tokenID }

func (d *Denylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return errors.New("denylist: empty token id")
	}
	ttl := expiresAt.Sub(d.now()) + d.grace
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, key(tokenID), expiresAt.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("denylist revoke: %w", err)
	}
	return nil
}

func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("denylist lookup: %w", err)
	}
	return n > 0, nil
}

// NewClient opens a client and pings it.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	c := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}
