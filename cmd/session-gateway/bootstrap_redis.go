package main

import (
	"context"

	config "github.com/NordCoder/session-gateway/internal/config/session-gateway"
	domainauth "github.com/NordCoder/session-gateway/internal/domain/auth"
	redisrepo "github.com/NordCoder/session-gateway/internal/repository/redis"
)

type pingFunc func(context.Context) error

// initDenylist connects to redis only when revocation is enabled; otherwise
// tokens stay stateless and the ping is nil.
func initDenylist(ctx context.Context, cfg *config.Config) (domainauth.Denylist, pingFunc, func(), error) {
	if !cfg.Auth.Revocation {
		return domainauth.NopDenylist{}, nil, func() {}, nil
	}
	client, err := redisrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, nil, err
	}
	ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return redisrepo.NewDenylist(client, cfg.Auth.Leeway), ping, func() { _ = client.Close() }, nil
}
