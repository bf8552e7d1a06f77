package main

import (
	"context"

	config "github.com/NordCoder/session-gateway/internal/config/session-gateway"
	pg "github.com/NordCoder/session-gateway/internal/repository/postgres"
)

func initDB(ctx context.Context, cfg *config.Config) (*pg.DB, error) {
	return pg.New(ctx, cfg.DB)
}
