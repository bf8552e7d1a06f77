package main

import (
	"context"

	config "github.com/NordCoder/session-gateway/internal/config/session-gateway"
	"github.com/NordCoder/session-gateway/internal/obs"
)

func initOTel(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	o, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		return nil, err
	}
	return o.Shutdown, nil
}
