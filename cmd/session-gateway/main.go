package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	config "github.com/NordCoder/session-gateway/internal/config/session-gateway"
	"go.uber.org/zap"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath())
	if err != nil {
		panic(err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting session-gateway",
		zap.String("env", cfg.App.Env),
		zap.String("ver", cfg.App.Version),
		zap.Bool("revocation", cfg.Auth.Revocation),
		zap.Bool("events", cfg.Kafka.Enable))

	otelShutdown, err := initOTel(rootCtx, cfg)
	if err != nil {
		logger.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelShutdown(context.WithoutCancel(rootCtx)) }()

	db, err := initDB(rootCtx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	deny, redisPing, closeRedis, err := initDenylist(rootCtx, cfg)
	if err != nil {
		logger.Fatal("redis connect", zap.Error(err))
	}
	defer closeRedis()

	publisher, closeKafka := initPublisher(rootCtx, cfg, logger)
	defer closeKafka()

	app, err := buildApp(cfg, logger, db, deny, publisher)
	if err != nil {
		logger.Fatal("build app", zap.Error(err))
	}

	httpSrv := buildHTTPServer(cfg, logger, app, readiness{db: db.Ping, redis: redisPing})

	httpErrCh := make(chan error, 1)
	go func() { httpErrCh <- serveHTTP(httpSrv, cfg, logger) }()

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal", zap.String("reason", "context canceled"))
	case err := <-httpErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", zap.Error(err))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	app.events.Wait()
	logger.Info("bye")
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/session-gateway.yaml"
}
