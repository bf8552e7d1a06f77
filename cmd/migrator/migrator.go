package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/NordCoder/session-gateway/internal/obs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Applies migrations/ to DB_URL. The first argument selects the goose
// command (default "up"), e.g. `migrator status` or `migrator down`.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := obs.NewLogger(obs.LogConfig{Level: "info", App: "migrator"})
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	dbURL := firstEnv("DB_URL", "DB_DSN")
	if dbURL == "" {
		logger.Fatal("DB_URL is empty")
	}
	dir := firstEnv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "migrations"
	}
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	if err := goose.SetDialect("postgres"); err != nil {
		logger.Fatal("set dialect", zap.Error(err))
	}
	goose.SetLogger(zap.NewStdLog(logger))

	db, err := goose.OpenDBWithDriver("pgx", dbURL)
	if err != nil {
		logger.Fatal("open db", zap.Error(err))
	}
	defer db.Close()

	if err := goose.RunContext(ctx, command, db, dir, os.Args[min(len(os.Args), 2):]...); err != nil {
		logger.Fatal("migrate", zap.String("command", command), zap.Error(err))
	}
	logger.Info("migrations done", zap.String("command", command), zap.String("dir", dir))
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
