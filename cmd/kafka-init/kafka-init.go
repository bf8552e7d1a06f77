package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NordCoder/session-gateway/internal/obs"
	kafkarepo "github.com/NordCoder/session-gateway/internal/repository/kafka"
	"go.uber.org/zap"
)

// Creates the auth events topic ahead of the gateway, for deployments where
// the gateway itself must not hold topic-creation rights.
func main() {
	logger, err := obs.NewLogger(obs.LogConfig{Level: "info", App: "kafka-init"})
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	brokers := strings.Split(env("KAFKA_BROKERS", "kafka:9092"), ",")
	topics := strings.Split(env("KAFKA_TOPICS", "auth-events"), ",")
	spec := kafkarepo.TopicSpec{
		NumPartitions:     envInt("KAFKA_PARTITIONS", 3),
		ReplicationFactor: envInt("KAFKA_RF", 1),
		MaxWait:           30 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		spec.Name = t
		if err := kafkarepo.EnsureTopic(ctx, brokers, spec, logger); err != nil {
			logger.Fatal("ensure topic", zap.String("topic", t), zap.Error(err))
		}
	}
	logger.Info("kafka-init ok")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil && n > 0 {
		return n
	}
	return def
}
