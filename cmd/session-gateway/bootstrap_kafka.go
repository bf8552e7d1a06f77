package main

import (
	"context"
	"time"

	config "github.com/NordCoder/session-gateway/internal/config/session-gateway"
	domainauth "github.com/NordCoder/session-gateway/internal/domain/auth"
	kafkarepo "github.com/NordCoder/session-gateway/internal/repository/kafka"
	"go.uber.org/zap"
)

// initPublisher never fails startup: events are best effort, so a missing
// broker only costs a warning.
func initPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domainauth.EventPublisher, func()) {
	if !cfg.Kafka.Enable {
		return domainauth.NopPublisher{}, func() {}
	}
	log := logger.Named("kafka")

	tctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := kafkarepo.EnsureTopic(tctx, cfg.Kafka.Brokers, kafkarepo.TopicSpec{Name: cfg.Kafka.Topic}, log); err != nil {
		log.Warn("ensure topic", zap.String("topic", cfg.Kafka.Topic), zap.Error(err))
	}

	p := kafkarepo.NewEventProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	return p, func() {
		if err := p.Close(); err != nil {
			log.Warn("producer close", zap.Error(err))
		}
	}
}
