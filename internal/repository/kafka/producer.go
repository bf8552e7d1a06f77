package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NordCoder/session-gateway/internal/domain/auth"
	"github.com/NordCoder/session-gateway/internal/obs/retry"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ auth.EventPublisher = (*EventProducer)(nil)

// EventProducer publishes auth events as JSON keyed by account id, so all
// events of one account land on one partition in order.
type EventProducer struct {
	w      messageWriter
	topic  string
	log    *zap.Logger
	policy retry.Policy
}

func NewEventProducer(brokers []string, topic string, log *zap.Logger) *EventProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newEventProducer(w, topic, log)
}

func newEventProducer(w messageWriter, topic string, log *zap.Logger) *EventProducer {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "kafka.producer"), zap.String("topic", topic))
	return &EventProducer{
		w:      w,
		topic:  topic,
		log:    log,
		policy: retry.DefaultPublishPolicy(log),
	}
}

func (p *EventProducer) Publish(ctx context.Context, e auth.Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, span := otel.Tracer("kafka.producer").Start(ctx, "kafka.produce "+p.topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingDestinationName(p.topic),
			semconv.MessagingOperationPublish,
			attribute.String("auth.event", string(e.Type)),
		),
	)
	defer span.End()

	hdrs := headerCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, hdrs)
	hdrs.Set("event-type", string(e.Type))

	msg := kafka.Message{Key: []byte(e.AccountID), Value: value, Headers: hdrs.toKafka()}

	if err := retry.Do(ctx, func() error { return p.w.WriteMessages(ctx, msg) }, p.policy); err != nil {
		span.RecordError(err)
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	p.log.Debug("event published", zap.String("type", string(e.Type)), zap.Int("value_len", len(value)))
	return nil
}

func (p *EventProducer) Close() error { return p.w.Close() }
