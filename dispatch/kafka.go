package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/clusslin/exdicom/config"
	"github.com/clusslin/exdicom/internal/models"
	"github.com/clusslin/exdicom/internal/signature"
)

// KafkaDispatcher publishes signed upload events to a topic for deployments
// that feed the downstream relay through a broker instead of HTTP. The
// payload bytes and signature are identical to the webhook form; the
// signature travels as a message header.
type KafkaDispatcher struct {
	writer *kafka.Writer
	secret string
	logger *log.Logger
	topic  string
}

// NewKafkaDispatcher creates a Kafka-backed dispatcher.
func NewKafkaDispatcher(cfg config.KafkaEmitterConfig, logger *log.Logger) (*KafkaDispatcher, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, errors.New("kafka dispatcher configuration incomplete: both brokers and topic are required")
	}

	var requiredAcks kafka.RequiredAcks
	switch cfg.RequiredAcks {
	case "none":
		requiredAcks = kafka.RequireNone
	case "all":
		requiredAcks = kafka.RequireAll
	default:
		requiredAcks = kafka.RequireOne
	}

	w := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},

		RequiredAcks: requiredAcks,
		Async:        cfg.Async,
		WriteTimeout: config.ParseDuration(cfg.WriteTimeout, 5*time.Second, "dispatch.kafka.write_timeout"),

		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Printf("Kafka Writer Error: "+msg, args...)
		}),
	}

	if cfg.Secret == "" {
		logger.Println("Warning: dispatch.kafka.secret not set, events will be published unsigned")
	}
	logger.Printf("Kafka dispatcher created, connected to Brokers: %v, Topic: %s", cfg.Brokers, cfg.Topic)

	return &KafkaDispatcher{writer: w, secret: cfg.Secret, logger: logger, topic: cfg.Topic}, nil
}

// Dispatch publishes one event keyed by its identifier.
func (d *KafkaDispatcher) Dispatch(ctx context.Context, event *models.WebhookEvent) error {
	payload, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.Identifier),
		Value: payload,
	}
	if sig := signature.Sign(payload, d.secret); sig != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: SignatureHeader, Value: []byte(sig)})
	}

	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish upload event (identifier: %s): %w", event.Identifier, err)
	}
	d.logger.Printf("Upload event published, identifier: %s, row: %d, topic: %s",
		event.Identifier, event.RowNumber, d.topic)
	return nil
}

// Close flushes and closes the writer.
func (d *KafkaDispatcher) Close() error {
	d.logger.Println("Closing Kafka dispatcher (and flushing buffer)...")
	return d.writer.Close()
}

var _ Dispatcher = (*KafkaDispatcher)(nil)
