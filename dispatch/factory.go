package dispatch

import (
	"fmt"
	"log"

	"github.com/clusslin/exdicom/config"
)

// Mode identifies a dispatcher implementation
type Mode string

const (
	Webhook Mode = "webhook"
	Kafka   Mode = "kafka"
	None    Mode = "none"
)

// New creates a dispatcher based on the configuration.
func New(cfg *config.DispatchConfig, logger *log.Logger) (Dispatcher, error) {
	switch Mode(cfg.Mode) {
	case Webhook, "":
		// Webhook is the default mode
		return NewWebhookDispatcher(cfg.Webhook, logger)
	case Kafka:
		return NewKafkaDispatcher(cfg.Kafka, logger)
	case None:
		return NewNoneDispatcher(logger), nil
	default:
		return nil, fmt.Errorf("unsupported dispatch mode: %s", cfg.Mode)
	}
}
