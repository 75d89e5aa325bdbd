package config

import (
	"fmt"
)

// WebhookConfig defines the HTTP delivery of signed upload events
type WebhookConfig struct {
	Endpoint string `yaml:"endpoint"`
	Secret   string `yaml:"secret"`
	Timeout  string `yaml:"timeout"`
}

// SetDefaults sets reasonable default values for webhook configuration
func (c *WebhookConfig) SetDefaults() {
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if c.Secret == "" {
		fmt.Println("Warning: dispatch.webhook.secret not set, outbound events cannot be signed and will not be delivered")
	}
}

// KafkaEmitterConfig defines the Kafka delivery of signed upload events
type KafkaEmitterConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Secret  string   `yaml:"secret"`

	// Reliability settings
	RequiredAcks string `yaml:"required_acks"`
	Async        bool   `yaml:"async"`

	// Performance settings
	WriteTimeout string `yaml:"write_timeout"`
}

// SetDefaults sets reasonable default values for the Kafka emitter
func (c *KafkaEmitterConfig) SetDefaults() {
	if c.WriteTimeout == "" {
		c.WriteTimeout = "5s"
	}
}

// DispatchConfig selects and configures how completed uploads are announced
// to the downstream relay
type DispatchConfig struct {
	Mode    string             `yaml:"mode"` // "webhook", "kafka" or "none"
	Webhook WebhookConfig      `yaml:"webhook"`
	Kafka   KafkaEmitterConfig `yaml:"kafka"`
}

// SetDefaults sets reasonable default values for dispatch configuration
func (c *DispatchConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "webhook"
	}
	switch c.Mode {
	case "webhook":
		c.Webhook.SetDefaults()
	case "kafka":
		c.Kafka.SetDefaults()
	}
}

// Validate validates the dispatch configuration
func (c *DispatchConfig) Validate() error {
	switch c.Mode {
	case "webhook":
		if c.Webhook.Endpoint == "" {
			return fmt.Errorf("dispatch.webhook.endpoint is required in webhook mode")
		}
	case "kafka":
		if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
			return fmt.Errorf("dispatch.kafka.brokers and dispatch.kafka.topic are required in kafka mode")
		}
	case "none":
	default:
		return fmt.Errorf("unsupported dispatch mode: %s", c.Mode)
	}
	return nil
}
