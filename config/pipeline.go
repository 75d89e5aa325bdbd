package config

import (
	"fmt"
)

// PipelineConfig defines behavior of the upload-completion pipeline
type PipelineConfig struct {
	// MaxIdentifierAttempts bounds the regenerate-on-collision loop.
	MaxIdentifierAttempts int `yaml:"max_identifier_attempts"`
}

// SetDefaults sets reasonable default values for pipeline configuration
func (c *PipelineConfig) SetDefaults() {
	if c.MaxIdentifierAttempts <= 0 {
		c.MaxIdentifierAttempts = 5
		fmt.Printf("Warning: pipeline.max_identifier_attempts not set, defaulting to %d\n", c.MaxIdentifierAttempts)
	}
}

// NotifierConfig defines SMTP settings for submitter confirmations and
// operator alerts
type NotifierConfig struct {
	Enabled       bool          `yaml:"enabled"`
	SmtpHost      string        `yaml:"smtp_host"`
	SmtpPort      int           `yaml:"smtp_port"`
	UseTLS        bool          `yaml:"use_tls"`
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password"`
	SenderEmail   string `yaml:"sender_email"`
	OperatorEmail string `yaml:"operator_email"`
	SendTimeout   string `yaml:"send_timeout"`
}

// SetDefaults sets reasonable default values for notifier configuration
func (c *NotifierConfig) SetDefaults() {
	if !c.Enabled {
		return
	}
	if c.SmtpPort == 0 {
		c.SmtpPort = 587
		fmt.Printf("Warning: notifier.smtp_port not set, defaulting to %d\n", c.SmtpPort)
	}
	if c.SendTimeout == "" {
		c.SendTimeout = "10s"
	}
}
