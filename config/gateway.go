package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// HttpServerConfig defines HTTP server configuration. Durations are strings
// parsed with time.ParseDuration where they are consumed.
type HttpServerConfig struct {
	ReadTimeout    string `yaml:"read_timeout"`
	WriteTimeout   string `yaml:"write_timeout"`
	IdleTimeout    string `yaml:"idle_timeout"`
	MaxHeaderBytes int    `yaml:"max_header_bytes"`
}

// ParseDuration parses a configured duration string, falling back to def on
// an empty or malformed value.
func ParseDuration(value string, def time.Duration, name string) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		fmt.Printf("Warning: Invalid %s '%s', using default %v\n", name, value, def)
		return def
	}
	return d
}

// GoogleConfig holds the Google Workspace settings shared by the Drive blob
// store and the Sheets ledger
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	SheetName       string `yaml:"sheet_name"`
	DriveFolderID   string `yaml:"drive_folder_id"`
}

// SetDefaults sets reasonable default values for Google configuration
func (c *GoogleConfig) SetDefaults() {
	if c.CredentialsFile == "" {
		c.CredentialsFile = "credentials.json"
		fmt.Printf("Warning: google.credentials_file not set, defaulting to %s\n", c.CredentialsFile)
	}
	if c.SheetName == "" {
		c.SheetName = "Uploads"
		fmt.Printf("Warning: google.sheet_name not set, defaulting to %s\n", c.SheetName)
	}
}

// LedgerConfig selects and configures the ledger backend
type LedgerConfig struct {
	Backend  string         `yaml:"backend"` // "sheets" or "postgres"
	Database DatabaseConfig `yaml:"database"`
}

// Validate validates the ledger configuration
func (c *LedgerConfig) Validate(google *GoogleConfig) error {
	switch c.Backend {
	case "", "sheets":
		if google.SpreadsheetID == "" {
			return fmt.Errorf("google.spreadsheet_id is required for the sheets ledger backend")
		}
	case "postgres":
		if err := c.Database.Validate(); err != nil {
			return fmt.Errorf("ledger database configuration error: %w", err)
		}
	default:
		return fmt.Errorf("unsupported ledger backend: %s", c.Backend)
	}
	return nil
}

// GatewayConfig defines all configurations required for the upload gateway
type GatewayConfig struct {
	HttpListenAddr string `yaml:"http_listen_addr"`

	HttpServer HttpServerConfig `yaml:"http_server"`
	Google     GoogleConfig     `yaml:"google"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Notifier   NotifierConfig   `yaml:"notifier"`
	Dispatch   DispatchConfig   `yaml:"dispatch"`
}

// LoadGatewayConfig loads the gateway configuration from the specified YAML file path
func LoadGatewayConfig(path string) (*GatewayConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway config file '%s': %w", path, err)
	}

	var cfg GatewayConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse gateway YAML config file: %w", err)
	}

	cfg.Google.SetDefaults()
	cfg.Pipeline.SetDefaults()
	cfg.Notifier.SetDefaults()
	cfg.Dispatch.SetDefaults()

	// Validation
	if cfg.HttpListenAddr == "" {
		return nil, fmt.Errorf("configuration error: http_listen_addr must be configured")
	}
	if err := cfg.Ledger.Validate(&cfg.Google); err != nil {
		return nil, err
	}
	if err := cfg.Dispatch.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
