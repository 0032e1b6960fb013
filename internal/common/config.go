package common

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/invoice-sentinel/constants"
)

// Config holds all application configuration
type Config struct {
	Mode       string           `yaml:"mode"`
	Server     ServerConfig     `yaml:"server"`
	Extraction GatewayConfig    `yaml:"extraction"`
	Completion CompletionConfig `yaml:"completion"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// loadErr records the first malformed env value seen while loading.
	// Validate reports it, so a bad value is fatal rather than silently
	// replaced by the default.
	loadErr error
}

// ServerConfig holds the inbound HTTP surface configuration
type ServerConfig struct {
	Addr   string `yaml:"addr"`
	APIKey string `yaml:"api_key"`
}

// GatewayConfig holds an outbound collaborator endpoint. An empty endpoint
// means the gateway runs permanently in mock mode.
type GatewayConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CompletionConfig holds the language-model collaborator configuration
type CompletionConfig struct {
	GatewayConfig `yaml:",inline"`
	Model         string `yaml:"model"`
}

// PipelineConfig holds timing budgets for one end-to-end request
type PipelineConfig struct {
	ProbeTimeout    time.Duration `yaml:"probe_timeout"`
	RequestDeadline time.Duration `yaml:"request_deadline"`
}

// TelemetryConfig holds the trace export configuration. An empty collector
// endpoint means local-only export.
type TelemetryConfig struct {
	CollectorEndpoint string `yaml:"collector_endpoint"`
	LogLevel          string `yaml:"log_level"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	cfg := &Config{
		Mode: getEnv("MODE", constants.ModeAuto),
		Server: ServerConfig{
			Addr:   getEnv("SERVER_ADDR", ":8001"),
			APIKey: getEnv("PARSER_API_KEY", ""),
		},
		Extraction: GatewayConfig{
			Endpoint: getEnv("EXTRACTION_ENDPOINT", ""),
			APIKey:   getEnv("EXTRACTION_API_KEY", ""),
		},
		Completion: CompletionConfig{
			GatewayConfig: GatewayConfig{
				Endpoint: getEnv("COMPLETION_ENDPOINT", ""),
				APIKey:   getEnv("COMPLETION_API_KEY", ""),
			},
			Model: getEnv("COMPLETION_MODEL", "gpt-4o-mini"),
		},
		Telemetry: TelemetryConfig{
			CollectorEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			LogLevel:          getEnv("LOG_LEVEL", "INFO"),
		},
	}
	cfg.Extraction.Timeout = cfg.envDuration("EXTRACTION_TIMEOUT", 20*time.Second)
	cfg.Completion.Timeout = cfg.envDuration("COMPLETION_TIMEOUT", 20*time.Second)
	cfg.Pipeline.ProbeTimeout = cfg.envDuration("PROBE_TIMEOUT", 2*time.Second)
	cfg.Pipeline.RequestDeadline = cfg.envDuration("REQUEST_DEADLINE", 30*time.Second)
	return cfg
}

// LoadConfigFile reads a YAML config file, then applies environment
// variables on top: env always wins so a deployed unit can be re-pointed
// without editing files.
func LoadConfigFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("read config file %s", path), err)
	}
	cfg := LoadConfig()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("parse config file %s", path), err)
	}
	overlayEnv(cfg)
	return cfg, nil
}

func overlayEnv(cfg *Config) {
	cfg.Mode = getEnv("MODE", cfg.Mode)
	cfg.Server.Addr = getEnv("SERVER_ADDR", cfg.Server.Addr)
	cfg.Server.APIKey = getEnv("PARSER_API_KEY", cfg.Server.APIKey)
	cfg.Extraction.Endpoint = getEnv("EXTRACTION_ENDPOINT", cfg.Extraction.Endpoint)
	cfg.Extraction.APIKey = getEnv("EXTRACTION_API_KEY", cfg.Extraction.APIKey)
	cfg.Completion.Endpoint = getEnv("COMPLETION_ENDPOINT", cfg.Completion.Endpoint)
	cfg.Completion.APIKey = getEnv("COMPLETION_API_KEY", cfg.Completion.APIKey)
	cfg.Completion.Model = getEnv("COMPLETION_MODEL", cfg.Completion.Model)
	cfg.Pipeline.ProbeTimeout = cfg.envDuration("PROBE_TIMEOUT", cfg.Pipeline.ProbeTimeout)
	cfg.Pipeline.RequestDeadline = cfg.envDuration("REQUEST_DEADLINE", cfg.Pipeline.RequestDeadline)
	cfg.Telemetry.CollectorEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.CollectorEndpoint)
	cfg.Telemetry.LogLevel = getEnv("LOG_LEVEL", cfg.Telemetry.LogLevel)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envDuration parses a duration env value. A malformed value is recorded as
// a CONFIG_ERROR for Validate to report; it is never silently replaced by
// the default.
func (c *Config) envDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		if c.loadErr == nil {
			c.loadErr = NewAppError("CONFIG_ERROR", fmt.Sprintf("%s is not a valid duration: %s", key, value), err)
		}
		return defaultValue
	}
	return duration
}

// Validate validates the loaded configuration. Configuration problems are
// the only fatal error class: they are reported before any request is
// accepted and are never partially applied.
func (c *Config) Validate() error {
	if c.loadErr != nil {
		return c.loadErr
	}
	if _, _, err := constants.ParseRunMode(c.Mode); err != nil {
		return NewAppError("CONFIG_ERROR", "MODE is invalid", err)
	}
	if err := validateEndpoint("EXTRACTION_ENDPOINT", c.Extraction.Endpoint); err != nil {
		return err
	}
	if err := validateEndpoint("COMPLETION_ENDPOINT", c.Completion.Endpoint); err != nil {
		return err
	}
	if c.Pipeline.ProbeTimeout <= 0 {
		return NewAppError("CONFIG_ERROR", "PROBE_TIMEOUT must be positive", ErrInvalidInput)
	}
	if c.Pipeline.RequestDeadline <= 0 {
		return NewAppError("CONFIG_ERROR", "REQUEST_DEADLINE must be positive", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "SERVER_ADDR is required", ErrInvalidInput)
	}
	return nil
}

func validateEndpoint(name, endpoint string) error {
	if endpoint == "" {
		return nil // empty means mock mode
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("%s is not a valid URL: %s", name, endpoint), ErrInvalidInput)
	}
	return nil
}
