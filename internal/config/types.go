package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Backend  BackendConfig  `mapstructure:"backend" yaml:"backend"`
	Limits   LimitsConfig   `mapstructure:"limits" yaml:"limits"`
	Poller   PollerConfig   `mapstructure:"poller" yaml:"poller"`
	JobStore JobStoreConfig `mapstructure:"job_store" yaml:"job_store"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	CORS     CORSConfig     `mapstructure:"cors" yaml:"cors"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}

// BackendConfig describes the orchestration webhook.
type BackendConfig struct {
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url" validate:"required,url"`
	// StatusURL is the job status base; empty derives {webhook_url}/status.
	StatusURL string `mapstructure:"status_url" yaml:"status_url" validate:"omitempty,url"`

	ChatTimeout  time.Duration `mapstructure:"chat_timeout" yaml:"chat_timeout" validate:"gt=0"`
	ImageTimeout time.Duration `mapstructure:"image_timeout" yaml:"image_timeout" validate:"gt=0"`
	VideoTimeout time.Duration `mapstructure:"video_timeout" yaml:"video_timeout" validate:"gt=0"`

	RetryAttempts     int           `mapstructure:"retry_attempts" yaml:"retry_attempts" validate:"min=1,max=10"`
	RetryInitialDelay time.Duration `mapstructure:"retry_initial_delay" yaml:"retry_initial_delay" validate:"gt=0"`
	RetryMaxDelay     time.Duration `mapstructure:"retry_max_delay" yaml:"retry_max_delay" validate:"gtefield=RetryInitialDelay"`
}

// LimitsConfig bounds inbound requests.
type LimitsConfig struct {
	MaxAttachmentBytes int64         `mapstructure:"max_attachment_bytes" yaml:"max_attachment_bytes" validate:"gt=0"`
	HistoryTurns       int           `mapstructure:"history_turns" yaml:"history_turns" validate:"gt=0"`
	SessionIdleTTL     time.Duration `mapstructure:"session_idle_ttl" yaml:"session_idle_ttl" validate:"gte=0"`
}

// PollerConfig is the job status polling schedule.
type PollerConfig struct {
	InitialDelay time.Duration `mapstructure:"initial_delay" yaml:"initial_delay" validate:"gte=0"`
	Interval     time.Duration `mapstructure:"interval" yaml:"interval" validate:"gt=0"`
	MaxAttempts  int           `mapstructure:"max_attempts" yaml:"max_attempts" validate:"min=1"`
	QueryTimeout time.Duration `mapstructure:"query_timeout" yaml:"query_timeout" validate:"gt=0"`
}

// JobStoreConfig selects the job store. An empty RedisAddr keeps jobs in memory.
type JobStoreConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr" yaml:"redis_addr" validate:"omitempty,hostname_port"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" yaml:"redis_db" validate:"gte=0"`
	KeyPrefix     string        `mapstructure:"key_prefix" yaml:"key_prefix"`
	TerminalTTL   time.Duration `mapstructure:"terminal_ttl" yaml:"terminal_ttl" validate:"gt=0"`
}

// DatabaseConfig enables the MongoDB usage log when URI is set.
type DatabaseConfig struct {
	URI     string        `mapstructure:"uri" yaml:"uri" validate:"omitempty,startswith=mongodb"`
	Name    string        `mapstructure:"name" yaml:"name"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`
	Format      string `mapstructure:"format" yaml:"format" validate:"oneof=json text"`
	Output      string `mapstructure:"output" yaml:"output"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name" validate:"required"`
	Environment string `mapstructure:"environment" yaml:"environment"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins" validate:"min=1"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8082,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    200 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Backend: BackendConfig{
			WebhookURL:        "http://localhost:5678/webhook/ai-gateway",
			ChatTimeout:       120 * time.Second,
			ImageTimeout:      120 * time.Second,
			VideoTimeout:      180 * time.Second,
			RetryAttempts:     3,
			RetryInitialDelay: 250 * time.Millisecond,
			RetryMaxDelay:     2 * time.Second,
		},
		Limits: LimitsConfig{
			MaxAttachmentBytes: 50 * 1024 * 1024,
			HistoryTurns:       15,
			SessionIdleTTL:     24 * time.Hour,
		},
		Poller: PollerConfig{
			InitialDelay: 2 * time.Second,
			Interval:     5 * time.Second,
			MaxAttempts:  60,
			QueryTimeout: 15 * time.Second,
		},
		JobStore: JobStoreConfig{
			KeyPrefix:   "gateway:",
			TerminalTTL: time.Hour,
		},
		Database: DatabaseConfig{
			Timeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Output:      "stdout",
			ServiceName: "generative-gateway",
			Environment: "development",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}
