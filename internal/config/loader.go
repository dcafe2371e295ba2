package config

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/aashari/go-generative-gateway/internal/logger"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// envAliases are the flat variable names operators already use. Each key
// also answers to its automatic name (server.port -> SERVER_PORT).
var envAliases = map[string][]string{
	"server.port":                 {"PORT"},
	"backend.webhook_url":         {"N8N_WEBHOOK_URL"},
	"backend.status_url":          {"JOB_STATUS_URL"},
	"backend.chat_timeout":        {"CHAT_TIMEOUT"},
	"backend.image_timeout":       {"IMAGE_TIMEOUT"},
	"backend.video_timeout":       {"VIDEO_TIMEOUT"},
	"backend.retry_attempts":      {"RETRY_ATTEMPTS"},
	"limits.max_attachment_bytes": {"MAX_ATTACHMENT_BYTES"},
	"limits.history_turns":        {"HISTORY_TURNS"},
	"limits.session_idle_ttl":     {"SESSION_IDLE_TTL"},
	"poller.initial_delay":        {"POLL_INITIAL_DELAY"},
	"poller.interval":             {"POLL_INTERVAL"},
	"poller.max_attempts":         {"POLL_MAX_ATTEMPTS"},
	"job_store.redis_addr":        {"JOB_STORE_REDIS_ADDR", "REDIS_ADDR"},
	"job_store.redis_password":    {"JOB_STORE_REDIS_PASSWORD", "REDIS_PASSWORD"},
	"job_store.redis_db":          {"JOB_STORE_REDIS_DB"},
	"database.uri":                {"MONGODB_URI"},
	"database.name":               {"MONGODB_DATABASE"},
	"logging.level":               {"LOG_LEVEL"},
	"logging.format":              {"LOG_FORMAT"},
	"logging.output":              {"LOG_OUTPUT"},
	"logging.service_name":        {"SERVICE_NAME"},
	"logging.environment":         {"ENVIRONMENT", "ENV"},
	"cors.allowed_origins":        {"CORS_ALLOWED_ORIGINS"},
}

// Loader handles loading configuration from multiple sources
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, aliases := range envAliases {
		names := append([]string{automaticEnvName(key)}, aliases...)
		// BindEnv only fails without a key.
		_ = v.BindEnv(append([]string{key}, names...)...)
	}

	return &Loader{v: v}
}

// LoadConfig loads configuration in priority order: environment variables,
// then the config file, then defaults. An empty configFile searches ., ./config
// and /etc/ai-gateway for config.{yaml,json}; not finding one is fine.
func (l *Loader) LoadConfig(configFile string) (*Config, error) {
	if configFile != "" {
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName("config")
		for _, path := range []string{".", "./config", "/etc/ai-gateway"} {
			l.v.AddConfigPath(path)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.applyDerived()
	if apiErr := Validate(&cfg); apiErr != nil {
		return nil, fmt.Errorf("config validation failed: %w", apiErr)
	}
	return &cfg, nil
}

// ConfigFileUsed returns the config file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Load is LoadConfig on a fresh loader.
func Load(configFile string) (*Config, error) {
	return NewLoader().LoadConfig(configFile)
}

func (c *Config) applyDerived() {
	c.Backend.WebhookURL = strings.TrimSpace(c.Backend.WebhookURL)
	if c.Backend.StatusURL == "" && c.Backend.WebhookURL != "" {
		c.Backend.StatusURL = strings.TrimRight(c.Backend.WebhookURL, "/") + "/status"
	}
	origins := c.CORS.AllowedOrigins[:0]
	for _, o := range c.CORS.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORS.AllowedOrigins = origins
}

// LoggerConfig converts the logging section for logger.Init.
func (c *Config) LoggerConfig() logger.Config {
	lc := logger.DefaultConfig
	lc.Level = logger.ParseLevel(c.Logging.Level)
	lc.Format = c.Logging.Format
	lc.Output = c.Logging.Output
	lc.ServiceName = c.Logging.ServiceName
	lc.Environment = c.Logging.Environment
	return lc
}

// setDefaults registers every key so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("backend.webhook_url", d.Backend.WebhookURL)
	v.SetDefault("backend.status_url", d.Backend.StatusURL)
	v.SetDefault("backend.chat_timeout", d.Backend.ChatTimeout)
	v.SetDefault("backend.image_timeout", d.Backend.ImageTimeout)
	v.SetDefault("backend.video_timeout", d.Backend.VideoTimeout)
	v.SetDefault("backend.retry_attempts", d.Backend.RetryAttempts)
	v.SetDefault("backend.retry_initial_delay", d.Backend.RetryInitialDelay)
	v.SetDefault("backend.retry_max_delay", d.Backend.RetryMaxDelay)

	v.SetDefault("limits.max_attachment_bytes", d.Limits.MaxAttachmentBytes)
	v.SetDefault("limits.history_turns", d.Limits.HistoryTurns)
	v.SetDefault("limits.session_idle_ttl", d.Limits.SessionIdleTTL)

	v.SetDefault("poller.initial_delay", d.Poller.InitialDelay)
	v.SetDefault("poller.interval", d.Poller.Interval)
	v.SetDefault("poller.max_attempts", d.Poller.MaxAttempts)
	v.SetDefault("poller.query_timeout", d.Poller.QueryTimeout)

	v.SetDefault("job_store.redis_addr", d.JobStore.RedisAddr)
	v.SetDefault("job_store.redis_password", d.JobStore.RedisPassword)
	v.SetDefault("job_store.redis_db", d.JobStore.RedisDB)
	v.SetDefault("job_store.key_prefix", d.JobStore.KeyPrefix)
	v.SetDefault("job_store.terminal_ttl", d.JobStore.TerminalTTL)

	v.SetDefault("database.uri", d.Database.URI)
	v.SetDefault("database.name", d.Database.Name)
	v.SetDefault("database.timeout", d.Database.Timeout)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.service_name", d.Logging.ServiceName)
	v.SetDefault("logging.environment", d.Logging.Environment)

	v.SetDefault("cors.allowed_origins", d.CORS.AllowedOrigins)
}

func automaticEnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// secondsToDurationHook reads bare numbers ("120" or 120) as seconds.
func secondsToDurationHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != durationType || from == durationType {
			return data, nil
		}
		value := reflect.ValueOf(data)
		switch from.Kind() {
		case reflect.String:
			seconds, err := strconv.Atoi(strings.TrimSpace(value.String()))
			if err != nil {
				return data, nil
			}
			return time.Duration(seconds) * time.Second, nil
		case reflect.Int, reflect.Int32, reflect.Int64:
			return time.Duration(value.Int()) * time.Second, nil
		}
		return data, nil
	}
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
