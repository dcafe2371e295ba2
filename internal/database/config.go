package database

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// DatabaseConfig holds MongoDB connection configuration
type DatabaseConfig struct {
	// URI carries every connection detail including credentials.
	URI          string
	Environment  string
	DatabaseName string
	AppName      string
	Timeout      time.Duration
}

// NewDatabaseConfig builds the usage-log configuration. An empty databaseName
// is derived from the environment and service name.
func NewDatabaseConfig(uri, databaseName, environment, serviceName string, timeout time.Duration) *DatabaseConfig {
	if databaseName == "" {
		databaseName = DatabaseName(environment, serviceName)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &DatabaseConfig{
		URI:          uri,
		Environment:  normalizeEnvironment(environment),
		DatabaseName: databaseName,
		AppName:      serviceName,
		Timeout:      timeout,
	}
}

// DatabaseName returns "{env-prefix}-{service}", e.g. "prod-generative-gateway".
func DatabaseName(environment, serviceName string) string {
	if serviceName == "" {
		serviceName = "generative-gateway"
	}
	var envPrefix string
	switch normalizeEnvironment(environment) {
	case "production":
		envPrefix = "prod"
	case "local":
		envPrefix = "loc"
	case "test":
		envPrefix = "test"
	default:
		envPrefix = "dev"
	}
	name := strings.ReplaceAll(strings.ToLower(serviceName), "_", "-")
	name = strings.TrimPrefix(name, "go-")
	return fmt.Sprintf("%s-%s", envPrefix, name)
}

func normalizeEnvironment(environment string) string {
	switch env := strings.ToLower(strings.TrimSpace(environment)); env {
	case "production", "prod":
		return "production"
	case "local", "test":
		return env
	default:
		return "development"
	}
}

// MaskedURI returns the URI with credentials replaced, for logging.
func (c *DatabaseConfig) MaskedURI() string {
	u, err := url.Parse(c.URI)
	if err != nil || u.User == nil {
		return c.URI
	}
	u.User = nil
	return u.Scheme + "://***:***@" + strings.TrimPrefix(u.String(), u.Scheme+"://")
}
