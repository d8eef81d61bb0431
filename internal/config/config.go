// ABOUTME: Configuration loading and parsing for mod-gateway
// ABOUTME: Supports YAML files with environment variable expansion and validation

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete mod-gateway configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Broker   BrokerConfig   `yaml:"broker"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// BrokerConfig holds pub/sub broker configuration.
// Key is the shared broker key in "name:secret" form; when empty the gateway
// runs in degraded mode where token issuance and publish are unavailable.
type BrokerConfig struct {
	Key      string `yaml:"key"`
	URL      string `yaml:"url"`
	ClientID string `yaml:"client_id"`
}

// DatabaseConfig holds user directory database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds operator authentication configuration
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`

	// SessionProfileURL overrides the upstream game-session profile endpoint
	// used by session-replay login. Empty means the production endpoint.
	SessionProfileURL string `yaml:"session_profile_url"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	// A broker key without a reachable broker is a misconfiguration; an empty
	// key is allowed and enables degraded mode.
	if c.Broker.Key != "" {
		if !strings.Contains(c.Broker.Key, ":") {
			return fmt.Errorf("broker.key must be in name:secret form")
		}
		if c.Broker.URL == "" {
			return fmt.Errorf("broker.url is required when broker.key is set")
		}
	}

	return nil
}
