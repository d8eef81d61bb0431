// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

broker:
  key: "gateway:s3cret"
  url: "tcp://localhost:1883"
  client_id: "mod-gateway"

database:
  path: "./test.db"

auth:
  jwt_secret: "test-secret"
  session_profile_url: "http://localhost:9999/profile"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:8080")
	}
	if cfg.Broker.Key != "gateway:s3cret" {
		t.Errorf("Broker.Key = %q, want %q", cfg.Broker.Key, "gateway:s3cret")
	}
	if cfg.Broker.URL != "tcp://localhost:1883" {
		t.Errorf("Broker.URL = %q, want %q", cfg.Broker.URL, "tcp://localhost:1883")
	}
	if cfg.Database.Path != "./test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./test.db")
	}
	if cfg.Auth.JWTSecret != "test-secret" {
		t.Errorf("Auth.JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "test-secret")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_BROKER_KEY", "app:expanded-secret")
	t.Setenv("TEST_JWT_SECRET", "expanded-jwt")

	configPath := writeConfig(t, `
server:
  http_addr: "localhost:8080"

broker:
  key: "${TEST_BROKER_KEY}"
  url: "tcp://localhost:1883"

database:
  path: "./test.db"

auth:
  jwt_secret: "${TEST_JWT_SECRET}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Broker.Key != "app:expanded-secret" {
		t.Errorf("Broker.Key = %q, want expanded value", cfg.Broker.Key)
	}
	if cfg.Auth.JWTSecret != "expanded-jwt" {
		t.Errorf("Auth.JWTSecret = %q, want expanded value", cfg.Auth.JWTSecret)
	}
}

func TestLoad_UnsetEnvVarBecomesEmpty(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "localhost:8080"

broker:
  key: "${DEFINITELY_NOT_SET_VAR_12345}"
  url: "tcp://localhost:1883"

database:
  path: "./test.db"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Unset variable expands to empty: broker is simply unconfigured
	if cfg.Broker.Key != "" {
		t.Errorf("Broker.Key = %q, want empty", cfg.Broker.Key)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Load() should fail for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "server: [not: valid: yaml")

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() should fail for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid minimal",
			cfg: Config{
				Server:   ServerConfig{HTTPAddr: "localhost:8080"},
				Database: DatabaseConfig{Path: "./test.db"},
			},
		},
		{
			name: "missing http_addr",
			cfg: Config{
				Database: DatabaseConfig{Path: "./test.db"},
			},
			wantErr: "server.http_addr",
		},
		{
			name: "missing database path",
			cfg: Config{
				Server: ServerConfig{HTTPAddr: "localhost:8080"},
			},
			wantErr: "database.path",
		},
		{
			name: "broker key without separator",
			cfg: Config{
				Server:   ServerConfig{HTTPAddr: "localhost:8080"},
				Database: DatabaseConfig{Path: "./test.db"},
				Broker:   BrokerConfig{Key: "no-separator", URL: "tcp://localhost:1883"},
			},
			wantErr: "name:secret",
		},
		{
			name: "broker key without url",
			cfg: Config{
				Server:   ServerConfig{HTTPAddr: "localhost:8080"},
				Database: DatabaseConfig{Path: "./test.db"},
				Broker:   BrokerConfig{Key: "app:secret"},
			},
			wantErr: "broker.url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
