// Package config handles configuration loading for mod-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	broker:
//	  key: "${MODGW_BROKER_KEY}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"   # API for operators and mod clients
//
// Broker (pub/sub network):
//
//	broker:
//	  key: "${MODGW_BROKER_KEY}"  # name:secret, empty = degraded mode
//	  url: "tcp://localhost:1883"
//	  client_id: "mod-gateway"
//
// Database (user directory):
//
//	database:
//	  path: "/var/lib/mod-gateway/gateway.db"
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${MODGW_JWT_SECRET}"
//	  session_profile_url: ""     # override for session-replay validation
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load configuration from a path:
//
//	cfg, err := config.Load("/etc/mod-gateway/gateway.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
