// Package gateway wires the mod-gateway components together and exposes
// them over HTTP.
//
// # Overview
//
// The gateway package is the central coordinator. It owns and manages the
// broker client, the relay service, the in-memory session and screenshot
// stores, the user directory, and the auth gate.
//
// # HTTP API
//
// Operator routes (bearer token required):
//
//   - GET  /api/me - Authenticated identity
//   - GET  /api/broker/status - Broker connection state
//   - GET  /api/broker/token - Operator capability token
//   - GET  /api/sessions/{clientId} - Latest reported game session
//   - POST /api/player-command - Targeted player command
//   - POST /api/admin-message - Broadcast to all mods
//
// Open routes:
//
//   - POST /auth/login - Password login
//   - POST /auth/session-login - Session-replay login
//   - GET|POST /mod/token - Mod capability token
//   - POST /mod/session - Mod session report
//   - POST /mod/screenshot - Screenshot upload (multipart, 2 MiB cap)
//   - GET  /mod/screenshots/{playerName} - Latest screenshot bytes
//   - GET  /health - Liveness check
//
// # Lifecycle
//
// Start the gateway:
//
//	gw, err := gateway.New(cfg, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	go gw.Run(ctx)
//
// Graceful shutdown:
//
//	cancel()
//
// Run shuts the HTTP server down, disconnects from the broker, and closes
// the user directory before returning.
package gateway
