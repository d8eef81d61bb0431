// ABOUTME: Gateway orchestrator wiring broker, relay, stores, and auth together
// ABOUTME: Manages the HTTP server lifecycle with graceful shutdown

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/skyhaven/mod-gateway/internal/auth"
	"github.com/skyhaven/mod-gateway/internal/broker"
	"github.com/skyhaven/mod-gateway/internal/config"
	"github.com/skyhaven/mod-gateway/internal/relay"
	"github.com/skyhaven/mod-gateway/internal/state"
	"github.com/skyhaven/mod-gateway/internal/store"
)

// brokerClient is the broker surface the gateway depends on. Satisfied by
// *broker.Client; narrowed so tests can substitute a fake.
type brokerClient interface {
	relay.Publisher
	IssueToken(identity string, capability broker.Capability) (*broker.Token, error)
	ConnectionState() broker.ConnectionState
	Connect() error
	Close()
}

// Gateway orchestrates the mod-gateway server components: the broker
// connection, the relay service, the in-memory session and screenshot
// stores, the user directory, and the HTTP API that ties them together.
type Gateway struct {
	config      *config.Config
	broker      brokerClient
	relay       *relay.Service
	sessions    *state.Sessions
	screenshots *state.Screenshots
	store       *store.SQLiteStore
	auth        *auth.Service
	httpServer  *http.Server
	logger      *slog.Logger

	// addr holds the bound listener address once Run has started serving.
	addr atomic.Value
}

// boundAddr returns the address the HTTP listener bound to, or "" before
// Run starts. With an ephemeral port config this is the only way to learn
// the real port.
func (g *Gateway) boundAddr() string {
	if v := g.addr.Load(); v != nil {
		return v.(string)
	}
	return ""
}

// New creates a Gateway from config. The broker may be unconfigured (empty
// key); the gateway still starts and serves, with broker-backed operations
// reporting their degraded outcome.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}

	brokerConn, err := broker.New(broker.Config{
		Key:      cfg.Broker.Key,
		URL:      cfg.Broker.URL,
		ClientID: cfg.Broker.ClientID,
	}, logger)
	if err != nil {
		_ = sqlStore.Close()
		return nil, err
	}

	verifier, err := auth.NewVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		_ = sqlStore.Close()
		return nil, fmt.Errorf("auth.jwt_secret: %w", err)
	}

	profileURL := cfg.Auth.SessionProfileURL
	if profileURL == "" {
		profileURL = auth.DefaultProfileURL
	}

	screenshots := state.NewScreenshots()

	gw := &Gateway{
		config:      cfg,
		broker:      brokerConn,
		relay:       relay.NewService(brokerConn, screenshots, logger),
		sessions:    state.NewSessions(),
		screenshots: screenshots,
		store:       sqlStore,
		auth:        auth.NewService(sqlStore, verifier, auth.NewProfileClient(profileURL), logger),
		logger:      logger.With("component", "gateway"),
	}

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           gw.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// routes builds the HTTP mux. Operator routes sit behind the auth
// middleware; mod-facing routes and login are open by design (the mod holds
// no operator credential).
func (g *Gateway) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", g.handleHealth)
	mux.HandleFunc("/auth/login", g.handleLogin)
	mux.HandleFunc("/auth/session-login", g.handleSessionLogin)
	mux.HandleFunc("/mod/token", g.handleModToken)
	mux.HandleFunc("/mod/session", g.handleModSession)
	mux.HandleFunc("/mod/screenshot", g.handleScreenshotUpload)
	mux.HandleFunc("/mod/screenshots/", g.handleScreenshotFetch)

	authMiddleware := auth.Middleware(g.auth)
	mux.Handle("/api/me", authMiddleware(http.HandlerFunc(g.handleMe)))
	mux.Handle("/api/broker/status", authMiddleware(http.HandlerFunc(g.handleBrokerStatus)))
	mux.Handle("/api/broker/token", authMiddleware(http.HandlerFunc(g.handleBrokerToken)))
	mux.Handle("/api/sessions/", authMiddleware(http.HandlerFunc(g.handleSessionLookup)))
	mux.Handle("/api/player-command", authMiddleware(http.HandlerFunc(g.handlePlayerCommand)))
	mux.Handle("/api/admin-message", authMiddleware(http.HandlerFunc(g.handleAdminMessage)))

	return mux
}

// Run starts the gateway and blocks until the context is canceled or the
// server fails. Returns nil on graceful shutdown.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}
	g.addr.Store(ln.Addr().String())

	// The broker dials in the background; with auto-reconnect enabled the
	// initial dial outcome only affects how soon publishes start working.
	go func() {
		if err := g.broker.Connect(); err != nil {
			g.logger.Warn("broker connect failed, will keep retrying", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is
// already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown stops the HTTP server, disconnects from the broker, and closes
// the user directory.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	if err := g.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}

	g.broker.Close()

	if err := g.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
