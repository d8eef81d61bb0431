// ABOUTME: Broker client wrapping the pub/sub network connection
// ABOUTME: Tracks connection state and provides fire-and-forget channel publish

package broker

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Broker errors
var (
	// ErrNotConfigured is returned when the shared broker key was never
	// configured at startup. This is terminal: the operator must fix the
	// deployment, retrying the call cannot succeed.
	ErrNotConfigured = errors.New("broker not configured")

	// ErrPublishFailed is returned when a channel publish does not reach the
	// broker. Transient: safe for the caller to retry immediately.
	ErrPublishFailed = errors.New("publish failed")
)

// ConnState is the broker connection lifecycle state.
type ConnState string

// Connection states. The vocabulary is fixed by the wire contract with
// deployed clients; do not rename.
const (
	StateNotConfigured ConnState = "not_configured"
	StateInitialized   ConnState = "initialized"
	StateConnecting    ConnState = "connecting"
	StateConnected     ConnState = "connected"
	StateDisconnected  ConnState = "disconnected"
	StateSuspended     ConnState = "suspended"
	StateFailed        ConnState = "failed"
)

// ConnectionState is a snapshot of the gateway's own connection to the broker.
type ConnectionState struct {
	Configured bool      `json:"configured"`
	Connected  bool      `json:"connected"`
	State      ConnState `json:"state"`
	Error      string    `json:"error,omitempty"`
}

// Config holds broker client settings.
type Config struct {
	// Key is the shared broker key in "name:secret" form. The name becomes
	// the key ID on issued tokens, the secret signs them and authenticates
	// this gateway's own connection. Empty means degraded mode.
	Key string

	// URL is the broker address, e.g. "tcp://localhost:1883".
	URL string

	// ClientID identifies this gateway instance to the broker.
	ClientID string
}

// Client is the gateway's handle to the pub/sub broker. A nil or
// unconfigured client degrades gracefully: token issuance and publish return
// their unavailable outcomes and the connection state reads not_configured.
type Client struct {
	keyName   string
	keySecret []byte
	conn      mqtt.Client
	logger    *slog.Logger

	mu    sync.RWMutex
	state ConnState
	err   string
}

// envelope is the wire shape of a published channel message.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// New creates a broker client from config. When cfg.Key is empty the
// returned client is unconfigured and every network-facing call reports the
// degraded outcome instead of crashing.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "broker")

	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		logger.Warn("broker key not configured, running degraded")
		return &Client{logger: logger}, nil
	}

	name, secret, ok := strings.Cut(key, ":")
	if !ok || name == "" || secret == "" {
		return nil, fmt.Errorf("broker key must be in name:secret form")
	}

	c := &Client{
		keyName:   name,
		keySecret: []byte(secret),
		logger:    logger,
		state:     StateInitialized,
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "mod-gateway"
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(clientID).
		SetUsername(name).
		SetPassword(secret).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	opts.OnConnect = func(mqtt.Client) {
		c.setState(StateConnected, "")
		c.logger.Info("broker connected", "url", cfg.URL)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		c.setState(StateDisconnected, err.Error())
		c.logger.Warn("broker connection lost", "error", err)
	}
	opts.OnReconnecting = func(mqtt.Client, *mqtt.ClientOptions) {
		c.setState(StateConnecting, "")
	}

	c.conn = mqtt.NewClient(opts)
	return c, nil
}

// Connect starts the broker connection. The client reconnects on its own
// afterwards; Connect only reports the initial dial outcome. No-op in
// degraded mode.
func (c *Client) Connect() error {
	if !c.Configured() {
		return nil
	}

	c.setState(StateConnecting, "")
	tok := c.conn.Connect()
	tok.Wait()
	if err := tok.Error(); err != nil {
		c.setState(StateFailed, err.Error())
		return fmt.Errorf("connecting to broker: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Disconnect(250)
		c.setState(StateDisconnected, "")
	}
}

// Configured reports whether a broker key was present at startup.
func (c *Client) Configured() bool {
	return c != nil && len(c.keySecret) > 0
}

// ConnectionState returns a snapshot of the cached connection state. It
// never blocks and never fails: an unconfigured client deterministically
// reads not_configured.
func (c *Client) ConnectionState() ConnectionState {
	if !c.Configured() {
		return ConnectionState{Configured: false, Connected: false, State: StateNotConfigured}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return ConnectionState{
		Configured: true,
		Connected:  c.state == StateConnected,
		State:      c.state,
		Error:      c.err,
	}
}

// Publish sends a single event+payload onto the named channel. One outbound
// write, no retry, no queueing; a dropped write surfaces as ErrPublishFailed
// carrying the transport cause.
func (c *Client) Publish(channel, event string, payload any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	data, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("%w: encoding payload: %v", ErrPublishFailed, err)
	}

	tok := c.conn.Publish(channel, 0, false, data)
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	return nil
}

func (c *Client) setState(s ConnState, errMsg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	c.err = errMsg
}
