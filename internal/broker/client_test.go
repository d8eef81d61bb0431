// ABOUTME: Tests for the broker client: degraded mode, publish, connection state
// ABOUTME: Uses an in-process fake MQTT connection instead of a live broker

package broker

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeToken implements mqtt.Token with an immediate result.
type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

// fakeConn records publishes. Unused mqtt.Client methods panic via the
// embedded nil interface, which is fine for these tests.
type fakeConn struct {
	mqtt.Client
	topic      string
	payload    []byte
	publishErr error
}

func (f *fakeConn) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	f.topic = topic
	f.payload = payload.([]byte)
	return &fakeToken{err: f.publishErr}
}

func newTestClient(t *testing.T, conn mqtt.Client) *Client {
	t.Helper()
	c, err := New(Config{Key: "app:test-secret", URL: "tcp://localhost:1883"}, nil)
	require.NoError(t, err)
	c.conn = conn
	return c
}

func TestNew_DegradedWithoutKey(t *testing.T) {
	c, err := New(Config{}, nil)
	require.NoError(t, err)

	assert.False(t, c.Configured())

	state := c.ConnectionState()
	assert.Equal(t, ConnectionState{Configured: false, Connected: false, State: StateNotConfigured}, state)

	err = c.Publish("players", "presence", map[string]string{"p": "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = c.IssueToken("", Capability{"players": {"subscribe"}})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNew_MalformedKey(t *testing.T) {
	_, err := New(Config{Key: "no-separator", URL: "tcp://localhost:1883"}, nil)
	assert.Error(t, err)

	_, err = New(Config{Key: ":missing-name", URL: "tcp://localhost:1883"}, nil)
	assert.Error(t, err)
}

func TestPublish_Envelope(t *testing.T) {
	conn := &fakeConn{}
	c := newTestClient(t, conn)

	err := c.Publish("player-commands", "player-command", map[string]string{
		"targetPlayer": "Notch",
		"command":      "/fly",
	})
	require.NoError(t, err)

	assert.Equal(t, "player-commands", conn.topic)

	var env struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(conn.payload, &env))
	assert.Equal(t, "player-command", env.Event)
	assert.Equal(t, "/fly", env.Data["command"])
	assert.Equal(t, "Notch", env.Data["targetPlayer"])
}

func TestPublish_TransportError(t *testing.T) {
	conn := &fakeConn{publishErr: errors.New("connection refused")}
	c := newTestClient(t, conn)

	err := c.Publish("admin-messages", "admin-message", map[string]string{"message": "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPublishFailed)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestConnectionState_Configured(t *testing.T) {
	c := newTestClient(t, &fakeConn{})

	// Before any connect attempt the client is initialized but not connected
	state := c.ConnectionState()
	assert.True(t, state.Configured)
	assert.False(t, state.Connected)
	assert.Equal(t, StateInitialized, state.State)

	c.setState(StateConnected, "")
	state = c.ConnectionState()
	assert.True(t, state.Connected)
	assert.Equal(t, StateConnected, state.State)

	c.setState(StateDisconnected, "broken pipe")
	state = c.ConnectionState()
	assert.False(t, state.Connected)
	assert.Equal(t, StateDisconnected, state.State)
	assert.Equal(t, "broken pipe", state.Error)
}
