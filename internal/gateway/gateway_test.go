// ABOUTME: Tests for gateway construction and lifecycle
// ABOUTME: Covers degraded broker mode, config errors, and graceful shutdown

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhaven/mod-gateway/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.HTTPAddr = "127.0.0.1:0"
	cfg.Database.Path = ":memory:"
	cfg.Auth.JWTSecret = "test-secret"
	return cfg
}

func TestNew_DegradedWithoutBrokerKey(t *testing.T) {
	gw, err := New(testConfig(), nil)
	require.NoError(t, err)
	defer func() { _ = gw.store.Close() }()

	st := gw.broker.ConnectionState()
	assert.False(t, st.Configured)
	assert.Equal(t, "not_configured", string(st.State))
}

func TestNew_RequiresJWTSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWTSecret = ""
	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestNew_RejectsMalformedBrokerKey(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Key = "no-separator"
	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestRun_GracefulShutdown(t *testing.T) {
	gw, err := New(testConfig(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gw.Run(ctx) }()

	// Give the server a moment to bind before canceling.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("gateway did not shut down")
	}
}

func TestRun_ServesHealthEndToEnd(t *testing.T) {
	gw, err := New(testConfig(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- gw.Run(ctx) }()

	// The listener binds to an ephemeral port; poll until Serve picks it up.
	addr := waitForAddr(t, gw)
	resp, err := http.Get(fmt.Sprintf("http://%s/health", addr))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	// Degraded broker surfaces as 503 on mod token issuance.
	tokResp, err := http.Get(fmt.Sprintf("http://%s/mod/token", addr))
	require.NoError(t, err)
	defer tokResp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, tokResp.StatusCode)
	var errBody map[string]string
	require.NoError(t, json.NewDecoder(tokResp.Body).Decode(&errBody))
	assert.NotEmpty(t, errBody["error"])

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("gateway did not shut down")
	}
}

// waitForAddr polls until the HTTP server reports its bound address.
func waitForAddr(t *testing.T, gw *Gateway) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if addr := gw.boundAddr(); addr != "" {
			return addr
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server never bound")
	return ""
}
