// ABOUTME: HTTP API handlers for login, broker tokens, relay commands, and mod reports
// ABOUTME: Maps service outcomes onto status codes for operator dashboard and mod clients

package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/skyhaven/mod-gateway/internal/auth"
	"github.com/skyhaven/mod-gateway/internal/broker"
	"github.com/skyhaven/mod-gateway/internal/relay"
)

// maxScreenshotBytes is the upload ceiling for a single screenshot. Anything
// larger is rejected at the boundary before it reaches the store.
const maxScreenshotBytes = 2 << 20

// anonymousModClientID is used for mod token requests that carry no client
// identifier.
const anonymousModClientID = "mod-anonymous"

// LoginRequest is the JSON request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionLoginRequest is the JSON request body for POST /auth/session-login.
type SessionLoginRequest struct {
	AccessToken string `json:"accessToken"`
}

// ModTokenRequest is the JSON request body for POST /mod/token.
type ModTokenRequest struct {
	ClientID string `json:"clientId"`
}

// ModSessionRequest is the JSON request body for POST /mod/session.
type ModSessionRequest struct {
	ClientID    string `json:"clientId"`
	AccessToken string `json:"accessToken"`
}

// SessionResponse is the JSON response for GET /api/sessions/{clientId}.
// AccessToken is a pointer so an absent session encodes as null, which is
// what deployed dashboards expect.
type SessionResponse struct {
	ClientID    string  `json:"clientId,omitempty"`
	AccessToken *string `json:"accessToken"`
	CapturedAt  string  `json:"capturedAt,omitempty"`
}

// PlayerCommandRequest is the JSON request body for POST /api/player-command.
type PlayerCommandRequest struct {
	PlayerName string `json:"playerName"`
	Command    string `json:"command"`
}

// AdminMessageRequest is the JSON request body for POST /api/admin-message.
type AdminMessageRequest struct {
	Message string `json:"message"`
}

func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (g *Gateway) sendJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// relayStatus maps a relay or broker outcome onto an HTTP status code.
// Validation failures are the caller's to fix, a missing broker key is a
// deployment problem, and a dropped publish is transient.
func relayStatus(err error) int {
	switch {
	case errors.Is(err, relay.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, broker.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, broker.ErrPublishFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleLogin handles POST /auth/login with email and password credentials.
func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		g.sendJSONError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := g.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			g.sendJSONError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		g.logger.Error("login failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "login failed")
		return
	}

	g.sendJSON(w, http.StatusOK, result)
}

// handleSessionLogin handles POST /auth/session-login. The access token is
// exchanged against the upstream game-session service; any upstream failure
// is reported as unauthorized.
func (g *Gateway) handleSessionLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req SessionLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.AccessToken) == "" {
		g.sendJSONError(w, http.StatusBadRequest, "accessToken is required")
		return
	}

	result, err := g.auth.LoginWithGameSession(r.Context(), req.AccessToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrInvalidSession) {
			g.sendJSONError(w, http.StatusUnauthorized, "invalid game session")
			return
		}
		g.logger.Error("session login failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "login failed")
		return
	}

	g.sendJSON(w, http.StatusOK, result)
}

// handleMe handles GET /api/me, returning the authenticated identity.
func (g *Gateway) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := auth.IdentityFrom(r.Context())
	if id == nil {
		g.sendJSONError(w, http.StatusUnauthorized, "no identity")
		return
	}

	g.sendJSON(w, http.StatusOK, auth.UserInfo{
		ID:    id.Subject(),
		Email: id.Email(),
		Role:  id.Role(),
	})
}

// handleBrokerStatus handles GET /api/broker/status.
func (g *Gateway) handleBrokerStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	g.sendJSON(w, http.StatusOK, g.broker.ConnectionState())
}

// handleBrokerToken handles GET /api/broker/token, issuing an operator
// capability token bound to the authenticated identity.
func (g *Gateway) handleBrokerToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := auth.IdentityFrom(r.Context())
	if id == nil {
		g.sendJSONError(w, http.StatusUnauthorized, "no identity")
		return
	}

	tok, err := g.broker.IssueToken(id.Email(), relay.OperatorCapability())
	if err != nil {
		g.sendJSONError(w, relayStatus(err), "token issuance unavailable")
		return
	}
	g.sendJSON(w, http.StatusOK, tok)
}

// handleModToken handles GET and POST /mod/token. Mods hold no operator
// credential, so the route is open; the token it issues is restricted to
// the mod capability profile.
func (g *Gateway) handleModToken(w http.ResponseWriter, r *http.Request) {
	var clientID string
	switch r.Method {
	case http.MethodGet:
		clientID = r.URL.Query().Get("clientId")
	case http.MethodPost:
		var req ModTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		clientID = req.ClientID
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		clientID = anonymousModClientID
	}

	tok, err := g.broker.IssueToken(clientID, relay.ModCapability())
	if err != nil {
		g.sendJSONError(w, relayStatus(err), "token issuance unavailable")
		return
	}
	g.sendJSON(w, http.StatusOK, tok)
}

// handleModSession handles POST /mod/session, recording the game session a
// mod instance reports. Latest report wins.
func (g *Gateway) handleModSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req ModSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	clientID := strings.TrimSpace(req.ClientID)
	accessToken := strings.TrimSpace(req.AccessToken)
	if clientID == "" || accessToken == "" {
		g.sendJSONError(w, http.StatusBadRequest, "clientId and accessToken are required")
		return
	}

	g.sessions.Put(clientID, accessToken)
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionLookup handles GET /api/sessions/{clientId}. An absent entry
// is not an error: the response carries a null accessToken.
func (g *Gateway) handleSessionLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	clientID := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	if clientID == "" || strings.Contains(clientID, "/") {
		g.sendJSONError(w, http.StatusBadRequest, "clientId is required")
		return
	}

	entry, ok := g.sessions.Get(clientID)
	if !ok {
		g.sendJSON(w, http.StatusOK, SessionResponse{AccessToken: nil})
		return
	}
	g.sendJSON(w, http.StatusOK, SessionResponse{
		ClientID:    entry.ClientID,
		AccessToken: &entry.AccessToken,
		CapturedAt:  entry.CapturedAt.UTC().Format(time.RFC3339Nano),
	})
}

// handleScreenshotUpload handles POST /mod/screenshot?clientId=X with a
// multipart image field. The image is stored first, then subscribers are
// notified; a failed notification surfaces so the mod resubmits and the
// next store overwrites this one.
func (g *Gateway) handleScreenshotUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	clientID := strings.TrimSpace(r.URL.Query().Get("clientId"))
	if clientID == "" {
		g.sendJSONError(w, http.StatusBadRequest, "clientId query parameter is required")
		return
	}

	// Bound the whole request body; the multipart framing adds little on
	// top of the image itself.
	r.Body = http.MaxBytesReader(w, r.Body, maxScreenshotBytes+64*1024)

	file, _, err := r.FormFile("image")
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "multipart image field is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxScreenshotBytes+1))
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "reading image")
		return
	}
	if len(image) > maxScreenshotBytes {
		g.sendJSONError(w, http.StatusRequestEntityTooLarge, "image exceeds 2 MiB limit")
		return
	}
	if len(image) == 0 {
		g.sendJSONError(w, http.StatusBadRequest, "image is empty")
		return
	}

	g.screenshots.Put(clientID, image)

	if err := g.relay.NotifyScreenshotUpdate(clientID); err != nil {
		g.sendJSONError(w, relayStatus(err), "screenshot stored but notification failed")
		return
	}
	g.sendJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleScreenshotFetch handles GET /mod/screenshots/{playerName}, serving
// the latest stored image.
func (g *Gateway) handleScreenshotFetch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	playerName := strings.TrimPrefix(r.URL.Path, "/mod/screenshots/")
	if playerName == "" || strings.Contains(playerName, "/") {
		g.sendJSONError(w, http.StatusBadRequest, "player name is required")
		return
	}

	entry, ok := g.screenshots.Get(playerName)
	if !ok {
		g.sendJSONError(w, http.StatusNotFound, "no screenshot for player")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(entry.Image)
}

// handlePlayerCommand handles POST /api/player-command.
func (g *Gateway) handlePlayerCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req PlayerCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := g.relay.SendPlayerCommand(req.PlayerName, req.Command); err != nil {
		g.sendJSONError(w, relayStatus(err), err.Error())
		return
	}
	g.sendJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleAdminMessage handles POST /api/admin-message.
func (g *Gateway) handleAdminMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req AdminMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := g.relay.SendAdminMessage(req.Message); err != nil {
		g.sendJSONError(w, relayStatus(err), err.Error())
		return
	}
	g.sendJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
