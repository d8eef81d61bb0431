// ABOUTME: Capability token issuance signed with the shared broker key
// ABOUTME: Tokens are HS256 JWTs carrying a channel->operations capability map

package broker

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptyCapability is returned when a token is requested with no
// capability grants at all.
var ErrEmptyCapability = errors.New("capability map must not be empty")

// TokenTTL is the fixed validity of issued capability tokens. Clients
// re-request on expiry; the gateway never renews a token.
const TokenTTL = time.Hour

// Capability maps a channel name to the operations permitted on it.
// Operations are drawn from: subscribe, publish, presence, history.
type Capability map[string][]string

// Token is a short-lived, capability-restricted broker credential.
type Token struct {
	Value      string     `json:"token"`
	ExpiresAt  time.Time  `json:"expires_at"`
	Capability Capability `json:"-"`
}

// IssueToken signs a capability token for the given identity. The identity
// may be empty for anonymous read-only subscribers. The token grants exactly
// the requested capability map, nothing more; the caller chooses the
// profile.
func (c *Client) IssueToken(identity string, capability Capability) (*Token, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if len(capability) == 0 {
		return nil, ErrEmptyCapability
	}

	capJSON, err := json.Marshal(capability)
	if err != nil {
		return nil, fmt.Errorf("encoding capability map: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(TokenTTL)
	claims := jwt.MapClaims{
		"iat":        now.Unix(),
		"exp":        expiresAt.Unix(),
		"capability": string(capJSON),
	}
	if identity != "" {
		claims["sub"] = identity
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tok.Header["kid"] = c.keyName

	value, err := tok.SignedString(c.keySecret)
	if err != nil {
		return nil, fmt.Errorf("signing capability token: %w", err)
	}

	return &Token{
		Value:      value,
		ExpiresAt:  expiresAt,
		Capability: capability,
	}, nil
}
