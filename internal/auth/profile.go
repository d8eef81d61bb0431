// ABOUTME: Client for the upstream game-session validator service
// ABOUTME: Exchanges a bearer session token for the player profile, or invalid

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultProfileURL is the production profile endpoint of the game services
// API. A bearer session token presented here resolves to the player profile.
const DefaultProfileURL = "https://api.minecraftservices.com/minecraft/profile"

// ErrInvalidSession is returned when a presented game-session token does not
// resolve to a player profile. Network and parse failures are deliberately
// indistinguishable from a rejected token.
var ErrInvalidSession = errors.New("invalid or expired game session")

// Profile is the player identity behind a live game session.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProfileValidator resolves a game-session bearer token to a player profile.
type ProfileValidator interface {
	Validate(ctx context.Context, accessToken string) (*Profile, error)
}

// ProfileClient validates session tokens against the upstream HTTP endpoint.
type ProfileClient struct {
	url    string
	client *http.Client
}

// NewProfileClient creates a profile client. An empty url selects the
// production endpoint.
func NewProfileClient(url string) *ProfileClient {
	if url == "" {
		url = DefaultProfileURL
	}
	return &ProfileClient{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Validate exchanges the bearer token for the player profile. Every failure
// mode maps to ErrInvalidSession.
func (c *ProfileClient) Validate(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrInvalidSession, resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if profile.ID == "" || profile.Name == "" {
		return nil, ErrInvalidSession
	}

	return &profile, nil
}
