// ABOUTME: Auth gate validating operator credentials before privileged relay operations
// ABOUTME: Password login against the user directory, session-replay login via upstream

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/skyhaven/mod-gateway/internal/store"
)

// ErrInvalidCredentials is returned for every failed login, without
// distinguishing unknown account from wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserInfo is the public shape of an identity returned to login callers.
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginResult carries the issued token and the resolved identity.
type LoginResult struct {
	Token string   `json:"access_token"`
	User  UserInfo `json:"user"`
}

// Service is the auth gate. It accepts exactly two credential forms - a
// persisted account, or a transient game-session exchange - and fails closed
// on anything else.
type Service struct {
	users    store.UserStore
	verifier *Verifier
	profiles ProfileValidator
	logger   *slog.Logger
}

// NewService creates the auth gate.
func NewService(users store.UserStore, verifier *Verifier, profiles ProfileValidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:    users,
		verifier: verifier,
		profiles: profiles,
		logger:   logger.With("component", "auth"),
	}
}

// Login authenticates with email and password against the user directory
// and issues an operator token on success.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.verifier.Generate(user.ID, user.Email, false)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("operator login", "user_id", user.ID)
	return &LoginResult{
		Token: token,
		User:  UserInfo{ID: user.ID, Email: user.Email, Role: user.Role},
	}, nil
}

// LoginWithGameSession validates a live upstream game-session token and
// issues a session-tagged operator credential. The user directory is never
// touched: the identity exists only for the lifetime of the token.
func (s *Service) LoginWithGameSession(ctx context.Context, accessToken string) (*LoginResult, error) {
	profile, err := s.profiles.Validate(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	identity := ReplayIdentity{ProfileID: profile.ID, PlayerName: profile.Name}
	token, err := s.verifier.Generate(identity.Subject(), identity.Email(), true)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("session-replay login", "player", profile.Name)
	return &LoginResult{
		Token: token,
		User:  UserInfo{ID: identity.Subject(), Email: identity.Email(), Role: identity.Role()},
	}, nil
}

// Authenticate resolves a presented token to one of the two identity forms.
// Account tokens are re-checked against the user directory; session-replay
// tokens are rebuilt from their claims alone. Fails closed.
func (s *Service) Authenticate(ctx context.Context, token string) (Identity, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	if claims.SessionReplay {
		return ReplayIdentity{
			ProfileID:  claims.Subject,
			PlayerName: playerNameFromEmail(claims.Email),
		}, nil
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	return AccountIdentity{
		UserID:       user.ID,
		AccountEmail: user.Email,
		AccountRole:  user.Role,
	}, nil
}

// playerNameFromEmail recovers the player name from a synthetic
// session-replay email.
func playerNameFromEmail(email string) string {
	if len(email) > len(sessionEmailSuffix) && email[len(email)-len(sessionEmailSuffix):] == sessionEmailSuffix {
		return email[:len(email)-len(sessionEmailSuffix)]
	}
	return email
}
