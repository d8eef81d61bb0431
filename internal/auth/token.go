// ABOUTME: JWT issue/verify for operator credentials using HS256
// ABOUTME: Session-replay logins are tagged with a typ claim for lower trust

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// TokenTTL is the validity of issued operator tokens.
const TokenTTL = 24 * time.Hour

// claimSessionReplay tags tokens obtained by exchanging a live game session
// instead of account credentials. Downstream authorization treats these as
// lower-trust, non-persistent identities.
const claimSessionReplay = "session"

// Claims are the verified contents of an operator token.
type Claims struct {
	Subject       string
	Email         string
	SessionReplay bool
}

// Verifier issues and validates HS256 signed operator JWTs.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier with the given signing secret.
func NewVerifier(secret []byte) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret must not be empty")
	}
	return &Verifier{secret: secret}, nil
}

// Generate creates a signed token for the given subject. sessionReplay marks
// the credential as derived from a live game session rather than an account.
func (v *Verifier) Generate(subject, email string, sessionReplay bool) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(TokenTTL).Unix(),
	}
	if sessionReplay {
		claims["typ"] = claimSessionReplay
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// Verify validates the token and extracts its claims. Any token that does
// not parse, verify, or carry the required claims is rejected.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	email, _ := mapClaims["email"].(string)
	typ, _ := mapClaims["typ"].(string)

	return &Claims{
		Subject:       sub,
		Email:         email,
		SessionReplay: typ == claimSessionReplay,
	}, nil
}
