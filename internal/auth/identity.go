// ABOUTME: Identity sum type for the two accepted credential forms
// ABOUTME: Provides WithIdentity/IdentityFrom for propagation via context

package auth

import "context"

// Identity is the authenticated caller of a privileged operation. Exactly
// two variants exist: AccountIdentity, resolved against the persisted user
// directory, and ReplayIdentity, derived from a live game session and never
// persisted.
type Identity interface {
	// Subject is the stable identifier carried in the credential.
	Subject() string
	// Email is the display email for the identity.
	Email() string
	// Role is the authorization role ("admin" or "user").
	Role() string

	isIdentity()
}

// AccountIdentity is an operator backed by a persisted account record.
type AccountIdentity struct {
	UserID       string
	AccountEmail string
	AccountRole  string
}

func (a AccountIdentity) Subject() string { return a.UserID }
func (a AccountIdentity) Email() string   { return a.AccountEmail }
func (a AccountIdentity) Role() string    { return a.AccountRole }
func (AccountIdentity) isIdentity()       {}

// ReplayIdentity is a transient operator identity obtained by exchanging a
// live upstream game-session token. It never touches the user directory and
// always carries the lowest role.
type ReplayIdentity struct {
	ProfileID  string
	PlayerName string
}

func (r ReplayIdentity) Subject() string { return r.ProfileID }
func (r ReplayIdentity) Email() string   { return r.PlayerName + sessionEmailSuffix }
func (ReplayIdentity) Role() string      { return "user" }
func (ReplayIdentity) isIdentity()       {}

// sessionEmailSuffix marks synthetic emails for session-replay identities.
const sessionEmailSuffix = "@session.minecraft"

// identityKey is the key type for storing Identity in context.Context.
type identityKey struct{}

// WithIdentity returns a new context with the identity attached.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom retrieves the Identity from the context, returning nil if not present.
func IdentityFrom(ctx context.Context) Identity {
	val := ctx.Value(identityKey{})
	if val == nil {
		return nil
	}
	id, ok := val.(Identity)
	if !ok {
		return nil
	}
	return id
}
