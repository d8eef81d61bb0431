// Package auth is the gateway's operator auth gate.
//
// Two credential forms are accepted: a password login resolved against the
// persisted user directory, and a session-replay login that exchanges a live
// upstream game-session token for a transient identity. Both resolve to the
// Identity sum type; session-replay identities are tagged inside the JWT so
// downstream authorization can treat them as lower trust. Anything else
// fails closed.
//
// Operator JWTs here are distinct from the broker capability tokens issued
// by the broker package: they are signed with the gateway's own secret and
// gate access to the HTTP API, not to channels.
package auth
