// Package store provides the persisted user directory backing operator
// authentication, using SQLite.
//
// The gateway never writes users at runtime; the bootstrap command creates
// the initial admin account. Runtime access is read-only lookup by email
// (password login) and by ID (token validation).
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//
// Use NewSQLiteStore(":memory:") for tests.
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: Requested user does not exist
//   - ErrDuplicateEmail: Email already registered
//
// All methods accept context.Context for cancellation support.
package store
