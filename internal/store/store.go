// ABOUTME: UserStore interface and data types for the operator user directory
// ABOUTME: Defines the User record and lookup contract backed by SQLite

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested user does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when creating a user with an email already taken
var ErrDuplicateEmail = errors.New("email already exists")

// Role constants for user accounts
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a persisted operator account. The gateway only ever reads users at
// runtime; accounts are created out-of-band via the bootstrap command.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// UserStore defines the lookup contract the auth gate requires from the
// user directory.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	CountUsers(ctx context.Context) (int, error)
}
