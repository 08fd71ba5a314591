/*
Package user contains the user account model and the persistence contract for it.

The messaging core treats user identities as opaque IDs supplied by the auth layer;
this package owns the account records those IDs point at.
*/
package user

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by Store implementations.
var (
	// ErrNotFound indicates that no account matches the given ID or email.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken indicates a unique-constraint conflict on the email column.
	ErrEmailTaken = errors.New("email already registered")
)

// User represents a registered account. The password hash never serializes.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	ProfilePic   string    `json:"profilePic"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile is the public slice of an account attached to chat-request listings.
type Profile struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic"`
}

// Profile returns the public view of the user.
func (u *User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		FullName:   u.FullName,
		ProfilePic: u.ProfilePic,
	}
}

// Store is the persistence contract for user accounts.
type Store interface {
	// Create inserts a new account and returns the stored record.
	// A duplicate email yields ErrEmailTaken.
	Create(ctx context.Context, fullName, email, passwordHash string) (*User, error)

	// GetByEmail returns the account registered under email, or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID returns the account with the given ID, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*User, error)

	// UpdateProfile applies the non-nil fields and returns the updated record.
	UpdateProfile(ctx context.Context, id string, fullName, profilePic *string) (*User, error)

	// UpdatePasswordByEmail replaces the stored password hash for the account
	// registered under email, or returns ErrNotFound.
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error

	// ListOthers returns every account except the one with excludeID.
	ListOthers(ctx context.Context, excludeID string) ([]User, error)

	// ListByIDs returns the accounts whose IDs appear in ids.
	ListByIDs(ctx context.Context, ids []string) ([]User, error)

	// Delete removes the account. Messages and chat requests referencing it
	// are removed by the storage layer's cascade rules.
	Delete(ctx context.Context, id string) error
}
