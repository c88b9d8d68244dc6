package types

import "time"

// User represents an account in the system.
type User struct {
	// ID is the opaque unique identifier of the user.
	ID string `json:"id" db:"id"`

	// Email is the user's login email. Unique across all accounts,
	// stored case-sensitively.
	Email string `json:"email" db:"email"`

	// Name is the user's display name.
	Name string `json:"name" db:"name"`

	// PasswordHash stores the bcrypt digest of the user's password.
	// The plaintext is never persisted and this field is never exposed
	// in responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
