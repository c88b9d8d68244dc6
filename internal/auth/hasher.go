// Package auth provides password hashing for user credentials.
package auth

import "golang.org/x/crypto/bcrypt"

// hashCost is the bcrypt work factor. High enough to resist offline brute
// force on current hardware.
const hashCost = 12

// HashPassword produces a salted bcrypt digest of the plaintext. The salt
// is randomized per call, so hashing the same plaintext twice yields
// different digests.
func HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), hashCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword reports whether the plaintext matches the stored digest.
// A malformed digest is treated as a mismatch, never an error.
func VerifyPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
