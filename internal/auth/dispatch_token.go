package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DispatchToken checks bearer tokens against a bcrypt hash so the plaintext
// never has to live in the server's environment.
type DispatchToken struct {
	hash []byte
}

// NewDispatchToken wraps a bcrypt hash, rejecting malformed hashes.
func NewDispatchToken(hash string) (*DispatchToken, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid dispatch token hash: %w", err)
	}
	return &DispatchToken{hash: []byte(hash)}, nil
}

// Verify reports whether token matches the hash.
func (d *DispatchToken) Verify(token string) bool {
	if token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(d.hash, []byte(token)) == nil
}

// HashDispatchToken returns the bcrypt hash to put in DISPATCH_TOKEN_HASH.
func HashDispatchToken(token string) (string, error) {
	if len(token) < 16 {
		return "", fmt.Errorf("dispatch token must be at least 16 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hash), nil
}
