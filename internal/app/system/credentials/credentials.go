// Package credentials issues and verifies account credentials.
package credentials

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost matches the cost used for all stored password hashes.
const BcryptCost = 12

// tempCredentialBytes is the entropy of an issued temporary credential.
// 8 random bytes = 64 bits, hex-encoded to 16 characters.
const tempCredentialBytes = 8

// NewTemporary returns a fresh temporary credential for a provisioned
// account. The plaintext is emailed to the user and kept on the account only
// until the first-login password change.
func NewTemporary() (string, error) {
	buf := make([]byte, tempCredentialBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Hash bcrypt-hashes a plaintext password for storage.
func Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches the stored hash.
func Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
