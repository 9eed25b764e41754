// Package auth provides the password hashing capability used by
// registration and login. Digests are opaque to the rest of the system.
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a digest from a plaintext password.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// VerifyPassword reports whether password matches the stored digest.
func VerifyPassword(password string, digest []byte) bool {
	return bcrypt.CompareHashAndPassword(digest, []byte(password)) == nil
}
