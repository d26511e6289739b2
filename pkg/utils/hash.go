package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes an account credential with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword reports whether a submitted credential matches the stored
// bcrypt hash. Comparison timing is the bcrypt primitive's own.
func CheckPassword(plain, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
