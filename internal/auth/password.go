package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a salted bcrypt digest at the default cost (10).
// Hashing the same plaintext twice yields different digests.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword reports whether pw produced hash. Comparison is constant
// time inside bcrypt; a malformed digest is a plain false, never a panic.
func CheckPassword(hash, pw string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
	return err == nil
}
