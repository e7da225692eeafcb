package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// bcrypt only keys off the first 72 bytes of input. Longer passwords are
// truncated up front so Hash and Verify agree and GenerateFromPassword
// never rejects long input.
const maxPasswordBytes = 72

func passwordBytes(plain string) []byte {
	b := []byte(plain)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

// HashPassword produces a salted bcrypt digest. Two calls with the same
// input yield different digests; both verify against the original input.
func HashPassword(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(passwordBytes(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword reports whether plain matches digest. A wrong password and
// a corrupt digest both return false; callers cannot tell them apart.
func VerifyPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), passwordBytes(plain)) == nil
}
