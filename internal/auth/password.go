package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt accepts, in bytes.
const MaxPasswordBytes = 72

// Hasher hashes and checks passwords with bcrypt. The zero value uses bcrypt.DefaultCost.
type Hasher struct {
	Cost int
}

// HashPassword returns a salted bcrypt digest of plaintext. Each call uses a fresh salt.
func (h Hasher) HashPassword(plaintext string) (string, error) {
	cost := h.Cost
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether plaintext matches digest. A malformed digest is a mismatch.
func (h Hasher) CheckPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
