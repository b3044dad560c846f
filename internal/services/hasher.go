package services

import (
	"golang.org/x/crypto/bcrypt"
)

// MinBcryptCost is the lowest work factor accepted for password hashes
const MinBcryptCost = bcrypt.DefaultCost

// bcryptHasher implements PasswordHasher with bcrypt
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt password hasher.
// Costs outside [MinBcryptCost, bcrypt.MaxCost] are clamped into that range.
func NewBcryptHasher(cost int) *bcryptHasher {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &bcryptHasher{cost: cost}
}

// Hash returns a salted bcrypt hash of password
func (h *bcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare returns nil when password matches hash.
// bcrypt ignores input past MaxPasswordBytes, so a longer password never
// matches; it is still checked against the hash to keep the cost uniform.
func (h *bcryptHasher) Compare(hash, password string) error {
	if len(password) > MaxPasswordBytes {
		_ = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password[:MaxPasswordBytes]))
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
