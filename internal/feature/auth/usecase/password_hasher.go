package usecase

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// sha256Hasher stores the unsalted SHA-256 hex digest of the password.
// It is compatible with credential tables written by earlier deployments but is weak;
// prefer bcryptHasher for new installations.
type sha256Hasher struct{}

// Compile-time check to ensure sha256Hasher implements PasswordHasher.
var _ PasswordHasher = sha256Hasher{}

// NewSHA256Hasher returns the legacy-compatible hasher.
func NewSHA256Hasher() sha256Hasher {
	return sha256Hasher{}
}

// Hash returns the lowercase hex SHA-256 digest of password.
func (sha256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

// Verify compares digests in constant time.
func (h sha256Hasher) Verify(hash, password string) bool {
	got, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(got), []byte(hash)) == 1
}

// bcryptHasher stores salted bcrypt hashes.
type bcryptHasher struct {
	cost int
}

// Compile-time check to ensure bcryptHasher implements PasswordHasher.
var _ PasswordHasher = bcryptHasher{}

// NewBcryptHasher returns a bcrypt hasher. A cost outside bcrypt's range falls back to the default.
func NewBcryptHasher(cost int) bcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return bcryptHasher{cost: cost}
}

func (h bcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hashed), nil
}

func (h bcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NewPasswordHasher selects a hasher by name: "sha256" (or empty) or "bcrypt".
func NewPasswordHasher(name string) (PasswordHasher, error) {
	switch name {
	case "", "sha256":
		return NewSHA256Hasher(), nil
	case "bcrypt":
		return NewBcryptHasher(bcrypt.DefaultCost), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}
