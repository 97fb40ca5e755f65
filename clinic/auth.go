package clinic

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Password schemes.
const (
	SchemeSHA256 = "sha256"
	SchemeBcrypt = "bcrypt"
)

// PasswordHasher turns a plaintext password into the string stored in users.csv.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// SHA256Hasher produces the lowercase hex digest used by existing user files.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(password string) (string, error) {
	return sha256Hex(password), nil
}

// BcryptHasher produces bcrypt hashes.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// NewHasher returns the hasher for a scheme name.
func NewHasher(scheme string) (PasswordHasher, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", SchemeSHA256:
		return SHA256Hasher{}, nil
	case SchemeBcrypt:
		return BcryptHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword checks password against a stored hash of either scheme.
func VerifyPassword(stored, password string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	want := strings.ToLower(stored)
	return subtle.ConstantTimeCompare([]byte(want), []byte(sha256Hex(password))) == 1
}

// Authenticate finds the user whose username matches case-insensitively and
// whose stored hash matches password. Several users sharing the name in
// different case are treated as a failed login.
func Authenticate(users []*User, username, password string) (*User, error) {
	want := strings.ToLower(strings.TrimSpace(username))
	var match *User
	for _, u := range users {
		if strings.ToLower(u.Username) != want {
			continue
		}
		if match != nil {
			return nil, ErrInvalidCredentials
		}
		match = u
	}
	if match == nil || !VerifyPassword(match.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return match, nil
}
