// bcrypt password hashing.
//
// bcrypt generates a random salt per hash, embeds salt and cost in the
// output, and is deliberately slow. Hash format:
//
//	$2a$10$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (10 rounds → 2^10 iterations)
//	 version

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
// Set cost so that hashing takes a few hundred milliseconds on production
// hardware.
const DefaultCost = 10

// ErrPasswordMismatch is returned by Verify when the password is wrong.
var ErrPasswordMismatch = errors.New("auth: invalid password")

// MaxPasswordBytes is bcrypt's input limit. Characters outside ASCII take
// more than one byte, so a short password can still exceed it.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned by Hash for input over MaxPasswordBytes.
var ErrPasswordTooLong = errors.New("auth: password must be 72 bytes or fewer")

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct rather than free functions so the cost can be injected:
// tests use bcrypt.MinCost (4) and run in milliseconds.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the given bcrypt cost.
// Zero selects DefaultCost.
func NewPasswordService(cost int) (*PasswordService, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("auth: bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &PasswordService{cost: cost}, nil
}

// NewPasswordServiceForTest creates a PasswordService with the minimum cost.
// Do NOT use in production.
func NewPasswordServiceForTest() *PasswordService {
	return &PasswordService{cost: bcrypt.MinCost}
}

// Hash hashes the given plaintext password with bcrypt.
//
// Returns ErrPasswordTooLong if the plaintext is longer than
// MaxPasswordBytes; bcrypt would otherwise reject or truncate it.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt hash.
//
// A wrong password yields ErrPasswordMismatch; a malformed hash yields a
// different error. bcrypt compares in constant time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
