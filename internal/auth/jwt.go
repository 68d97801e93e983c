// Package auth issues and verifies the bearer tokens that gate the content
// and share APIs, and hashes account passwords.
//
// AUTHENTICATION FLOW:
//  1. POST /api/v1/signin with email + password
//  2. Server checks the bcrypt hash and returns a signed JWT in the body
//  3. The client sends it back on every protected call in the Authorization
//     header, either bare ("eyJ...") or as "Bearer eyJ..."
//  4. RequireAuth validates it and puts the user id in the request context
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"id":"<userID>","sub":"<userID>","iss":"second-brain","iat":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// Verification needs only the secret, never a database lookup.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "second-brain"

// MinSecretLength is the shortest signing secret NewTokenService accepts.
const MinSecretLength = 16

// ErrInvalidToken is returned by Validate for any token that must not be
// trusted: bad signature, wrong algorithm or issuer, expired, or no subject.
var ErrInvalidToken = errors.New("auth: invalid token")

// TokenService handles JWT creation and validation.
//
// ttl is the lifetime stamped into new tokens. Zero means tokens carry no
// "exp" claim at all and stay valid until the secret is rotated.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. There is no fallback secret: an empty or short one is an error.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("auth: JWT secret must be at least %d characters", MinSecretLength)
	}
	if ttl < 0 {
		return nil, errors.New("auth: token ttl must not be negative")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims is the JWT payload.
//
// The user id is carried twice: in the standard "sub" claim, and in "id",
// which is what existing web clients decode.
type claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Generate creates and signs a token for userID using the configured TTL.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, s.ttl)
}

// GenerateWithDuration creates a token that expires after d. A zero d omits
// the expiry; a negative d produces an already-expired token (tests use it).
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   issuer,
		},
	}
	if d != 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(d))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the user id in it.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Algorithm is HS256 (blocks "alg":"none" and RS/HS confusion)
//   - Issuer is "second-brain"
//   - Token is not expired, if it has an "exp" claim. When the service runs
//     with a TTL the claim is mandatory.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithIssuedAt(),
	}
	if s.ttl > 0 {
		opts = append(opts, jwt.WithExpirationRequired())
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		opts...,
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: token expired", ErrInvalidToken)
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%w: bad claims", ErrInvalidToken)
	}

	userID := c.Subject
	if userID == "" {
		userID = c.UserID
	}
	if userID == "" {
		return "", fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	return userID, nil
}
