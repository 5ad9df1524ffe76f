// Package auth issues and verifies the HS256 bearer tokens that guard the API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents JWT claims
type Claims struct {
	UserID string `json:"userId,omitempty"`
	Env    string `json:"env,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates a raw bearer token.
type Verifier interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// JWTManager handles JWT token generation and validation
type JWTManager struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewJWTManager creates a new JWT manager. expiration is the default token lifetime.
func NewJWTManager(secret string, expiration time.Duration) *JWTManager {
	return &JWTManager{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// DefaultExpiration returns the lifetime used when GenerateToken gets a zero ttl.
func (m *JWTManager) DefaultExpiration() time.Duration {
	return m.expiration
}

// GenerateToken signs a token for userID. env is optional; ttl <= 0 uses the default lifetime.
func (m *JWTManager) GenerateToken(userID, env string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = m.expiration
	}

	now := m.now()
	claims := &Claims{
		UserID: userID,
		Env:    env,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken validates a JWT token and returns the claims.
// Only HS256 is accepted and an expiry is required.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
