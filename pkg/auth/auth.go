// Package auth issues and verifies the HS256 bearer tokens accepted by the HTTP front end.
// This is a leaf package with no domain dependencies. Used by internal/api/middleware and cmd/wcc-mcp.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is used by IssueToken when ttl is zero.
const DefaultTokenTTL = 24 * time.Hour

// Issuer is stamped into every token and required when parsing.
const Issuer = "webcenter-content-mcp"

var (
	ErrEmptySecret  = errors.New("jwt secret is empty")
	ErrEmptySubject = errors.New("token subject is empty")
	ErrEmptyToken   = errors.New("token is empty")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the registered claims only; the subject identifies the caller in the audit log.
type Claims struct {
	jwt.RegisteredClaims
}

// ===== JWT FUNCTIONS =====

// IssueToken signs a token for subject valid for ttl.
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", ErrEmptySubject
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, nil
}

// ParseToken validates signature, expiry and issuer, and returns the claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Only HMAC; rejects alg substitution.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
