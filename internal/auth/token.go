// ABOUTME: Bearer token inspection using unverified JWT parsing
// ABOUTME: Lets credential sources drop tokens that have already expired

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrNoExpiry       = errors.New("token has no exp claim")
)

// Claims is the subset of session token claims the client cares about.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// ParseClaims reads the claims of a bearer JWT without verifying its
// signature. The client cannot verify tokens (it never holds the signing
// secret); the remote does that. This is only used to read the expiry.
func ParseClaims(tokenString string) (*Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	out := &Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if exp == nil {
		return out, ErrNoExpiry
	}
	out.ExpiresAt = exp.Time
	return out, nil
}

// Expired reports whether the token's exp claim is at or before now+skew.
// Tokens that are not JWTs, or carry no exp claim, are never considered
// expired; the remote decides what to do with them.
func Expired(tokenString string, now time.Time, skew time.Duration) bool {
	claims, err := ParseClaims(tokenString)
	if err != nil {
		return false
	}
	return !claims.ExpiresAt.After(now.Add(skew))
}
