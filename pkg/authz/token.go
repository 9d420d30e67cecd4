package authz

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExtractExpiry recovers the expiry timestamp from a JWT-shaped access
// token without verifying its signature. The core trusts the identity
// backend; this is only a convenience for login responses that omit an
// explicit expiresAt. Returns nil for opaque tokens, malformed tokens and
// tokens without an exp claim; those credentials fall back to the legacy
// "valid while present" rule.
func ExtractExpiry(token string) *time.Time {
	if token == "" {
		return nil
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}
