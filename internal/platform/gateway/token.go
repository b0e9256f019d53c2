package gateway

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errNoExpiry = errors.New("token carries no expiry claim")

// parseExpiry extracts the exp claim from a bearer token without verifying
// its signature. Signature verification is the server's job; the client only
// needs the expiry instant to decide when to renew.
func parseExpiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// aboutToExpire reports whether the token expires within window of now.
// A malformed token or one without an exp claim counts as expiring, so a
// broken credential is renewed (and, failing that, the session ends) rather
// than being sent around indefinitely.
func aboutToExpire(token string, window time.Duration, now time.Time) bool {
	exp, err := parseExpiry(token)
	if err != nil {
		return true
	}
	return !exp.After(now.Add(window))
}

// expired reports whether the token's expiry is already past. Malformed
// tokens count as expired.
func expired(token string, now time.Time) bool {
	exp, err := parseExpiry(token)
	if err != nil {
		return true
	}
	return !exp.After(now)
}
