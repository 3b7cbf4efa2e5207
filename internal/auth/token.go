// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Expiry inspects a bearer token as an unverified JWT and returns its exp
// claim. The catalog treats the token as opaque, so this is best-effort:
// a token that is not a JWT, or carries no exp, yields ok=false rather
// than an error. Callers use it to log time-to-expiry and to fail fast on
// a token that is already dead; there is no refresh mid-run.
func Expiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
