// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestExpiry(t *testing.T) {
	exp := time.Now().Add(10 * time.Hour).Truncate(time.Second)

	got, ok := Expiry(signedToken(t, jwt.MapClaims{"exp": exp.Unix()}))
	require.True(t, ok)
	assert.True(t, got.Equal(exp), "got %v, want %v", got, exp)
}

func TestExpiry_NoClaim(t *testing.T) {
	_, ok := Expiry(signedToken(t, jwt.MapClaims{"sub": "sync"}))
	assert.False(t, ok)
}

func TestExpiry_OpaqueToken(t *testing.T) {
	_, ok := Expiry("not-a-jwt")
	assert.False(t, ok)
}
