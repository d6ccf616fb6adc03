package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuimaru-ship/storefront/pkg/auth"
)

func signed(t *testing.T, claims auth.IDClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	require.NoError(t, err)
	return raw
}

func TestParseIDToken(t *testing.T) {
	now := time.Now()
	raw := signed(t, auth.IDClaims{
		Email: "staff@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "sub-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})

	claims, err := auth.ParseIDToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", claims.Subject)
	assert.Equal(t, "staff@example.com", claims.Email)

	left := auth.Remaining(raw, now)
	assert.InDelta(t, time.Hour.Seconds(), left.Seconds(), 2)
}

func TestRemainingOnGarbage(t *testing.T) {
	assert.Zero(t, auth.Remaining("not-a-jwt", time.Now()))
	assert.Zero(t, auth.Remaining("", time.Now()))
}
