package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return tok
}

func TestTokenStoreRoundTrip(t *testing.T) {
	SetCurrentToken("abc")
	require.Equal(t, "abc", GetCurrentToken())
	SetCurrentToken("")
	require.Equal(t, "", GetCurrentToken())
}

func TestExpiresWithin(t *testing.T) {
	req := require.New(t)

	SetCurrentToken(signedToken(t, jwt.MapClaims{"exp": time.Now().Add(10 * time.Second).Unix()}))
	req.True(ExpiresWithin(time.Minute))
	req.False(ExpiresWithin(time.Second))

	SetCurrentToken(signedToken(t, jwt.MapClaims{"exp": time.Now().Add(24 * time.Hour).Unix()}))
	req.False(ExpiresWithin(time.Minute))
}

func TestExpiresWithinNoExpClaim(t *testing.T) {
	SetCurrentToken(signedToken(t, jwt.MapClaims{"sub": "user-1"}))
	require.False(t, ExpiresWithin(time.Minute))
}

func TestExpiresWithinUnparsableToken(t *testing.T) {
	SetCurrentToken("not-a-jwt")
	require.False(t, ExpiresWithin(time.Minute))
}

func TestExpiresWithinEmptyToken(t *testing.T) {
	SetCurrentToken("")
	require.True(t, ExpiresWithin(time.Minute))
}
