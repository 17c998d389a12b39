package auth

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenExpired = errors.New("bearer token expired, sign in again")

var tokenValue atomic.Value // holds string

func SetCurrentToken(t string) { tokenValue.Store(t) }

func GetCurrentToken() string {
	if v := tokenValue.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ExpiresWithin reports whether the current token's exp claim falls inside d.
// The claim is read without signature verification, it is only a refresh hint.
// Tokens that do not parse or carry no exp claim are treated as non-expiring.
func ExpiresWithin(d time.Duration) bool {
	tok := GetCurrentToken()
	if tok == "" {
		return true
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < d
}

// EnsureFresh re-reads the token file when the in-memory token is about to
// expire, picking up a refresh performed by another process. Long-lived
// screens call this before starting a download.
func EnsureFresh() error {
	if !ExpiresWithin(30 * time.Second) {
		return nil
	}
	if t := LoadToken(); t != "" && !ExpiresWithin(30*time.Second) {
		return nil
	}
	return ErrTokenExpired
}
