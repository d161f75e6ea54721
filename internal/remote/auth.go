package remote

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthStore holds the bearer token issued by the remote store. The token is
// opaque to this client except for its expiry claim; the server is the only
// verifier of signatures.
type AuthStore struct {
	mu    sync.RWMutex
	token string
}

// NewAuthStore creates an AuthStore seeded with the given token (may be empty).
func NewAuthStore(token string) *AuthStore {
	return &AuthStore{token: token}
}

// SetToken replaces the current token.
func (a *AuthStore) SetToken(token string) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

// Token returns the current token, or "" if unauthenticated.
func (a *AuthStore) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

// Clear drops the current token.
func (a *AuthStore) Clear() {
	a.SetToken("")
}

// IsValid reports whether a token is present and its exp claim, if any,
// has not passed. The signature is not checked client-side.
func (a *AuthStore) IsValid() bool {
	tok := a.Token()
	if tok == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp == nil {
		// No exp claim: treat as a non-expiring token.
		return true
	}
	return exp.After(time.Now())
}
