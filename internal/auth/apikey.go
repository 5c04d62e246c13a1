// Package auth guards the read-only statistics API with static API keys
package auth

import "sync"

// APIKeyAuth provides a simple API key check for the HTTP query surface.
// An instance configured with no keys treats every request as valid, so a
// deployment without API_KEYS set keeps the stats endpoints open.
type APIKeyAuth struct {
	mu        sync.RWMutex
	validKeys map[string]struct{}
}

// NewAPIKeyAuth creates a new API key authenticator
func NewAPIKeyAuth(keys []string) *APIKeyAuth {
	validKeys := make(map[string]struct{})
	for _, key := range keys {
		if key != "" {
			validKeys[key] = struct{}{}
		}
	}

	return &APIKeyAuth{
		validKeys: validKeys,
	}
}

// AddKey adds a new valid API key
func (a *APIKeyAuth) AddKey(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.validKeys[key] = struct{}{}
}

// RemoveKey removes a valid API key
func (a *APIKeyAuth) RemoveKey(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.validKeys, key)
}

// Open reports whether the authenticator accepts unauthenticated requests
func (a *APIKeyAuth) Open() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.validKeys) == 0
}

// IsValidKey checks if a key is valid
func (a *APIKeyAuth) IsValidKey(key string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.validKeys) == 0 {
		return true
	}
	_, valid := a.validKeys[key]
	return valid
}
