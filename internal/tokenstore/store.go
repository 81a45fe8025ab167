// Package tokenstore persists the single bearer token that identifies the
// current user across process restarts.
//
// A Store holds at most one token. An empty string means "no token"; Get on
// an empty store returns "" and a nil error. Stores do not track expiry: the
// server decides when a token is no longer valid, and the session clears the
// store when that happens.
package tokenstore

import "sync"

// Store is durable key-value persistence of exactly one credential string.
type Store interface {
	// Get returns the stored token, or "" when none is stored.
	Get() (string, error)

	// Set replaces the stored token.
	Set(token string) error

	// Clear removes the stored token. Clearing an empty store succeeds.
	Clear() error
}

// MemoryStore keeps the token in process memory only.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore creates a MemoryStore seeded with token (which may be empty).
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

// Get returns the held token, or "" when none is set.
func (m *MemoryStore) Get() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

// Set replaces the held token.
func (m *MemoryStore) Set(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

// Clear forgets the held token.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
