// Package session holds the console's authentication state: the token
// store mirrors credentials to disk, and the manager drives the
// login/logout/me/refresh lifecycle.
package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// TokenStore keeps the current access token in memory and mirrors the
// access/refresh pair to a JSON file so a session survives a process
// restart. It performs no network calls.
type TokenStore struct {
	path string

	mu     sync.RWMutex
	access string
}

// NewTokenStore creates a store persisting to path. An empty path
// disables persistence (tokens live in memory only).
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// SetAccessToken replaces the in-memory access token. An empty token
// means unauthenticated.
func (s *TokenStore) SetAccessToken(token string) {
	s.mu.Lock()
	s.access = token
	s.mu.Unlock()
}

// AccessToken returns the current in-memory access token.
func (s *TokenStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

type storedTokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Persist writes both tokens to the backing file. When both are empty
// the file is removed entirely rather than left holding empty values.
func (s *TokenStore) Persist(access, refresh string) error {
	if s.path == "" {
		return nil
	}
	if access == "" && refresh == "" {
		err := os.Remove(s.path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}

	data, err := json.Marshal(storedTokens{Access: access, Refresh: refresh})
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0o600)
}

// ReadPersisted loads the persisted token pair. A missing, unreadable,
// or malformed file yields empty tokens; it never fails.
func (s *TokenStore) ReadPersisted() (access, refresh string) {
	if s.path == "" {
		return "", ""
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", ""
	}
	var stored storedTokens
	if err := json.Unmarshal(data, &stored); err != nil {
		return "", ""
	}
	return stored.Access, stored.Refresh
}
