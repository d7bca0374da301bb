// Package session holds the bearer credential between invocations.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"

	"taskman/internal/service"
)

// ErrNoCredential is returned by Token when nobody is logged in.
// It wraps service.ErrUnauthorized.
var ErrNoCredential = fmt.Errorf("%w: not logged in", service.ErrUnauthorized)

// Store is the session credential. It is an oauth2.TokenSource, so backends
// read the current credential on every request instead of capturing it once.
// A Store with an empty path lives in memory only.
type Store struct {
	mu    sync.RWMutex
	path  string
	token *oauth2.Token
}

// Open loads the credential stored at path, if any.
// A missing or unreadable token file yields an empty session.
func Open(path string) *Store {
	s := &Store{path: path}
	if path == "" {
		return s
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil || token.AccessToken == "" {
		return s
	}
	s.token = &token
	return s
}

// NewMemory returns a session that is never persisted.
func NewMemory() *Store {
	return &Store{}
}

// Token implements oauth2.TokenSource.
func (s *Store) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil || s.token.AccessToken == "" {
		return nil, ErrNoCredential
	}
	t := *s.token
	return &t, nil
}

// HasCredential reports whether a credential is stored.
func (s *Store) HasCredential() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != nil && s.token.AccessToken != ""
}

// SetCredential replaces the credential and persists it with mode 0600.
func (s *Store) SetCredential(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return errors.New("empty credential")
	}
	t := *token

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path != "" {
		if err := saveToken(s.path, &t); err != nil {
			return err
		}
	}
	s.token = &t
	return nil
}

// ClearCredential forgets the credential and removes the token file.
// Clearing an empty session is not an error.
func (s *Store) ClearCredential() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// saveToken saves a token to a file with mode 0600, creating the directory (0700).
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}
