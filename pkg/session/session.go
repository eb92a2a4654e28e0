// Package session holds the per-user state the API client reads and writes:
// the bearer token, the device push token and the relogin flag.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Keys under which values are persisted.
const (
	KeyAccessToken     = "accessToken"
	KeyDeviceToken     = "deviceToken"
	KeyReloginRequired = "reloginRequired"
)

// Session is owned by the caller and injected into the client. Reads are served
// from memory; writes go through to the Store under a single lock.
type Session struct {
	mu          sync.RWMutex
	store       Store
	accessToken string
	deviceToken string
	relogin     bool
}

// New returns an empty in-memory session.
func New() *Session {
	return &Session{store: NewMemoryStore()}
}

// Open loads a session from store.
func Open(ctx context.Context, store Store) (*Session, error) {
	if store == nil {
		store = NewMemoryStore()
	}
	s := &Session{store: store}

	var err error
	if s.accessToken, err = load(ctx, store, KeyAccessToken); err != nil {
		return nil, err
	}
	if s.deviceToken, err = load(ctx, store, KeyDeviceToken); err != nil {
		return nil, err
	}
	flag, err := load(ctx, store, KeyReloginRequired)
	if err != nil {
		return nil, err
	}
	s.relogin = flag == "1"
	return s, nil
}

func load(ctx context.Context, store Store, key string) (string, error) {
	v, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load session %s: %w", key, err)
	}
	return v, nil
}

// AccessToken returns the persisted bearer token, or "".
func (s *Session) AccessToken() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// SetAccessToken stores token. An empty token clears it.
func (s *Session) SetAccessToken(ctx context.Context, token string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.put(ctx, KeyAccessToken, token); err != nil {
		return err
	}
	s.accessToken = token
	return nil
}

// DeviceToken returns the push notification token registered for this device.
func (s *Session) DeviceToken() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deviceToken
}

func (s *Session) SetDeviceToken(ctx context.Context, token string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.put(ctx, KeyDeviceToken, token); err != nil {
		return err
	}
	s.deviceToken = token
	return nil
}

// ReloginRequired reports whether the server rejected the session with 401.
func (s *Session) ReloginRequired() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.relogin
}

// RequireRelogin sets the relogin flag.
func (s *Session) RequireRelogin(ctx context.Context) error {
	return s.setRelogin(ctx, true)
}

// ClearRelogin resets the relogin flag, typically after a successful login.
func (s *Session) ClearRelogin(ctx context.Context) error {
	return s.setRelogin(ctx, false)
}

func (s *Session) setRelogin(ctx context.Context, v bool) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	val := ""
	if v {
		val = "1"
	}
	if err := s.put(ctx, KeyReloginRequired, val); err != nil {
		return err
	}
	s.relogin = v
	return nil
}

// Clear drops the bearer token and the relogin flag. The device token survives.
func (s *Session) Clear(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.put(ctx, KeyAccessToken, ""); err != nil {
		return err
	}
	if err := s.put(ctx, KeyReloginRequired, ""); err != nil {
		return err
	}
	s.accessToken, s.relogin = "", false
	return nil
}

// Close releases the underlying store.
func (s *Session) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}

// put must be called with mu held.
func (s *Session) put(ctx context.Context, key, value string) error {
	var err error
	if value == "" {
		err = s.store.Delete(ctx, key)
	} else {
		err = s.store.Set(ctx, key, value)
	}
	if err != nil {
		return fmt.Errorf("persist session %s: %w", key, err)
	}
	return nil
}
