package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned by Store.Get for missing keys.
var ErrNotFound = errors.New("session: key not found")

// Store persists session values between process runs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options configures concrete store backends.
type Options struct {
	BoltPath      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	RedisTTL      time.Duration
}

const defaultRedisPrefix = "samvad:session:"

// NewStore creates the configured storage backend.
func NewStore(typ string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "memory":
		return NewMemoryStore(), nil
	case "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(opts.BoltPath) == "" {
			return nil, fmt.Errorf("bbolt session store requires a path")
		}
		return openBolt(opts.BoltPath)
	case "redis":
		if strings.TrimSpace(opts.RedisAddr) == "" {
			return nil, fmt.Errorf("redis session store requires an address")
		}
		return openRedis(opts)
	default:
		return nil, fmt.Errorf("unsupported session store %q", typ)
	}
}

// memoryStore keeps values for the life of the process.
type memoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore returns an in-process Store.
func NewMemoryStore() Store {
	return &memoryStore{data: make(map[string]string)}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *memoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryStore) Close() error { return nil }

type noopStore struct{}

func (noopStore) Get(context.Context, string) (string, error) { return "", ErrNotFound }
func (noopStore) Set(context.Context, string, string) error   { return nil }
func (noopStore) Delete(context.Context, string) error        { return nil }
func (noopStore) Close() error                                { return nil }
