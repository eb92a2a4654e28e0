package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRedis struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	setErr error
	closed bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisStorePrefixesKeys(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	store := newRedisStore(fake, "app:", time.Hour)

	s, err := Open(ctx, store)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SetAccessToken(ctx, "tok-redis"); err != nil {
		t.Fatalf("SetAccessToken: %v", err)
	}
	if fake.data["app:"+KeyAccessToken] != "tok-redis" {
		t.Fatalf("expected prefixed key, got %v", fake.data)
	}
	if fake.ttls["app:"+KeyAccessToken] != time.Hour {
		t.Fatalf("ttl not forwarded")
	}

	if err := s.SetAccessToken(ctx, ""); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	if _, err := store.Get(ctx, KeyAccessToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Close(); err != nil || !fake.closed {
		t.Fatalf("Close should close the client, err=%v", err)
	}
}

func TestRedisStoreDefaultPrefixAndErrors(t *testing.T) {
	fake := newFakeRedis()
	store := newRedisStore(fake, "", 0)
	if store.prefix != defaultRedisPrefix {
		t.Fatalf("prefix = %q", store.prefix)
	}

	fake.setErr = errors.New("READONLY")
	err := store.Set(context.Background(), "k", "v")
	if err == nil || !errors.Is(err, fake.setErr) {
		t.Fatalf("expected wrapped READONLY error, got %v", err)
	}
}
