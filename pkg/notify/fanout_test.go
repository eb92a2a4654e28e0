package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type stubPublisher struct {
	mu     sync.Mutex
	id     string
	typ    string
	err    error
	events []Event
	closed bool
}

func (s *stubPublisher) ID() string   { return s.id }
func (s *stubPublisher) Type() string { return s.typ }

func (s *stubPublisher) Publish(_ context.Context, evt Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	return s.err
}

func (s *stubPublisher) Close() error {
	s.closed = true
	return nil
}

func (s *stubPublisher) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	fanout := NewFanout([]Publisher{
		&stubPublisher{id: "ok", typ: "http"},
		nil,
		&stubPublisher{id: "bad", typ: "http", err: errors.New("failed")},
	})
	if fanout.Size() != 2 {
		t.Fatalf("nil publishers should be dropped, size=%d", fanout.Size())
	}
	count, err := fanout.Publish(context.Background(), Event{})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
}

func TestFanoutCloseReachesWrappedPublishers(t *testing.T) {
	plain := &stubPublisher{id: "a", typ: "http"}
	inner := &stubPublisher{id: "b", typ: "pubsub"}
	fanout := NewFanout([]Publisher{plain, &filtered{Publisher: inner, cfg: PublisherConfig{Events: []string{EventMaintenance}}}})

	if err := fanout.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !plain.closed || !inner.closed {
		t.Fatalf("expected both publishers closed, plain=%v inner=%v", plain.closed, inner.closed)
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	pubs, err := BuildAll(context.Background(), reg, []PublisherConfig{
		{ID: "http", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://example.com", Method: "POST"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(pubs) != 1 {
		t.Fatalf("expected 1 publisher, got %d", len(pubs))
	}
}

func TestBuildAllUnknownType(t *testing.T) {
	_, err := BuildAll(context.Background(), DefaultRegistry(), []PublisherConfig{{ID: "x", Type: "kafka"}}, nil)
	if err == nil {
		t.Fatalf("expected error for unregistered type")
	}
}

func TestRegistryFiltersEvents(t *testing.T) {
	stub := &stubPublisher{id: "maint", typ: "stub"}
	reg := NewRegistry(map[string]Builder{
		"stub": func(context.Context, PublisherConfig, Logger) (Publisher, error) { return stub, nil },
	})
	pub, err := reg.PublisherFor(context.Background(), PublisherConfig{ID: "maint", Type: "stub", Events: []string{EventMaintenance}}, nil)
	if err != nil {
		t.Fatalf("PublisherFor: %v", err)
	}

	_ = pub.Publish(context.Background(), Event{Type: EventReloginRequired})
	_ = pub.Publish(context.Background(), Event{Type: EventMaintenance})
	if stub.calls() != 1 || stub.events[0].Type != EventMaintenance {
		t.Fatalf("expected only maintenance event, got %#v", stub.events)
	}
}
