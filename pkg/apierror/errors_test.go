package apierror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMessageForKnownCodes(t *testing.T) {
	cases := map[int]string{
		http.StatusBadRequest:          "The server cannot or will not process the request due to an apparent client error.",
		http.StatusPaymentRequired:     "Authentication Required.",
		http.StatusServiceUnavailable:  "The server is currently unavailable (because it is overloaded or down for maintenance). Generally, this is a temporary state.",
		CodeCannotFindHost:             "The connection failed because the host could not be found. Please try again in a while.",
		CodeServerCertificateUntrusted: "The secure connection failed because the server's certificate is not trusted. Please try again in a while.",
	}
	for code, want := range cases {
		if got := MessageFor(code); got != want {
			t.Errorf("MessageFor(%d) = %q, want %q", code, got, want)
		}
	}
}

func TestMessageForUnknownCodeFallsBack(t *testing.T) {
	for _, code := range []int{418, 0, 999999, -42} {
		got := MessageFor(code)
		if got != UnstableNetworkMessage {
			t.Fatalf("MessageFor(%d) = %q, want unstable network fallback", code, got)
		}
		if Known(code) {
			t.Fatalf("Known(%d) should be false", code)
		}
	}
}

func TestTimedOutSharesUnstableMessage(t *testing.T) {
	if MessageFor(CodeTimedOut) != UnstableNetworkMessage {
		t.Fatalf("timed out should reuse the unstable network message")
	}
}

func TestTransportClassification(t *testing.T) {
	auth := Transport(http.StatusUnauthorized, "https://api.example/x", nil)
	if auth.Kind != KindAuthRequired || auth.Title != TitleAuthRequired {
		t.Fatalf("unexpected 401 transport error %+v", auth)
	}

	cause := context.Canceled
	cancelled := Transport(CodeExplicitlyCancelled, "https://api.example/x", cause)
	if !IsCancelled(cancelled) {
		t.Fatalf("expected cancelled kind, got %+v", cancelled)
	}
	if !errors.Is(cancelled, context.Canceled) {
		t.Fatalf("cancelled error should unwrap to context.Canceled")
	}

	dns := Transport(CodeDNSLookupFailed, "https://api.example/x", nil)
	if dns.Kind != KindTransport || dns.Description != MessageFor(CodeDNSLookupFailed) {
		t.Fatalf("unexpected dns error %+v", dns)
	}
	if dns.Title != TitleGeneric {
		t.Fatalf("expected generic title, got %q", dns.Title)
	}
}

func TestAsThroughWrapping(t *testing.T) {
	base := AuthRequired(http.StatusUnauthorized, "u")
	wrapped := fmt.Errorf("login: %w", base)
	if !IsAuthRequired(wrapped) {
		t.Fatalf("IsAuthRequired should see through wrapping")
	}
	got, ok := As(wrapped)
	if !ok || got != base {
		t.Fatalf("As returned %v %v", got, ok)
	}
}

func TestServerAndEmptyDefaultMessage(t *testing.T) {
	if got := Server(400, "", "u").Description; got != MsgSomethingWrong {
		t.Fatalf("Server default = %q", got)
	}
	if got := Empty(200, "", "u"); got.Description != MsgSomethingWrong || got.Kind != KindEmptyResponse {
		t.Fatalf("Empty default = %+v", got)
	}
	if got := Decode("u", errors.New("bad field")); got.Title != TitleDataNotDecoded || got.Code != http.StatusOK || got.Description != "bad field" {
		t.Fatalf("Decode = %+v", got)
	}
}
