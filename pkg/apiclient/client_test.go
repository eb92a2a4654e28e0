package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/samvad-api-client/pkg/apierror"
	"github.com/samvad-hq/samvad-api-client/pkg/endpoint"
	"github.com/samvad-hq/samvad-api-client/pkg/httpclient"
	"github.com/samvad-hq/samvad-api-client/pkg/metrics"
	"github.com/samvad-hq/samvad-api-client/pkg/session"
)

type stubTransport struct {
	mu   sync.Mutex
	reqs []httpclient.Request
	fn   func(httpclient.Request) (httpclient.Response, error)
}

func (s *stubTransport) Do(_ context.Context, req httpclient.Request) (httpclient.Response, error) {
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	s.mu.Unlock()
	return s.fn(req)
}

func (s *stubTransport) last() httpclient.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reqs[len(s.reqs)-1]
}

func reply(status int, body string) *stubTransport {
	return &stubTransport{fn: func(httpclient.Request) (httpclient.Response, error) {
		return &httpclient.StaticResponse{Status: status, Payload: []byte(body)}, nil
	}}
}

// echoTransport wraps the request body as the envelope data.
func echoTransport() *stubTransport {
	return &stubTransport{fn: func(req httpclient.Request) (httpclient.Response, error) {
		data := req.Body
		if data == nil {
			data = []byte("null")
		}
		body := append(append([]byte(`{"status":200,"data":`), data...), '}')
		return &httpclient.StaticResponse{Status: http.StatusOK, Payload: body}, nil
	}}
}

var syncDispatcher = DispatcherFunc(func(fn func()) { fn() })

func newTestClient(t *testing.T, tr httpclient.Client, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithHTTPClient(tr), WithDispatcher(syncDispatcher)}, opts...)
	c, err := New("https://api.example.com", opts...)
	require.NoError(t, err)
	return c
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	_, err := New("api.example.com")
	require.Error(t, err)
}

func TestCallEchoRoundTrip(t *testing.T) {
	c := newTestClient(t, echoTransport())
	payload := Payload{
		"name":   "Ana",
		"age":    float64(31),
		"tags":   []any{"a", "b"},
		"nested": map[string]any{"ok": true, "n": float64(2)},
	}

	res, err := Call[map[string]any](context.Background(), c, endpoint.Login, payload)
	require.NoError(t, err)
	assert.True(t, res.HasData)
	assert.Equal(t, map[string]any(payload), res.Value)
}

type loginReply struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
}

func TestCallDecodesTypedValue(t *testing.T) {
	c := newTestClient(t, reply(http.StatusOK, `{"status":200,"data":{"user_id":7,"name":"Ana"},"message":"ok"}`))
	res, err := Call[loginReply](context.Background(), c, endpoint.Login, Payload{"email": "a@b.io"})
	require.NoError(t, err)
	assert.Equal(t, loginReply{UserID: 7, Name: "Ana"}, res.Value)
}

func TestCallAckHasNoData(t *testing.T) {
	c := newTestClient(t, reply(http.StatusOK, `{"status":200,"data":true,"message":"sent"}`))
	res, err := Call[loginReply](context.Background(), c, endpoint.ForgotPassword, Payload{"email": "a@b.io"})
	require.NoError(t, err)
	assert.False(t, res.HasData)
	assert.Equal(t, loginReply{}, res.Value)
}

func TestCallServerFailureMessage(t *testing.T) {
	c := newTestClient(t, reply(http.StatusOK, `{"status":400,"message":"Invalid credentials"}`))
	_, err := Call[loginReply](context.Background(), c, endpoint.Login, nil)
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindApplication, apiErr.Kind)
	assert.Equal(t, "Invalid credentials", apiErr.Description)
}

func TestCallDecodeFailure(t *testing.T) {
	c := newTestClient(t, reply(http.StatusOK, `{"status":200,"data":{"user_id":"seven"}}`))
	_, err := Call[loginReply](context.Background(), c, endpoint.Login, nil)
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindDecode, apiErr.Kind)
	assert.Equal(t, apierror.TitleDataNotDecoded, apiErr.Title)
}

func TestCallPersistsAccessToken(t *testing.T) {
	sess := session.New()
	c := newTestClient(t, reply(http.StatusOK, `{"status":200,"data":{"user_id":1},"accessToken":"tok-1"}`), WithSession(sess))

	_, err := Call[loginReply](context.Background(), c, endpoint.Login, nil)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", sess.AccessToken())

	_, err = Call[loginReply](context.Background(), c, endpoint.Logout, nil)
	require.NoError(t, err)
	tr := c.http.(*stubTransport)
	assert.Equal(t, "Bearer tok-1", tr.last().Headers["Authorization"])
}

func TestCallUnauthenticatedEndpointOmitsBearer(t *testing.T) {
	sess := session.New()
	require.NoError(t, sess.SetAccessToken(context.Background(), "tok"))
	tr := reply(http.StatusOK, `{"status":200,"data":[]}`)
	c := newTestClient(t, tr, WithSession(sess))

	_, err := Call[[]any](context.Background(), c, endpoint.Countries, nil)
	require.NoError(t, err)
	assert.NotContains(t, tr.last().Headers, "Authorization")
}

func TestCallSessionOverride(t *testing.T) {
	clientSess, callSess := session.New(), session.New()
	c := newTestClient(t, reply(http.StatusOK, `{"status":200,"data":{},"accessToken":"per-call"}`), WithSession(clientSess))

	_, err := Call[map[string]any](context.Background(), c, endpoint.Login, nil, WithCallSession(callSess), WithHeader("X-Trace", "t1"))
	require.NoError(t, err)
	assert.Equal(t, "per-call", callSess.AccessToken())
	assert.Empty(t, clientSess.AccessToken())
	assert.Equal(t, "t1", c.http.(*stubTransport).last().Headers["X-Trace"])
}

func TestHTTP401FlagsReloginAndRunsHook(t *testing.T) {
	sess := session.New()
	var got []*apierror.Error
	c := newTestClient(t, reply(http.StatusUnauthorized, ``), WithSession(sess), WithHooks(Hooks{
		OnReloginRequired: func(_ context.Context, err *apierror.Error) { got = append(got, err) },
	}))

	_, err := Call[loginReply](context.Background(), c, endpoint.Logout, nil)
	require.True(t, apierror.IsAuthRequired(err))
	assert.True(t, sess.ReloginRequired())
	require.Len(t, got, 1)
	assert.Equal(t, http.StatusUnauthorized, got[0].Code)
}

func TestTransport401IsAuthRequiredWithoutRelogin(t *testing.T) {
	sess := session.New()
	hookCalls := 0
	tr := &stubTransport{fn: func(httpclient.Request) (httpclient.Response, error) {
		return nil, &httpclient.TransportError{Code: http.StatusUnauthorized, Err: errors.New("auth challenge")}
	}}
	c := newTestClient(t, tr, WithSession(sess), WithHooks(Hooks{
		OnReloginRequired: func(context.Context, *apierror.Error) { hookCalls++ },
	}))

	_, err := Call[loginReply](context.Background(), c, endpoint.Logout, nil)
	assert.True(t, apierror.IsAuthRequired(err))
	assert.False(t, sess.ReloginRequired())
	assert.Zero(t, hookCalls)
}

func TestHTTP503RunsMaintenanceHook(t *testing.T) {
	done := make(chan *apierror.Error, 1)
	c := newTestClient(t, reply(http.StatusServiceUnavailable, `<html><title>Down</title></html>`),
		WithMaintenanceDelay(0),
		WithHooks(Hooks{OnMaintenance: func(_ context.Context, err *apierror.Error) { done <- err }}),
	)

	_, err := Call[loginReply](context.Background(), c, endpoint.Login, nil)
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindUnavailable, apiErr.Kind)

	select {
	case hookErr := <-done:
		assert.Equal(t, apierror.TitleMaintenance, hookErr.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("maintenance hook not called")
	}
}

func TestUnknownTransportCodeFallsBackToUnstableNetwork(t *testing.T) {
	tr := &stubTransport{fn: func(httpclient.Request) (httpclient.Response, error) {
		return nil, &httpclient.TransportError{Code: 418, Err: errors.New("teapot")}
	}}
	c := newTestClient(t, tr)

	_, err := Call[loginReply](context.Background(), c, endpoint.Login, nil)
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindTransport, apiErr.Kind)
	assert.Equal(t, 418, apiErr.Code)
	assert.Equal(t, apierror.UnstableNetworkMessage, apiErr.Description)
}

func TestCallBadPayloadNeverReachesTransport(t *testing.T) {
	tr := echoTransport()
	c := newTestClient(t, tr)
	_, err := Call[loginReply](context.Background(), c, endpoint.Login, Payload{"ch": make(chan int)})
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindRequest, apiErr.Kind)
	assert.Empty(t, tr.reqs)
}

func TestCallRawDecodesWholeBody(t *testing.T) {
	c := newTestClient(t, reply(http.StatusOK, `[{"id":1,"name":"India"},{"id":2,"name":"Nepal"}]`))
	type country struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	got, err := CallRaw[[]country](context.Background(), c, endpoint.Countries, Payload{"q": "n"})
	require.NoError(t, err)
	assert.Equal(t, []country{{1, "India"}, {2, "Nepal"}}, got)
}

func TestGoDeliversExactlyOnce(t *testing.T) {
	c := newTestClient(t, echoTransport())
	var mu sync.Mutex
	calls := 0
	done := make(chan struct{})

	Go[map[string]any](context.Background(), c, endpoint.Login, Payload{"a": "b"}, func(res Result[map[string]any], err error) {
		mu.Lock()
		calls++
		mu.Unlock()
		assert.NoError(t, err)
		assert.Equal(t, "b", res.Value["a"])
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback not delivered")
	}
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func cancelledTransport() *stubTransport {
	return &stubTransport{fn: func(httpclient.Request) (httpclient.Response, error) {
		return nil, &httpclient.TransportError{Code: apierror.CodeExplicitlyCancelled, Err: context.Canceled}
	}}
}

func TestGoDropsCancelledResult(t *testing.T) {
	c := newTestClient(t, cancelledTransport())
	delivered := make(chan struct{}, 1)
	Go[loginReply](context.Background(), c, endpoint.Login, nil, func(Result[loginReply], error) { delivered <- struct{}{} })

	select {
	case <-delivered:
		t.Fatal("cancelled result should be dropped")
	case <-time.After(100 * time.Millisecond):
	}

	_, err := Call[loginReply](context.Background(), c, endpoint.Login, nil)
	assert.True(t, apierror.IsCancelled(err))
}

func TestGoDeliversCancelledWhenAsked(t *testing.T) {
	c := newTestClient(t, cancelledTransport(), WithDeliverCancelled())
	errs := make(chan error, 1)
	Go[loginReply](context.Background(), c, endpoint.Login, nil, func(_ Result[loginReply], err error) { errs <- err })

	select {
	case err := <-errs:
		assert.True(t, apierror.IsCancelled(err))
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled result not delivered")
	}
}

func TestMetricsCountOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewRequestMetrics(reg)
	c := newTestClient(t, echoTransport(), WithMetrics(m))

	_, err := Call[map[string]any](context.Background(), c, endpoint.Login, Payload{"a": 1})
	require.NoError(t, err)
	_, err = Call[map[string]any](context.Background(), c, endpoint.Logout, nil)
	require.NoError(t, err)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	outcomes := map[string]float64{}
	for _, mf := range mfs {
		if mf.GetName() != "api_client_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" {
					outcomes[l.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{metrics.OutcomeValue: 1, metrics.OutcomeAck: 1}, outcomes)
}

func TestUploadOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		f, hdr, err := r.FormFile("photo")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": 200,
			"data": map[string]any{
				"user_id": r.FormValue("user_id"),
				"file":    hdr.Filename,
				"size":    len(data),
				"type":    hdr.Header.Get("Content-Type"),
				"bearer":  r.Header.Get("Authorization"),
			},
		})
	}))
	defer srv.Close()

	sess := session.New()
	require.NoError(t, sess.SetAccessToken(context.Background(), "tok"))
	c, err := New(srv.URL, WithSession(sess), WithDispatcher(syncDispatcher))
	require.NoError(t, err)

	var last httpclient.Progress
	res, err := Upload[map[string]any](context.Background(), c, endpoint.UploadPhoto,
		Payload{"user_id": 9},
		[]httpclient.Part{ImagePart("photo", []byte("jpegbytes"))},
		WithProgress(func(p httpclient.Progress) { last = p }),
	)
	require.NoError(t, err)
	assert.Equal(t, "9", res.Value["user_id"])
	assert.Equal(t, float64(len("jpegbytes")), res.Value["size"])
	assert.Equal(t, "image/jpeg", res.Value["type"])
	assert.Equal(t, "Bearer tok", res.Value["bearer"])
	assert.Equal(t, int64(len("jpegbytes")), last.Sent)
	assert.InDelta(t, 1.0, last.Fraction(), 0.0001)
}

func TestUploadNumericFailureCode(t *testing.T) {
	c := newTestClient(t, reply(http.StatusBadRequest, `{"message":42}`))
	_, err := Upload[map[string]any](context.Background(), c, endpoint.UploadPhoto, nil, ImageParts("photo", []byte{1}))
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, 42, apiErr.Code)
	assert.Equal(t, apierror.MsgSomethingWrong, apiErr.Description)
}
