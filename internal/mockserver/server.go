// Package mockserver serves the account API endpoints with canned envelope
// responses. Every request payload is echoed back as the envelope data.
package mockserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samvad-hq/samvad-api-client/pkg/endpoint"
	"github.com/samvad-hq/samvad-api-client/pkg/metrics"
)

// Headers a caller sets to force failure responses.
const (
	HeaderHTTPStatus     = "X-Mock-Http-Status"
	HeaderEnvelopeStatus = "X-Mock-Envelope-Status"
	HeaderMessage        = "X-Mock-Message"
	HeaderOmitData       = "X-Mock-Omit-Data"
)

const (
	defaultTokenTTL  = time.Hour
	maxMultipartSize = 32 << 20
	maintenancePage  = `<!DOCTYPE html><html><head><title>Service Unavailable</title></head><body><h1>Down for maintenance</h1></body></html>`
)

// Options configures a Server.
type Options struct {
	// Secret signs the bearer tokens issued on login.
	Secret []byte
	// TokenTTL defaults to one hour.
	TokenTTL time.Duration
	// TokenEndpoints name the endpoints whose success envelope carries an
	// accessToken. Defaults to login.
	TokenEndpoints []string
	// Registry receives the server metrics and is exposed at /metrics when set.
	Registry *prometheus.Registry
	Log      Logger
}

// Server is the chi router backing the mock API.
type Server struct {
	router   chi.Router
	secret   []byte
	tokenTTL time.Duration
	issuers  map[string]bool
	metrics  *metrics.ServedMetrics
	log      Logger
	now      func() time.Time
}

// New builds a server routing every endpoint of cat.
func New(cat *endpoint.Catalog, opts Options) (*Server, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog must not be nil")
	}
	if len(opts.Secret) == 0 {
		return nil, fmt.Errorf("token secret is required")
	}
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	tokenEndpoints := opts.TokenEndpoints
	if len(tokenEndpoints) == 0 {
		tokenEndpoints = []string{endpoint.Login.Name}
	}

	s := &Server{
		secret:   opts.Secret,
		tokenTTL: ttl,
		issuers:  make(map[string]bool, len(tokenEndpoints)),
		log:      ensureLogger(opts.Log),
		now:      time.Now,
	}
	for _, name := range tokenEndpoints {
		s.issuers[name] = true
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if opts.Registry != nil {
		s.metrics = metrics.NewServedMetrics(opts.Registry)
		r.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}

	for _, ep := range cat.All() {
		r.Method(ep.Method, routePattern(ep.Path), s.handle(ep))
	}
	s.router = r
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoObj("mock server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown mock server: %w", err)
		}
		return nil
	}
}

// routePattern strips the literal query of an endpoint path. {name}
// placeholders are already chi URL parameters.
func routePattern(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func (s *Server) handle(ep endpoint.Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if code, ok := headerInt(r, HeaderHTTPStatus); ok {
			s.writeForced(w, ep, code, r.Header.Get(HeaderMessage))
			return
		}

		if ep.RequiresAuth && !s.authorized(r.Header.Get("Authorization")) {
			s.log.WarnObj("mock request unauthorized", "mock_request", map[string]any{
				"endpoint": ep.Name,
				"path":     r.URL.Path,
			})
			w.WriteHeader(http.StatusUnauthorized)
			s.metrics.Inc(ep.Name, http.StatusUnauthorized, 0)
			return
		}

		if code, ok := headerInt(r, HeaderEnvelopeStatus); ok && code != http.StatusOK {
			s.writeEnvelope(w, ep, map[string]any{
				"status":  code,
				"message": r.Header.Get(HeaderMessage),
			})
			return
		}

		data, err := echoData(r)
		if err != nil {
			s.writeEnvelope(w, ep, map[string]any{
				"status":  http.StatusBadRequest,
				"message": err.Error(),
			})
			return
		}

		env := map[string]any{"status": http.StatusOK, "message": "OK"}
		if r.Header.Get(HeaderOmitData) == "" {
			env["data"] = data
		}
		if s.issuers[ep.Name] {
			tok, err := s.issueToken(subjectOf(data))
			if err != nil {
				s.log.ErrorObj("mock token not issued", "error", err)
				http.Error(w, "token error", http.StatusInternalServerError)
				s.metrics.Inc(ep.Name, http.StatusInternalServerError, 0)
				return
			}
			env["accessToken"] = tok
		}
		s.writeEnvelope(w, ep, env)
	}
}

// writeForced answers with a transport-level status. 503 gets an HTML page, the
// rest a bare message body the upload decoder understands.
func (s *Server) writeForced(w http.ResponseWriter, ep endpoint.Endpoint, code int, msg string) {
	if code < 100 || code > 999 {
		code = http.StatusInternalServerError
	}
	s.metrics.Inc(ep.Name, code, 0)
	s.log.InfoObj("mock forced status", "mock_forced", map[string]any{"endpoint": ep.Name, "status": code})

	switch {
	case code == http.StatusServiceUnavailable:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(code)
		_, _ = io.WriteString(w, maintenancePage)
	case code == http.StatusUnauthorized, msg == "":
		w.WriteHeader(code)
	default:
		var message any = msg
		if n, err := strconv.Atoi(msg); err == nil {
			message = n
		}
		writeJSON(w, code, map[string]any{"message": message})
	}
}

func (s *Server) writeEnvelope(w http.ResponseWriter, ep endpoint.Endpoint, env map[string]any) {
	status, _ := env["status"].(int)
	s.metrics.Inc(ep.Name, http.StatusOK, status)
	s.log.DebugObj("mock envelope served", "mock_envelope", map[string]any{
		"endpoint": ep.Name,
		"status":   status,
		"has_data": env["data"] != nil,
	})
	writeJSON(w, http.StatusOK, env)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func headerInt(r *http.Request, name string) (int, bool) {
	raw := strings.TrimSpace(r.Header.Get(name))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func subjectOf(data any) string {
	if m, ok := data.(map[string]any); ok {
		if email, ok := m["email"].(string); ok {
			return email
		}
	}
	return "anonymous"
}
