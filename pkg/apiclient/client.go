// Package apiclient builds requests for the account API, executes them, and
// turns the response envelope into a typed value or an *apierror.Error.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/samvad-hq/samvad-api-client/pkg/apierror"
	"github.com/samvad-hq/samvad-api-client/pkg/endpoint"
	"github.com/samvad-hq/samvad-api-client/pkg/envelope"
	"github.com/samvad-hq/samvad-api-client/pkg/httpclient"
	"github.com/samvad-hq/samvad-api-client/pkg/metrics"
	"github.com/samvad-hq/samvad-api-client/pkg/session"
)

const (
	defaultTimeout          = 60 * time.Second
	defaultMaintenanceDelay = 100 * time.Millisecond
)

// Client executes endpoint calls against one base URL.
type Client struct {
	baseURL          string
	http             httpclient.Client
	log              Logger
	session          *session.Session
	hooks            Hooks
	metrics          *metrics.RequestMetrics
	dispatcher       Dispatcher
	timeout          time.Duration
	maintenanceDelay time.Duration
	deliverCancelled bool
}

// New returns a client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := NormalizeURL(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	c := &Client{
		baseURL:          baseURL,
		log:              noopLogger{},
		dispatcher:       goDispatcher,
		timeout:          defaultTimeout,
		maintenanceDelay: defaultMaintenanceDelay,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(c.timeout)
	}
	return c, nil
}

// BaseURL returns the URL endpoint paths are resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// Session returns the client's default session, which may be nil.
func (c *Client) Session() *session.Session { return c.session }

func (c *Client) callConfig(opts []CallOption) callConfig {
	cc := callConfig{session: c.session}
	for _, opt := range opts {
		if opt != nil {
			opt(&cc)
		}
	}
	return cc
}

func (c *Client) headers(ep endpoint.Endpoint, cc callConfig) map[string]string {
	h := make(map[string]string, len(cc.headers)+1)
	if ep.RequiresAuth {
		if tok := cc.session.AccessToken(); tok != "" {
			h["Authorization"] = "Bearer " + tok
		}
	}
	for k, v := range cc.headers {
		h[k] = v
	}
	return h
}

// decodeFunc receives structured data of a successful response.
type decodeFunc func(data []byte, url string) error

// do runs one request through transport, classification, side effects,
// decoding, logging and metrics.
func (c *Client) do(ctx context.Context, ep endpoint.Endpoint, req httpclient.Request, mode envelope.Mode, cc callConfig, decode decodeFunc) error {
	start := time.Now()
	c.log.DebugObj("api request", "api_request", map[string]any{
		"endpoint":     ep.Name,
		"method":       req.Method,
		"url":          req.URL,
		"mode":         mode.String(),
		"request_id":   req.Headers[headerRequestID],
		"payload_keys": payloadKeys(req),
		"body_bytes":   len(req.Body),
	})

	var out envelope.Outcome
	resp, err := c.http.Do(ctx, req)
	status := 0
	if err != nil {
		out = envelope.Outcome{Kind: envelope.Failure, Err: apierror.Transport(transportCode(err), req.URL, err)}
	} else {
		status = resp.StatusCode()
		out = envelope.Classify(resp, req.URL, mode)
	}

	c.applyEffects(ctx, cc.session, out)

	if out.Kind == envelope.Value && decode != nil {
		if derr := decode(out.Data, req.URL); derr != nil {
			out.Kind = envelope.Failure
			if apiErr, ok := apierror.As(derr); ok {
				out.Err = apiErr
			} else {
				out.Err = apierror.Decode(req.URL, derr)
			}
		}
	}

	elapsed := time.Since(start)
	c.metrics.Observe(ep.Name, req.Method, outcomeLabel(out.Kind), elapsed)

	if out.Kind == envelope.Failure {
		fields := map[string]any{
			"endpoint":    ep.Name,
			"url":         req.URL,
			"status":      status,
			"kind":        string(out.Err.Kind),
			"code":        out.Err.Code,
			"title":       out.Err.Title,
			"description": out.Err.Description,
			"elapsed_ms":  elapsed.Milliseconds(),
		}
		if out.Detail != "" {
			fields["detail"] = out.Detail
		}
		if out.Err.Cause != nil {
			fields["cause"] = out.Err.Cause.Error()
		}
		c.log.WarnObj("api request failed", "api_error", fields)
		return out.Err
	}

	c.log.InfoObj("api response", "api_response", map[string]any{
		"endpoint":   ep.Name,
		"url":        req.URL,
		"status":     status,
		"outcome":    out.Kind.String(),
		"elapsed_ms": elapsed.Milliseconds(),
	})
	return nil
}

// applyEffects persists the token, flags the session and schedules hooks.
func (c *Client) applyEffects(ctx context.Context, sess *session.Session, out envelope.Outcome) {
	if out.AccessToken != "" && sess != nil {
		if err := sess.SetAccessToken(ctx, out.AccessToken); err != nil {
			c.log.ErrorObj("persist access token failed", "error", err)
		}
	}

	if out.Relogin {
		if sess != nil {
			if err := sess.RequireRelogin(ctx); err != nil {
				c.log.ErrorObj("persist relogin flag failed", "error", err)
			}
		}
		if hook := c.hooks.OnReloginRequired; hook != nil {
			hookCtx := context.WithoutCancel(ctx)
			apiErr := out.Err
			c.dispatcher.Dispatch(func() { hook(hookCtx, apiErr) })
		}
	}

	if out.Maintenance {
		if hook := c.hooks.OnMaintenance; hook != nil {
			hookCtx := context.WithoutCancel(ctx)
			apiErr := out.Err
			time.AfterFunc(c.maintenanceDelay, func() {
				c.dispatcher.Dispatch(func() { hook(hookCtx, apiErr) })
			})
		}
	}
}

// deliver hands an async result to the host unless it is a dropped cancellation.
func (c *Client) deliver(err error, fn func()) {
	if err != nil && apierror.IsCancelled(err) && !c.deliverCancelled {
		c.log.DebugObj("cancelled request result dropped", "error", err.Error())
		return
	}
	c.dispatcher.Dispatch(fn)
}

func transportCode(err error) int {
	var te *httpclient.TransportError
	if errors.As(err, &te) {
		return te.Code
	}
	return httpclient.TransportCode(err)
}

func outcomeLabel(k envelope.Kind) string {
	switch k {
	case envelope.Value:
		return metrics.OutcomeValue
	case envelope.Ack:
		return metrics.OutcomeAck
	default:
		return metrics.OutcomeFailure
	}
}

func payloadKeys(req httpclient.Request) []string {
	keys := make([]string, 0, len(req.Fields)+len(req.Parts))
	for k := range req.Fields {
		keys = append(keys, k)
	}
	for _, p := range req.Parts {
		keys = append(keys, p.Field)
	}
	sort.Strings(keys)
	return keys
}
