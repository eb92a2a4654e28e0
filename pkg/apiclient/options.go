package apiclient

import (
	"context"
	"time"

	"github.com/samvad-hq/samvad-api-client/pkg/apierror"
	"github.com/samvad-hq/samvad-api-client/pkg/httpclient"
	"github.com/samvad-hq/samvad-api-client/pkg/metrics"
	"github.com/samvad-hq/samvad-api-client/pkg/session"
)

// Dispatcher runs host-facing work (callbacks, hooks) on the host's scheduling
// context, e.g. a UI loop.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// goDispatcher runs every fn on its own goroutine.
var goDispatcher = DispatcherFunc(func(fn func()) { go fn() })

// Hooks are host reactions to session-level failures. Either may be nil.
type Hooks struct {
	OnReloginRequired func(ctx context.Context, err *apierror.Error)
	OnMaintenance     func(ctx context.Context, err *apierror.Error)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default resty transport.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request and failure logs.
func WithLogger(log Logger) Option {
	return func(c *Client) { c.log = ensureLogger(log) }
}

// WithSession sets the session used when a call does not carry its own.
func WithSession(s *session.Session) Option {
	return func(c *Client) { c.session = s }
}

// WithHooks registers the relogin and maintenance hooks.
func WithHooks(h Hooks) Option {
	return func(c *Client) { c.hooks = h }
}

// WithMetrics records every call in m.
func WithMetrics(m *metrics.RequestMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithDispatcher routes callbacks and hooks through d instead of fresh goroutines.
func WithDispatcher(d Dispatcher) Option {
	return func(c *Client) {
		if d != nil {
			c.dispatcher = d
		}
	}
}

// WithTimeout sets the timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithMaintenanceDelay sets how long the maintenance hook waits before it is dispatched.
func WithMaintenanceDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.maintenanceDelay = d
		}
	}
}

// WithDeliverCancelled makes async calls invoke their callback for explicitly
// cancelled requests. By default such results are dropped.
func WithDeliverCancelled() Option {
	return func(c *Client) { c.deliverCancelled = true }
}

type callConfig struct {
	session    *session.Session
	headers    map[string]string
	onProgress func(httpclient.Progress)
}

// CallOption adjusts a single call.
type CallOption func(*callConfig)

// WithCallSession uses s for this call instead of the client session.
func WithCallSession(s *session.Session) CallOption {
	return func(cc *callConfig) { cc.session = s }
}

// WithHeader adds or overrides a request header.
func WithHeader(key, value string) CallOption {
	return func(cc *callConfig) {
		if cc.headers == nil {
			cc.headers = make(map[string]string)
		}
		cc.headers[key] = value
	}
}

// WithProgress reports upload progress. It is ignored by non-multipart calls.
func WithProgress(fn func(httpclient.Progress)) CallOption {
	return func(cc *callConfig) { cc.onProgress = fn }
}
