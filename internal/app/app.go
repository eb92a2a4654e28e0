package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/samvad-hq/samvad-api-client/internal/config"
	"github.com/samvad-hq/samvad-api-client/internal/logger"
	"github.com/samvad-hq/samvad-api-client/pkg/apiclient"
	"github.com/samvad-hq/samvad-api-client/pkg/endpoint"
	"github.com/samvad-hq/samvad-api-client/pkg/metrics"
	"github.com/samvad-hq/samvad-api-client/pkg/notify"
	"github.com/samvad-hq/samvad-api-client/pkg/session"
)

// App is the API client runtime. It owns the endpoint catalog, the persisted
// session, the notifier fanout and the metrics registry the client reports to.
type App struct {
	cfg      *config.Config
	catalog  *endpoint.Catalog
	session  *session.Session
	fanout   *notify.Fanout
	registry *prometheus.Registry
	client   *apiclient.Client
	log      logger.Logger
}

// Option adjusts the runtime before the client is built.
type Option func(*options)

type options struct {
	clientOpts []apiclient.Option
}

// WithClientOptions appends options to the API client, after the ones derived from config.
func WithClientOptions(opts ...apiclient.Option) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

// New builds the runtime from config.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	catalog, err := loadCatalog(cfg.EndpointsFile)
	if err != nil {
		return nil, fmt.Errorf("load endpoint catalog: %w", err)
	}
	names := make([]string, 0, len(catalog.All()))
	for _, ep := range catalog.All() {
		names = append(names, ep.Name)
	}
	log.InfoObj("endpoint catalog loaded", "catalog_meta", map[string]any{
		"count": len(names),
		"names": names,
		"file":  cfg.EndpointsFile,
	})

	store, err := session.NewStore(cfg.SessionStore, session.Options{
		BoltPath:      cfg.BBoltPath,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		RedisPrefix:   cfg.RedisPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("init session store: %w", err)
	}
	sess, err := session.Open(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("open session: %w", err)
	}
	log.InfoObj("session opened", "session_meta", map[string]any{
		"store":            cfg.SessionStore,
		"has_access_token": sess.AccessToken() != "",
		"relogin_required": sess.ReloginRequired(),
	})

	fanout, err := buildFanout(ctx, cfg.NotifiersFile, log)
	if err != nil {
		_ = sess.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	clientOpts := []apiclient.Option{
		apiclient.WithTimeout(cfg.Timeout),
		apiclient.WithLogger(log),
		apiclient.WithSession(sess),
		apiclient.WithMetrics(metrics.NewRequestMetrics(registry)),
		apiclient.WithHooks(notify.Hooks(fanout, log)),
	}
	client, err := apiclient.New(cfg.BaseURL, append(clientOpts, o.clientOpts...)...)
	if err != nil {
		_ = fanout.Close()
		_ = sess.Close()
		return nil, fmt.Errorf("build api client: %w", err)
	}

	return &App{
		cfg:      cfg,
		catalog:  catalog,
		session:  sess,
		fanout:   fanout,
		registry: registry,
		client:   client,
		log:      log,
	}, nil
}

func loadCatalog(path string) (*endpoint.Catalog, error) {
	if path == "" {
		return endpoint.DefaultCatalog(), nil
	}
	return endpoint.LoadCatalog(path)
}

// buildFanout returns an empty fanout when no notifiers file is configured.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*notify.Fanout, error) {
	if path == "" {
		return notify.NewFanout(nil), nil
	}
	reg, err := notify.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load notifiers registry: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := notify.BuildAll(ctx, notify.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build notifiers: %w", err)
	}
	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	log.InfoObj("notifiers registry loaded", "notifiers_meta", map[string]any{
		"count":     len(summaries),
		"notifiers": summaries,
	})
	return notify.NewFanout(pubs), nil
}

func (a *App) Client() *apiclient.Client      { return a.client }
func (a *App) Catalog() *endpoint.Catalog     { return a.catalog }
func (a *App) Session() *session.Session      { return a.session }
func (a *App) Registry() *prometheus.Registry { return a.registry }

// Close releases the notifiers and the session store.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if err := a.fanout.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close notifiers: %w", err))
	}
	if err := a.session.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close session: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		a.log.ErrorObj("app close failed", "error", err)
		return err
	}
	return nil
}
