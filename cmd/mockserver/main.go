package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/samvad-hq/samvad-api-client/internal/config"
	"github.com/samvad-hq/samvad-api-client/internal/logger"
	"github.com/samvad-hq/samvad-api-client/internal/mockserver"
	"github.com/samvad-hq/samvad-api-client/pkg/endpoint"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mockserver start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	catalog := endpoint.DefaultCatalog()
	if cfg.EndpointsFile != "" {
		if catalog, err = endpoint.LoadCatalog(cfg.EndpointsFile); err != nil {
			return fmt.Errorf("load endpoint catalog: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv, err := mockserver.New(catalog, mockserver.Options{
		Secret:   []byte(cfg.MockSecret),
		TokenTTL: cfg.MockTokenTTL,
		Registry: reg,
		Log:      log,
	})
	if err != nil {
		return fmt.Errorf("init mock server: %w", err)
	}

	logger.InfoObj("mockserver starting", "mock_config", map[string]any{
		"addr":           cfg.MockAddr,
		"endpoints":      len(catalog.All()),
		"endpoints_file": cfg.EndpointsFile,
		"token_ttl":      cfg.MockTokenTTL.String(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, cfg.MockAddr); err != nil {
		return fmt.Errorf("mockserver run: %w", err)
	}
	return nil
}
