// Package app assembles the bridge from its configuration: upstream client,
// session store, handlers, pass-through proxy, metrics and router.
package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sufield/signbridge/internal/adapters/metrics"
	"github.com/sufield/signbridge/internal/adapters/primary/api"
	"github.com/sufield/signbridge/internal/adapters/secondary/upstream"
	"github.com/sufield/signbridge/internal/config"
	"github.com/sufield/signbridge/internal/core/ports"
)

// Bridge is the assembled application.
type Bridge struct {
	handler  http.Handler
	upstream *upstream.Client
}

// New wires every component from cfg. A nil registry creates a private one.
func New(cfg *config.Config, logger *slog.Logger, registry *prometheus.Registry) (*Bridge, error) {
	if logger == nil {
		logger = slog.Default()
	}
	target, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}

	var (
		reporter       ports.MetricsReporter
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		if registry == nil {
			registry = prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		}
		reporter = metrics.NewPrometheusMetrics(registry)
		metricsHandler = metrics.Handler(registry)
	}

	client := upstream.New(upstream.Config{
		BaseURL:    cfg.Backend.BaseURL,
		APIVersion: cfg.Backend.APIVersion,
		AuthPrefix: cfg.Backend.AuthPrefix,
		Timeout:    cfg.Backend.Timeout,
	}, logger, reporter)

	sessions := api.NewSessionStore(api.CookiePolicy{
		Name:     cfg.Cookie.Name,
		RoleName: cfg.Cookie.RoleName,
		Domain:   cfg.Cookie.Domain,
		Secure:   cfg.Cookie.Secure,
		SameSite: cfg.Cookie.SameSiteMode(),
		MaxAge:   cfg.Cookie.MaxAge,
	})

	handlers := api.NewHandlers(client, sessions, logger, cfg.Server.MaxUploadBytes.Int64())
	proxy := api.NewProxy(api.ProxyConfig{
		Target:  target,
		Prefix:  cfg.Server.APIPrefix,
		Timeout: cfg.Backend.Timeout,
	}, sessions, logger)

	router := api.NewRouter(api.RouterConfig{
		APIPrefix:      cfg.Server.APIPrefix,
		AllowedOrigin:  cfg.Server.AllowOrigin,
		MaxJSONBytes:   cfg.Server.MaxJSONBytes.Int64(),
		StaticDir:      cfg.Server.StaticDir,
		MetricsHandler: metricsHandler,
	}, handlers, proxy, reporter, logger)

	return &Bridge{handler: router, upstream: client}, nil
}

// Handler is the root HTTP handler.
func (b *Bridge) Handler() http.Handler {
	return b.handler
}

// Close releases idle upstream connections.
func (b *Bridge) Close() error {
	return b.upstream.Close()
}
