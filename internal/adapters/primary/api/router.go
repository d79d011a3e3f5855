// Package api is the browser-facing HTTP surface of the bridge: the intercepted
// routes, the transparent pass-through and the middleware chain around them.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sufield/signbridge/internal/adapters/common/requestid"
	bridgeerrors "github.com/sufield/signbridge/internal/core/errors"
	"github.com/sufield/signbridge/internal/core/ports"
)

// DefaultMaxJSONBytes caps JSON request bodies on intercepted routes.
const DefaultMaxJSONBytes = 2 << 20

// RouterConfig configures the route dispatcher.
type RouterConfig struct {
	// APIPrefix is where the intercepted and proxied routes live, e.g. "/api".
	APIPrefix     string
	AllowedOrigin string
	MaxJSONBytes  int64
	// StaticDir, when set, serves a single page app with index.html fallback.
	StaticDir string
	// MetricsHandler, when set, is served on /metrics.
	MetricsHandler http.Handler
}

// NewRouter composes the bridge. The correlation id is resolved before any
// other middleware so every response, including errors and proxied ones, carries it.
func NewRouter(cfg RouterConfig, h *Handlers, proxy http.Handler, metrics ports.MetricsReporter, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxJSONBytes <= 0 {
		cfg.MaxJSONBytes = DefaultMaxJSONBytes
	}
	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(accessLog(logger, metrics))
	r.Use(recoverer(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestid.Header, IdempotencyHeader},
		ExposedHeaders:   []string{requestid.Header, IdempotencyHeader, "Location", "ETag"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route(prefix, func(r chi.Router) {
		// Registered outside the JSON group: the multipart stream reaches the
		// handler untouched.
		r.Post("/admin/documents", h.UploadDocument)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequestSize(cfg.MaxJSONBytes))
			r.Post("/auth/login", h.Login)
			r.Post("/auth/logout", h.Logout)
			r.Get("/auth/session", h.Session)
			r.Get("/user/documents/next", h.NextDocument)
			r.Post("/user/sign", h.SubmitSignature)
			r.Get("/admin/signatures", h.ListSignatures)
		})

		// Anything not intercepted, including other methods on intercepted
		// paths, passes through.
		r.NotFound(proxy.ServeHTTP)
		r.MethodNotAllowed(proxy.ServeHTTP)
	})

	if cfg.StaticDir != "" {
		r.NotFound(spaHandler(cfg.StaticDir).ServeHTTP)
	} else {
		r.NotFound(func(w http.ResponseWriter, req *http.Request) {
			writeProblem(w, req, logger, bridgeerrors.NewNotFound(req.URL.Path))
		})
	}

	return r
}

// accessLog writes one record per request and feeds request metrics, keyed by
// route pattern so proxied paths do not explode label cardinality.
func accessLog(logger *slog.Logger, metrics ports.MetricsReporter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			if metrics != nil {
				metrics.RecordRequest(route, r.Method, status, elapsed.Seconds())
			}
			logger.InfoContext(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", elapsed.Milliseconds(),
				"request_id", requestid.FromContext(r.Context()),
			)
		})
	}
}

// recoverer turns a handler panic into an internal error problem.
func recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler { //nolint:errorlint // recovered value, not a wrapped error
					panic(rec)
				}
				writeProblem(w, r, logger, bridgeerrors.NewInternalError(fmt.Errorf("panic: %v", rec)))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// spaHandler serves files from dir and falls back to index.html for unknown
// paths so client-side routes survive a reload.
func spaHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(name); err != nil || info.IsDir() {
			http.ServeFile(w, r, index)
			return
		}
		files.ServeHTTP(w, r)
	})
}
