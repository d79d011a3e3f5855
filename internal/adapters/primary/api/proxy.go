package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/sufield/signbridge/internal/adapters/common/requestid"
	bridgeerrors "github.com/sufield/signbridge/internal/core/errors"
)

// ProxyConfig describes the transparent pass-through to the signing service.
type ProxyConfig struct {
	Target *url.URL
	// Prefix is stripped from the inbound path before forwarding.
	Prefix string
	// Timeout bounds the wait for upstream response headers; zero disables it.
	Timeout time.Duration
}

// NewProxy forwards every non-intercepted API request to the signing service.
// Method, query and body are forwarded as is; the correlation id and a bearer
// credential derived from the session cookie are added. The upstream response
// is relayed unmodified, and transport failures become problem envelopes.
func NewProxy(cfg ProxyConfig, sessions *SessionStore, logger *slog.Logger) *httputil.ReverseProxy {
	if logger == nil {
		logger = slog.Default()
	}
	prefix := strings.TrimRight(cfg.Prefix, "/")

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.Timeout

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = stripPrefix(pr.In.URL.Path, prefix)
			pr.Out.URL.RawPath = ""
			if pr.In.URL.RawPath != "" {
				pr.Out.URL.RawPath = stripPrefix(pr.In.URL.RawPath, prefix)
			}
			pr.SetURL(cfg.Target)
			pr.SetXForwarded()

			if id := requestid.FromContext(pr.In.Context()); id != "" {
				pr.Out.Header.Set(requestid.Header, id)
			}
			if pr.Out.Header.Get("Authorization") == "" {
				if token, ok := sessions.Read(pr.In); ok {
					pr.Out.Header.Set("Authorization", "Bearer "+token)
				}
			}
			pr.Out.Header.Del("Cookie")
		},
		Transport: transport,
		ModifyResponse: func(resp *http.Response) error {
			// The inbound middleware already set the id on the response.
			resp.Header.Del(requestid.Header)
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			writeProblem(w, r, logger, bridgeerrors.NewUpstreamUnavailable(err, isTimeout(err)))
		},
		ErrorLog: slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

func stripPrefix(path, prefix string) string {
	p := strings.TrimPrefix(path, prefix)
	if p == "" || p[0] != '/' {
		p = "/" + p
	}
	return p
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
