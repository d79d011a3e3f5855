// Package upstream implements ports.UpstreamClient over HTTP against the remote
// signing service.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ubuntu/decorate"

	"github.com/sufield/signbridge/internal/adapters/common/formbridge"
	"github.com/sufield/signbridge/internal/adapters/common/requestid"
	"github.com/sufield/signbridge/internal/core/domain"
	bridgeerrors "github.com/sufield/signbridge/internal/core/errors"
	"github.com/sufield/signbridge/internal/core/ports"
)

// Operation names used in logs and metrics.
const (
	OpLogin           = "login"
	OpNextDocument    = "next_document"
	OpSubmitSignature = "submit_signature"
	OpUploadDocument  = "upload_document"
	OpListSignatures  = "list_signatures"
)

// IdempotencyHeader carries the signing attempt key.
const IdempotencyHeader = "Idempotency-Key"

// maxErrorBody bounds how much of an upstream error body is read for logging.
const maxErrorBody = 16 << 10

// Config describes how to reach the signing service.
type Config struct {
	BaseURL    string
	APIVersion string
	AuthPrefix string
	// Timeout bounds each outbound call; zero means no client-side limit.
	Timeout time.Duration
}

// Client is the HTTP implementation of ports.UpstreamClient. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	apiVersion string
	authPrefix string
	http       *http.Client
	logger     *slog.Logger
	metrics    ports.MetricsReporter
}

var _ ports.UpstreamClient = (*Client)(nil)

// New creates a client. A nil logger uses slog.Default; nil metrics are ignored.
func New(cfg Config, logger *slog.Logger, metrics ports.MetricsReporter) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiVersion: strings.Trim(strings.TrimSpace(cfg.APIVersion), "/"),
		authPrefix: strings.TrimRight(strings.TrimSpace(cfg.AuthPrefix), "/"),
		http:       &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With("component", "upstream"),
		metrics:    metrics,
	}
}

// Close releases idle upstream connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Login exchanges identifier and password for an access token. A non-2xx answer
// is an UpstreamAuthError carrying the upstream status; only a masked form of
// the identifier is logged.
func (c *Client) Login(ctx context.Context, identifier, password string) (result *ports.LoginResult, err error) {
	defer decorate.OnError(&err, "upstream login")

	url := c.baseURL + c.authPrefix + "/auth/login"
	payload, err := json.Marshal(map[string]string{"identifier": identifier, "password": password})
	if err != nil {
		return nil, bridgeerrors.NewInternalError(err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, url, bytes.NewReader(payload), "")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(OpLogin, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		fields := domain.ParseProblemFields(body)
		if fields.Title == "" {
			fields.Title = "Login failed"
		}
		c.logger.ErrorContext(ctx, "upstream login failed",
			"status", resp.StatusCode,
			"url", url,
			"request_id", requestid.FromContext(ctx),
			"identifier", domain.MaskIdentifier(identifier),
			"problem", string(body),
		)
		return nil, bridgeerrors.NewUpstreamAuthError(resp.StatusCode, fields.Type, fields.Title, fields.Detail)
	}

	var out ports.LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.AccessToken == "" {
		return nil, bridgeerrors.NewUpstreamHTTPError(http.StatusBadGateway, "", "Invalid login response",
			"The signing service returned no access token")
	}
	return &out, nil
}

// FetchNextDocument asks for the next document pending signature. A 404 is
// returned as a response; mapping it to "nothing pending" is the caller's call.
func (c *Client) FetchNextDocument(ctx context.Context, token string) (*ports.HTTPResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.versionedURL("/user/documents/next"), nil, token)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(OpNextDocument, req)
	if err != nil {
		return nil, err
	}
	return toPortResponse(resp), nil
}

// SubmitSignature forwards body as JSON with exactly one idempotency key.
func (c *Client) SubmitSignature(ctx context.Context, token string, body []byte, idempotencyKey string) (*ports.HTTPResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPost, c.versionedURL("/user/sign"), bytes.NewReader(body), token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(IdempotencyHeader, idempotencyKey)

	resp, err := c.do(OpSubmitSignature, req)
	if err != nil {
		return nil, err
	}
	return toPortResponse(resp), nil
}

// UploadDocument re-encodes payload as multipart and posts it, versioned path first.
func (c *Client) UploadDocument(ctx context.Context, token string, payload domain.UploadPayload) (*ports.HTTPResponse, error) {
	body, err := formbridge.Encode(payload)
	if err != nil {
		return nil, bridgeerrors.NewInternalError(err)
	}

	attrs := []any{
		"request_id", requestid.FromContext(ctx),
		"title", payload.Title,
		"content_type", body.ContentType(),
		"content_length", body.Len(),
	}
	if payload.File != nil {
		attrs = append(attrs, slog.Group("file",
			"filename", payload.File.Filename,
			"mime_type", payload.File.MIMEType,
			"size", len(payload.File.Data),
		))
	}
	c.logger.InfoContext(ctx, "forwarding document upload", attrs...)

	resp, err := c.withFallback(ctx, OpUploadDocument, "/admin/documents", func(url string) (*http.Request, error) {
		req, err := c.newRequest(ctx, http.MethodPost, url, body.Reader(), token)
		if err != nil {
			return nil, err
		}
		req.ContentLength = body.Len()
		req.Header.Set("Content-Type", body.ContentType())
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	return toPortResponse(resp), nil
}

// ListSignatures lists signatures, versioned path first.
func (c *Client) ListSignatures(ctx context.Context, token string) (*ports.HTTPResponse, error) {
	resp, err := c.withFallback(ctx, OpListSignatures, "/admin/signatures", func(url string) (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, url, nil, token)
	})
	if err != nil {
		return nil, err
	}
	return toPortResponse(resp), nil
}

func (c *Client) versionedURL(path string) string {
	if c.apiVersion == "" {
		return c.baseURL + path
	}
	return c.baseURL + "/" + c.apiVersion + path
}

func (c *Client) unversionedURL(path string) string {
	return c.baseURL + path
}

// newRequest builds an outbound request carrying the correlation id and, when
// token is set, the bearer credential.
func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, bridgeerrors.NewInternalError(fmt.Errorf("build %s %s: %w", method, url, err))
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do sends req, records the call and maps transport failures to UpstreamUnavailable.
func (c *Client) do(operation string, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		c.metrics.RecordUpstreamCall(operation, 0, elapsed)
		c.logger.WarnContext(req.Context(), "upstream call failed",
			"operation", operation,
			"method", req.Method,
			"url", req.URL.Redacted(),
			"request_id", requestid.FromContext(req.Context()),
			"error", err,
		)
		return nil, bridgeerrors.NewUpstreamUnavailable(err, isTimeout(err))
	}
	c.metrics.RecordUpstreamCall(operation, resp.StatusCode, elapsed)
	return resp, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func toPortResponse(resp *http.Response) *ports.HTTPResponse {
	return &ports.HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       resp.Body,
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordUpstreamCall(string, int, float64)    {}
func (nopMetrics) RecordFallback(string)                      {}
func (nopMetrics) RecordRequest(string, string, int, float64) {}
