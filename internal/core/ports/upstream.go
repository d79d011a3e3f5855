// Package ports defines the interfaces between the bridge's HTTP surface and
// the adapters it drives.
package ports

import (
	"context"
	"io"
	"strings"

	"github.com/sufield/signbridge/internal/core/domain"
)

// HTTPResponse abstracts an upstream response without leaking net/http.
// Callers own Body and must close it.
type HTTPResponse struct {
	StatusCode int
	Headers    map[string][]string
	Body       io.ReadCloser
}

// Header returns the first value of a header, matching keys case-insensitively.
func (r *HTTPResponse) Header(key string) string {
	for k, v := range r.Headers {
		if len(v) > 0 && strings.EqualFold(k, key) {
			return v[0]
		}
	}
	return ""
}

// OK reports a 2xx status.
func (r *HTTPResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// LoginResult is the credential issued by a successful upstream login.
type LoginResult struct {
	AccessToken string `json:"accessToken"`
}

// UpstreamClient performs the outbound calls of the intercepted routes.
// The correlation id travels in ctx. Transport failures are returned as errors;
// HTTP statuses are left to the caller, except for Login.
type UpstreamClient interface {
	// Login exchanges identifier and password for a credential.
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
	// FetchNextDocument returns the next document pending signature.
	FetchNextDocument(ctx context.Context, token string) (*HTTPResponse, error)
	// SubmitSignature forwards a signing request with its idempotency key.
	SubmitSignature(ctx context.Context, token string, body []byte, idempotencyKey string) (*HTTPResponse, error)
	// UploadDocument forwards an upload, probing the versioned path first.
	UploadDocument(ctx context.Context, token string, payload domain.UploadPayload) (*HTTPResponse, error)
	// ListSignatures lists signatures, probing the versioned path first.
	ListSignatures(ctx context.Context, token string) (*HTTPResponse, error)
}

// MetricsReporter records bridge activity.
type MetricsReporter interface {
	// RecordUpstreamCall records one outbound call; status is 0 on transport failure.
	RecordUpstreamCall(operation string, status int, seconds float64)
	// RecordFallback records a switch from the versioned to the unversioned path.
	RecordFallback(operation string)
	// RecordRequest records one inbound request by route pattern.
	RecordRequest(route, method string, status int, seconds float64)
}
