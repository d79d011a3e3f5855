package upstream

import (
	"context"
	"io"
	"net/http"

	"github.com/sufield/signbridge/internal/adapters/common/requestid"
)

// requestBuilder creates a fresh request for url; it is called once per attempt
// so bodies can be replayed.
type requestBuilder func(url string) (*http.Request, error)

// withFallback calls the versioned path and, only if that answered 404, calls
// the unversioned path once. The deployment decides which path shape exists, so
// both are probed in order; any other first status is final. The first response
// is drained and closed before the second attempt starts.
func (c *Client) withFallback(ctx context.Context, operation, path string, build requestBuilder) (*http.Response, error) {
	first := c.versionedURL(path)
	req, err := build(first)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(operation, req)
	if err != nil {
		return nil, err
	}

	second := c.unversionedURL(path)
	if resp.StatusCode != http.StatusNotFound || second == first {
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()

	c.metrics.RecordFallback(operation)
	c.logger.DebugContext(ctx, "versioned path not found, retrying unversioned",
		"operation", operation,
		"from", first,
		"to", second,
		"request_id", requestid.FromContext(ctx),
	)

	req, err = build(second)
	if err != nil {
		return nil, err
	}
	return c.do(operation, req)
}
