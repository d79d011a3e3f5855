// Package requestid assigns and propagates the correlation identifier shared by
// the inbound and outbound legs of a request.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Header carries the correlation id on every leg.
const Header = "X-Request-Id"

type contextKey struct{}

// New returns a fresh correlation id.
func New() string {
	return uuid.NewString()
}

// Ensure returns the id carried by h, generating and storing one when absent.
// Calling it twice on the same header map returns the same id.
func Ensure(h http.Header) string {
	if id := h.Get(Header); id != "" {
		return id
	}
	id := New()
	h.Set(Header, id)
	return id
}

// WithContext stores id in ctx.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the id stored in ctx, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// Middleware resolves the id before anything else runs, exposes it through the
// request context and echoes it on the response, success or error.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := Ensure(r.Header)
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
	})
}
