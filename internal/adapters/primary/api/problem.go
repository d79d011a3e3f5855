package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sufield/signbridge/internal/adapters/common/requestid"
	"github.com/sufield/signbridge/internal/core/domain"
	bridgeerrors "github.com/sufield/signbridge/internal/core/errors"
	"github.com/sufield/signbridge/internal/core/ports"
)

// maxProblemBody bounds how much of an upstream error body is read.
const maxProblemBody = 64 << 10

// now is replaced in tests.
var now = time.Now

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeProblem renders err as a problem envelope. Unclassified errors become 500.
func writeProblem(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	be := bridgeerrors.Classify(err)

	id := requestid.FromContext(r.Context())
	problem := domain.NewProblem(be.Status, be.Type, be.Title, be.Detail, r.URL.Path, id, now())

	level := slog.LevelWarn
	if be.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(r.Context(), level, "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", be.Status,
		"code", string(be.Code),
		"request_id", id,
		"error", err,
	)

	w.Header().Set("Content-Type", domain.ProblemContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(be.Status)
	_ = json.NewEncoder(w).Encode(problem)
}

// writeUpstreamProblem normalizes a non-2xx upstream response. The status is
// kept; title and detail come from the upstream body when it has them. The
// response body is consumed and closed.
func writeUpstreamProblem(w http.ResponseWriter, r *http.Request, logger *slog.Logger, resp *ports.HTTPResponse) {
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxProblemBody))
	fields := domain.ParseProblemFields(body)

	logger.ErrorContext(r.Context(), "upstream returned an error",
		"method", r.Method,
		"path", r.URL.Path,
		"status", resp.StatusCode,
		"request_id", requestid.FromContext(r.Context()),
		"body", string(body),
	)

	writeProblem(w, r, logger, bridgeerrors.NewUpstreamHTTPError(resp.StatusCode, fields.Type, fields.Title, fields.Detail))
}

// relay copies an upstream response to w: status, content type, the named
// headers when present, and the body. The body is closed.
func relay(w http.ResponseWriter, resp *ports.HTTPResponse, headers ...string) {
	defer resp.Body.Close()
	for _, name := range append([]string{"Content-Type"}, headers...) {
		if v := resp.Header(name); v != "" {
			w.Header().Set(name, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}
