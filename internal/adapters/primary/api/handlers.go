package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sufield/signbridge/internal/adapters/common/formbridge"
	"github.com/sufield/signbridge/internal/core/domain"
	bridgeerrors "github.com/sufield/signbridge/internal/core/errors"
	"github.com/sufield/signbridge/internal/core/ports"
)

// IdempotencyHeader names the signing attempt key header.
const IdempotencyHeader = "Idempotency-Key"

// DefaultMaxUploadBytes caps an inbound upload body when no limit is configured.
const DefaultMaxUploadBytes = 25 << 20

// Handlers serves the intercepted routes.
type Handlers struct {
	upstream       ports.UpstreamClient
	sessions       *SessionStore
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewHandlers wires the intercepted routes to an upstream client.
func NewHandlers(upstream ports.UpstreamClient, sessions *SessionStore, logger *slog.Logger, maxUploadBytes int64) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handlers{
		upstream:       upstream,
		sessions:       sessions,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	OK   bool   `json:"ok"`
	Role string `json:"role"`
	Exp  int64  `json:"exp"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// Login exchanges credentials upstream and stores the issued token in the
// session cookies.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, r, h.logger, bodyError("login body must be a JSON object", err))
		return
	}

	result, err := h.upstream.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		writeProblem(w, r, h.logger, err)
		return
	}

	claims := h.sessions.Establish(w, result.AccessToken)
	h.logger.InfoContext(r.Context(), "login succeeded",
		"identifier", domain.MaskIdentifier(req.Identifier),
		"role", claims.Role,
	)
	writeJSON(w, http.StatusOK, loginResponse{OK: true, Role: claims.Role, Exp: claims.Expiry()})
}

// Logout clears the session cookies. It succeeds with or without a session.
func (h *Handlers) Logout(w http.ResponseWriter, _ *http.Request) {
	h.sessions.Clear(w)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// Session reports what the current cookie says about the caller. It never fails.
func (h *Handlers) Session(w http.ResponseWriter, r *http.Request) {
	token, _ := h.sessions.Read(r)
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, domain.SessionFromToken(token))
}

// NextDocument relays the next document pending signature. Nothing pending
// (upstream 404) is an empty 204.
func (h *Handlers) NextDocument(w http.ResponseWriter, r *http.Request) {
	resp, err := h.upstream.FetchNextDocument(r.Context(), h.credential(r))
	if err != nil {
		writeProblem(w, r, h.logger, err)
		return
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		w.WriteHeader(http.StatusNoContent)
	case !resp.OK():
		writeUpstreamProblem(w, r, h.logger, resp)
	default:
		relay(w, resp)
	}
}

// SubmitSignature forwards a signing request with exactly one idempotency key:
// the browser's, or a fresh one. The key used is echoed so a retry can reuse it.
func (h *Handlers) SubmitSignature(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeProblem(w, r, h.logger, bodyError("could not read signing request", err))
		return
	}
	if !json.Valid(body) {
		writeProblem(w, r, h.logger, bridgeerrors.NewBadRequest("signing request must be JSON", nil))
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	if key == "" {
		key = uuid.NewString()
	}
	w.Header().Set(IdempotencyHeader, key)

	resp, err := h.upstream.SubmitSignature(r.Context(), h.credential(r), body, key)
	if err != nil {
		writeProblem(w, r, h.logger, err)
		return
	}
	if !resp.OK() {
		writeUpstreamProblem(w, r, h.logger, resp)
		return
	}
	relay(w, resp)
}

// UploadDocument decodes the inbound multipart stream and forwards it as a
// freshly encoded body. It must never sit behind a JSON body parser.
func (h *Handlers) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	payload, err := formbridge.Decode(r.Body, r.Header.Get("Content-Type"), h.maxUploadBytes)
	if err != nil {
		writeProblem(w, r, h.logger, err)
		return
	}

	resp, err := h.upstream.UploadDocument(r.Context(), h.credential(r), payload)
	if err != nil {
		writeProblem(w, r, h.logger, err)
		return
	}
	if !resp.OK() {
		writeUpstreamProblem(w, r, h.logger, resp)
		return
	}
	relay(w, resp, "Location", "ETag")
}

// ListSignatures relays the signature list.
func (h *Handlers) ListSignatures(w http.ResponseWriter, r *http.Request) {
	resp, err := h.upstream.ListSignatures(r.Context(), h.credential(r))
	if err != nil {
		writeProblem(w, r, h.logger, err)
		return
	}
	if !resp.OK() {
		writeUpstreamProblem(w, r, h.logger, resp)
		return
	}
	relay(w, resp)
}

// credential returns the bearer token of r: an explicit Authorization header
// wins over the session cookie.
func (h *Handlers) credential(r *http.Request) string {
	if token, ok := parseBearer(r.Header.Get("Authorization")); ok {
		return token
	}
	token, _ := h.sessions.Read(r)
	return token
}

func parseBearer(authorization string) (string, bool) {
	const prefix = "bearer "
	if len(authorization) <= len(prefix) || !strings.EqualFold(authorization[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(authorization[len(prefix):])
	return token, token != ""
}

// bodyError distinguishes an oversized JSON body from a malformed one.
func bodyError(detail string, err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return bridgeerrors.NewPayloadTooLarge(maxErr.Limit, err)
	}
	return bridgeerrors.NewBadRequest(detail, err)
}
