package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/signbridge/internal/adapters/common/formbridge"
	"github.com/sufield/signbridge/internal/adapters/common/requestid"
	"github.com/sufield/signbridge/internal/adapters/primary/api"
	"github.com/sufield/signbridge/internal/adapters/secondary/upstream"
	"github.com/sufield/signbridge/internal/core/domain"
	"github.com/sufield/signbridge/internal/core/ports"
)

type seenRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// harness runs the bridge in front of a fake signing service.
type harness struct {
	t        *testing.T
	mu       sync.Mutex
	seen     []seenRequest
	upstream *httptest.Server
	bridge   *httptest.Server
	router   http.Handler
}

func newHarness(t *testing.T, upstreamHandler http.HandlerFunc) *harness {
	t.Helper()
	h := &harness{t: t}
	h.upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		h.mu.Lock()
		h.seen = append(h.seen, seenRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		h.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		upstreamHandler(w, r)
	}))
	t.Cleanup(h.upstream.Close)

	target, err := url.Parse(h.upstream.URL)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := upstream.New(upstream.Config{BaseURL: h.upstream.URL, APIVersion: "v1"}, logger, nil)
	sessions := api.NewSessionStore(api.CookiePolicy{Name: "auth", RoleName: "role", MaxAge: 1800})
	handlers := api.NewHandlers(client, sessions, logger, 1<<20)
	proxy := api.NewProxy(api.ProxyConfig{Target: target, Prefix: "/api"}, sessions, logger)
	router := api.NewRouter(api.RouterConfig{
		APIPrefix:     "/api",
		AllowedOrigin: "http://localhost:5173",
	}, handlers, proxy, nil, logger)

	h.router = router
	h.bridge = httptest.NewServer(router)
	t.Cleanup(h.bridge.Close)
	return h
}

func (h *harness) Seen() []seenRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]seenRequest(nil), h.seen...)
}

func (h *harness) do(req *http.Request) *http.Response {
	h.t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (h *harness) request(method, path string, body io.Reader) *http.Request {
	h.t.Helper()
	req, err := http.NewRequest(method, h.bridge.URL+path, body)
	require.NoError(h.t, err)
	return req
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func decodeProblem(t *testing.T, resp *http.Response) domain.Problem {
	t.Helper()
	assert.Equal(t, domain.ProblemContentType, resp.Header.Get("Content-Type"))
	var p domain.Problem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	return p
}

func TestLoginSessionLogoutScenario(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Unix()
	token := signedToken(t, jwt.MapClaims{"role": "ADMIN", "cpf": "12345678901", "email": "admin@example.com", "exp": exp})

	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": token})
			return
		}
		http.NotFound(w, r)
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	resp, err := client.Post(h.bridge.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"identifier":"12345678901","password":"pw"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login struct {
		OK   bool   `json:"ok"`
		Role string `json:"role"`
		Exp  int64  `json:"exp"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	assert.True(t, login.OK)
	assert.Equal(t, "ADMIN", login.Role)
	assert.Equal(t, exp, login.Exp)

	cookies := map[string]*http.Cookie{}
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c
	}
	require.Contains(t, cookies, "auth")
	require.Contains(t, cookies, "role")
	assert.True(t, cookies["auth"].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies["auth"].SameSite)
	assert.Equal(t, token, cookies["auth"].Value)
	assert.False(t, cookies["role"].HttpOnly)
	assert.Equal(t, "ADMIN", cookies["role"].Value)

	session := func() domain.Session {
		resp, err := client.Get(h.bridge.URL + "/api/auth/session")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var s domain.Session
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
		return s
	}

	s := session()
	assert.True(t, s.Authenticated)
	assert.Equal(t, "ADMIN", s.Role)
	assert.Equal(t, "12345678901", s.Identity)
	assert.Equal(t, "admin@example.com", s.Email)
	assert.Equal(t, exp, s.Expiry)

	resp, err = client.Post(h.bridge.URL+"/api/auth/logout", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cleared := map[string]bool{}
	for _, c := range resp.Cookies() {
		if c.MaxAge < 0 {
			cleared[c.Name] = true
		}
	}
	assert.Equal(t, map[string]bool{"auth": true, "role": true}, cleared)

	assert.Equal(t, domain.Session{}, session())
}

func TestLogin_ResponseShapeWithoutRoleOrExpiry(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "user-7"})
	h := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": token})
	})

	resp := h.do(h.request(http.MethodPost, "/api/auth/login", strings.NewReader(`{"identifier":"u","password":"p"}`)))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]any{"ok": true, "role": "", "exp": float64(0)}, body)
}

func TestLogin_UpstreamRejection(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Invalid credentials"}}`)
	})

	resp := h.do(h.request(http.MethodPost, "/api/auth/login", strings.NewReader(`{"identifier":"x","password":"y"}`)))

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, resp.Cookies())
	p := decodeProblem(t, resp)
	assert.Equal(t, http.StatusUnauthorized, p.Status)
	assert.Equal(t, "Invalid credentials", p.Title)
	assert.Equal(t, "/api/auth/login", p.Instance)
	assert.Equal(t, resp.Header.Get(requestid.Header), p.RequestID)
	assert.NotEmpty(t, p.Timestamp)
}

func TestLogin_MalformedBody(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	resp := h.do(h.request(http.MethodPost, "/api/auth/login", strings.NewReader(`{"identifier":`)))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, http.StatusBadRequest, decodeProblem(t, resp).Status)
	assert.Empty(t, h.Seen())
}

func TestSession_WithoutCookie(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {})

	resp := h.do(h.request(http.MethodGet, "/api/auth/session", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"authenticated":false}`, string(body))
}

func TestRequestIDPropagation(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})

	req := h.request(http.MethodGet, "/api/admin/signatures", nil)
	req.Header.Set(requestid.Header, "req-from-browser")
	resp := h.do(req)
	assert.Equal(t, "req-from-browser", resp.Header.Get(requestid.Header))
	assert.Equal(t, "req-from-browser", h.Seen()[0].Header.Get(requestid.Header))

	first := h.do(h.request(http.MethodGet, "/api/auth/session", nil)).Header.Get(requestid.Header)
	second := h.do(h.request(http.MethodGet, "/api/auth/session", nil)).Header.Get(requestid.Header)
	assert.NotEmpty(t, first)
	assert.NotEmpty(t, second)
	assert.NotEqual(t, first, second)
}

func TestNextDocument(t *testing.T) {
	t.Run("nothing pending is 204", func(t *testing.T) {
		h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
		resp := h.do(h.request(http.MethodGet, "/api/user/documents/next", nil))

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Empty(t, body)
		assert.Equal(t, "/v1/user/documents/next", h.Seen()[0].Path)
	})

	t.Run("document relayed", func(t *testing.T) {
		h := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"id":"d1","title":"Contract"}`)
		})
		req := h.request(http.MethodGet, "/api/user/documents/next", nil)
		req.AddCookie(&http.Cookie{Name: "auth", Value: "tok"})
		resp := h.do(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"id":"d1","title":"Contract"}`, string(body))
		assert.Equal(t, "Bearer tok", h.Seen()[0].Header.Get("Authorization"))
	})

	t.Run("other failures normalized", func(t *testing.T) {
		h := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `<html>maintenance</html>`)
		})
		resp := h.do(h.request(http.MethodGet, "/api/user/documents/next", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		p := decodeProblem(t, resp)
		assert.Equal(t, domain.StatusDetail(http.StatusServiceUnavailable), p.Detail)
		assert.NotContains(t, p.Detail, "maintenance")
	})
}

func TestSubmitSignature_IdempotencyKey(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"status":"signed"}`)
	})
	sign := func(key string) *http.Response {
		req := h.request(http.MethodPost, "/api/user/sign", strings.NewReader(`{"documentId":"d1","identity":"12345678901"}`))
		req.Header.Set("Content-Type", "application/json")
		if key != "" {
			req.Header.Set(api.IdempotencyHeader, key)
		}
		return h.do(req)
	}

	first := sign("")
	second := sign("")
	third := sign("browser-key")

	assert.Equal(t, http.StatusCreated, first.StatusCode)
	body, _ := io.ReadAll(first.Body)
	assert.JSONEq(t, `{"status":"signed"}`, string(body))

	seen := h.Seen()
	require.Len(t, seen, 3)
	k1 := seen[0].Header.Values(api.IdempotencyHeader)
	k2 := seen[1].Header.Values(api.IdempotencyHeader)
	require.Len(t, k1, 1)
	require.Len(t, k2, 1)
	assert.NotEmpty(t, k1[0])
	assert.NotEqual(t, k1[0], k2[0])
	assert.Equal(t, k1[0], first.Header.Get(api.IdempotencyHeader))
	assert.Equal(t, k2[0], second.Header.Get(api.IdempotencyHeader))

	assert.Equal(t, []string{"browser-key"}, seen[2].Header.Values(api.IdempotencyHeader))
	assert.Equal(t, "browser-key", third.Header.Get(api.IdempotencyHeader))
	assert.JSONEq(t, `{"documentId":"d1","identity":"12345678901"}`, string(seen[0].Body))
}

func multipartUpload(t *testing.T, title, filename, mimeType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", title))
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadDocument_ByteExactWithFallback(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/admin/documents" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Location", "/admin/documents/42")
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":42}`)
	})

	data := append([]byte("%PDF-1.4\r\n--not-a-boundary\r\n"), 0x00, 0xff, 0x10, 0x0d, 0x0a)
	body, contentType := multipartUpload(t, "T", "f.pdf", "application/pdf", data)
	inboundBoundary := strings.TrimPrefix(contentType, "multipart/form-data; boundary=")

	req := h.request(http.MethodPost, "/api/admin/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(&http.Cookie{Name: "auth", Value: "tok"})
	resp := h.do(req)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/admin/documents/42", resp.Header.Get("Location"))
	assert.Equal(t, `"v1"`, resp.Header.Get("ETag"))

	seen := h.Seen()
	require.Len(t, seen, 2)
	assert.Equal(t, "/v1/admin/documents", seen[0].Path)
	assert.Equal(t, "/admin/documents", seen[1].Path)

	forwarded := seen[1]
	ct := forwarded.Header.Get("Content-Type")
	assert.NotContains(t, ct, inboundBoundary)
	assert.Equal(t, "Bearer tok", forwarded.Header.Get("Authorization"))

	got, err := formbridge.Decode(bytes.NewReader(forwarded.Body), ct, 1<<20)
	require.NoError(t, err)
	require.NotNil(t, got.File)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, data, got.File.Data)
	assert.Equal(t, "f.pdf", got.File.Filename)
	assert.Equal(t, "application/pdf", got.File.MIMEType)
}

func TestUploadDocument_Rejections(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	t.Run("malformed multipart", func(t *testing.T) {
		req := h.request(http.MethodPost, "/api/admin/documents", strings.NewReader("--x\r\nbroken"))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
		resp := h.do(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.NotEmpty(t, decodeProblem(t, resp).RequestID)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := h.request(http.MethodPost, "/api/admin/documents", strings.NewReader(`{"title":"T"}`))
		req.Header.Set("Content-Type", "application/json")
		resp := h.do(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("too large", func(t *testing.T) {
		body, contentType := multipartUpload(t, "T", "big.bin", "application/octet-stream", bytes.Repeat([]byte{1}, 2<<20))
		req := httptest.NewRequest(http.MethodPost, "/api/admin/documents", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		h.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, http.StatusRequestEntityTooLarge, decodeProblem(t, rec.Result()).Status)
	})

	assert.Empty(t, h.Seen(), "nothing partial is forwarded")
}

func TestListSignatures_UpstreamErrorNormalized(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message":"Admins only","stack":"at secret.go:12"}`)
	})

	resp := h.do(h.request(http.MethodGet, "/api/admin/signatures", nil))

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	p := decodeProblem(t, resp)
	assert.Equal(t, "Admins only", p.Title)
	assert.Equal(t, "Admins only", p.Detail)
	assert.Equal(t, domain.DefaultProblemType, p.Type)
	assert.Len(t, h.Seen(), 1, "403 is final")
}

func TestPassThrough(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Upstream", "yes")
		w.Header().Set(requestid.Header, "upstream-own-id")
		w.WriteHeader(http.StatusTeapot)
		_, _ = io.WriteString(w, "raw:"+r.Method)
	})

	t.Run("cookie becomes bearer", func(t *testing.T) {
		req := h.request(http.MethodPut, "/api/admin/documents/7?draft=true", strings.NewReader(`{"a":1}`))
		req.AddCookie(&http.Cookie{Name: "auth", Value: "tok"})
		req.Header.Set(requestid.Header, "rid-1")
		resp := h.do(req)

		assert.Equal(t, http.StatusTeapot, resp.StatusCode)
		assert.Equal(t, "yes", resp.Header.Get("X-Upstream"))
		assert.Equal(t, []string{"rid-1"}, resp.Header.Values(requestid.Header))
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "raw:PUT", string(body))

		seen := h.Seen()
		last := seen[len(seen)-1]
		assert.Equal(t, "/admin/documents/7", last.Path)
		assert.Equal(t, "draft=true", last.Query)
		assert.Equal(t, "Bearer tok", last.Header.Get("Authorization"))
		assert.Equal(t, "rid-1", last.Header.Get(requestid.Header))
		assert.Empty(t, last.Header.Get("Cookie"))
		assert.Equal(t, `{"a":1}`, string(last.Body))
	})

	t.Run("explicit authorization kept", func(t *testing.T) {
		req := h.request(http.MethodGet, "/api/reports", nil)
		req.AddCookie(&http.Cookie{Name: "auth", Value: "tok"})
		req.Header.Set("Authorization", "Bearer explicit")
		h.do(req)

		seen := h.Seen()
		assert.Equal(t, "Bearer explicit", seen[len(seen)-1].Header.Get("Authorization"))
	})

	t.Run("other method on intercepted path", func(t *testing.T) {
		resp := h.do(h.request(http.MethodGet, "/api/admin/documents", nil))

		assert.Equal(t, http.StatusTeapot, resp.StatusCode)
		seen := h.Seen()
		assert.Equal(t, "/admin/documents", seen[len(seen)-1].Path)
	})
}

func TestPassThrough_UpstreamDown(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {})
	h.upstream.Close()

	resp := h.do(h.request(http.MethodGet, "/api/anything", nil))

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	p := decodeProblem(t, resp)
	assert.Equal(t, http.StatusBadGateway, p.Status)
	assert.Equal(t, resp.Header.Get(requestid.Header), p.RequestID)
}

func TestHealthzAndUnknownPaths(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {})

	resp := h.do(h.request(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp = h.do(h.request(http.MethodGet, "/not-api", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, decodeProblem(t, resp).Status)
	assert.Empty(t, h.Seen())
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {})

	req := h.request(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := h.do(req)

	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
	assert.Empty(t, h.Seen())
}

// panickingUpstream fails every call by panicking.
type panickingUpstream struct{}

func (panickingUpstream) Login(context.Context, string, string) (*ports.LoginResult, error) {
	panic("boom")
}

func (panickingUpstream) FetchNextDocument(context.Context, string) (*ports.HTTPResponse, error) {
	panic("boom")
}

func (panickingUpstream) SubmitSignature(context.Context, string, []byte, string) (*ports.HTTPResponse, error) {
	panic("boom")
}

func (panickingUpstream) UploadDocument(context.Context, string, domain.UploadPayload) (*ports.HTTPResponse, error) {
	panic("boom")
}

func (panickingUpstream) ListSignatures(context.Context, string) (*ports.HTTPResponse, error) {
	panic("boom")
}

func TestRecoverer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := api.NewSessionStore(api.CookiePolicy{Name: "auth", RoleName: "role"})
	router := api.NewRouter(api.RouterConfig{APIPrefix: "/api"},
		api.NewHandlers(panickingUpstream{}, sessions, logger, 0),
		http.NotFoundHandler(), nil, logger)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/signatures", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, domain.ProblemContentType, rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(requestid.Header))
	assert.NotContains(t, rec.Body.String(), "boom")
}
