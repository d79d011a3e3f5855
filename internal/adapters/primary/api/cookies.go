package api

import (
	"net/http"
	"time"

	"github.com/sufield/signbridge/internal/core/domain"
)

// CookiePolicy controls how the session cookies are issued.
type CookiePolicy struct {
	// Name of the httponly cookie carrying the credential.
	Name string
	// RoleName of the readable companion cookie carrying only the role claim.
	RoleName string
	Domain   string
	Secure   bool
	SameSite http.SameSite
	// MaxAge in seconds; zero issues session cookies.
	MaxAge int
}

// SessionStore maps the credential cookie to the bearer token of a request.
// The role cookie is a UI hint only; nothing in the bridge reads it back.
type SessionStore struct {
	policy CookiePolicy
}

// NewSessionStore creates a store issuing cookies according to policy.
func NewSessionStore(policy CookiePolicy) *SessionStore {
	if policy.SameSite == 0 {
		policy.SameSite = http.SameSiteLaxMode
	}
	return &SessionStore{policy: policy}
}

// Establish sets the credential cookie and its role companion, and returns the
// claims read from token.
func (s *SessionStore) Establish(w http.ResponseWriter, token string) domain.Claims {
	claims := domain.DecodeCredential(token)
	http.SetCookie(w, s.cookie(s.policy.Name, token, true))
	http.SetCookie(w, s.cookie(s.policy.RoleName, claims.Role, false))
	return claims
}

// Clear expires both cookies with the attributes they were issued with.
func (s *SessionStore) Clear(w http.ResponseWriter) {
	for _, c := range []*http.Cookie{
		s.cookie(s.policy.Name, "", true),
		s.cookie(s.policy.RoleName, "", false),
	} {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

// Read returns the credential carried by r, if any.
func (s *SessionStore) Read(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.policy.Name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (s *SessionStore) cookie(name, value string, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.policy.Domain,
		MaxAge:   s.policy.MaxAge,
		Secure:   s.policy.Secure,
		HttpOnly: httpOnly,
		SameSite: s.policy.SameSite,
	}
}
