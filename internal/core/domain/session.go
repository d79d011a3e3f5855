package domain

// Session is the summary returned by session inspection. It is derived from the
// credential cookie on every request and never stored.
type Session struct {
	Authenticated bool   `json:"authenticated"`
	Role          string `json:"role,omitempty"`
	Identity      string `json:"identity,omitempty"`
	Email         string `json:"email,omitempty"`
	Expiry        int64  `json:"exp,omitempty"`
}

// SessionFromToken builds the session summary for a credential.
// An empty token is unauthenticated; a present but unreadable token is still
// reported as authenticated, since only the upstream can reject it.
func SessionFromToken(token string) Session {
	if token == "" {
		return Session{}
	}
	claims := DecodeCredential(token)
	return Session{
		Authenticated: true,
		Role:          claims.Role,
		Identity:      claims.Identity(),
		Email:         claims.Email,
		Expiry:        claims.Expiry(),
	}
}
