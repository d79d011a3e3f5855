// Package domain holds the value types the signing bridge reasons about:
// credentials and the claims read from them, sessions, upload payloads and
// problem envelopes.
package domain

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of a bearer credential's payload the bridge reads.
// Upstream tokens carry the signer identity as "cpf"; "sub" is used when it is absent.
type Claims struct {
	jwt.RegisteredClaims

	Role  string `json:"role,omitempty"`
	CPF   string `json:"cpf,omitempty"`
	Email string `json:"email,omitempty"`
}

// Identity returns the signer identity carried by the credential.
func (c Claims) Identity() string {
	if c.CPF != "" {
		return c.CPF
	}
	return c.Subject
}

// Expiry returns the exp claim as Unix seconds, or 0 when absent.
func (c Claims) Expiry() int64 {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Unix()
}

// IsZero reports whether nothing could be read from the credential.
func (c Claims) IsZero() bool {
	return c.Role == "" && c.CPF == "" && c.Email == "" && c.Subject == "" && c.ExpiresAt == nil
}

var segmentAlphabet = strings.NewReplacer("-", "+", "_", "/")

// DecodeCredential reads the claims of a compact token without verifying it.
// The upstream service is the authority on validity, so any token that cannot be
// read yields empty claims instead of an error. Claims are read one at a time:
// a claim of an unexpected type is dropped without losing the others.
func DecodeCredential(token string) Claims {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return Claims{}
	}

	raw, err := decodeSegment(parts[1])
	if err != nil {
		return Claims{}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return Claims{}
	}

	claims := Claims{
		Role:  claimString(doc["role"]),
		CPF:   claimString(doc["cpf"]),
		Email: claimString(doc["email"]),
	}
	claims.Subject = claimString(doc["sub"])
	if exp, ok := claimSeconds(doc["exp"]); ok {
		claims.ExpiresAt = jwt.NewNumericDate(time.Unix(exp, 0))
	}
	return claims
}

// decodeSegment accepts both base64 alphabets, padded or not.
func decodeSegment(segment string) ([]byte, error) {
	segment = strings.TrimRight(segmentAlphabet.Replace(segment), "=")
	return base64.RawStdEncoding.DecodeString(segment)
}

// claimString reads a string claim; numeric identifiers are kept as written.
func claimString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// claimSeconds reads a NumericDate claim.
func claimSeconds(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, err := n.Float64()
	if err != nil {
		return 0, false
	}
	return int64(f), true
}
