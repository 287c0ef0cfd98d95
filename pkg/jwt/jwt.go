package jwt

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// Claims is the subset of access token claims the session layer reads.
// Signatures are not checked here; the auth server stays the authority and
// is consulted whenever the user must be trusted.
type Claims struct {
	Subject   string `json:"sub,omitempty"`
	Issuer    string `json:"iss,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	AAL       string `json:"aal,omitempty"`
}

// Expiry returns the expiration time, or the zero time when exp is unset.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(c.ExpiresAt, 0)
}

// ExpiresWithin reports whether the token expires within d of now.
// Tokens without exp never expire.
func (c Claims) ExpiresWithin(now time.Time, d time.Duration) bool {
	if c.ExpiresAt == 0 {
		return false
	}
	return !now.Add(d).Before(c.Expiry())
}

// Decode parses the payload segment of a compact JWT without verifying it.
func Decode(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[1] == "" {
		return Claims{}, ErrInvalidToken
	}

	payload, err := base64URLDecode(parts[1])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, ErrInvalidClaims
	}
	return claims, nil
}

// Encode builds an unsigned compact token for the given claims. It exists for
// tests and local tooling that need tokens shaped like the auth server's.
func Encode(claims any) (string, error) {
	header, err := json.Marshal(map[string]string{"alg": "none", "typ": "JWT"})
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	return base64URLEncode(header) + "." + base64URLEncode(body) + ".", nil
}

// base64URLEncode encodes data using base64url encoding without padding.
func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// base64URLDecode accepts both padded and unpadded input.
func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
