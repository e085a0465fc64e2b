// Package auth validates bearer tokens issued by the identity provider.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the role required for inventory writes.
const RoleAdmin = "ADMIN"

// ErrInvalidToken wraps every token validation failure.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the JWT claims. Issuers put either a single role or
// a list of roles in the token; both are honored.
type Claims struct {
	Username string   `json:"username,omitempty"`
	Role     string   `json:"role,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// NormalizeRole uppercases a role and strips a "ROLE_" prefix, so "admin",
// "Admin" and "ROLE_ADMIN" compare equal.
func NormalizeRole(role string) string {
	r := strings.ToUpper(strings.TrimSpace(role))
	return strings.TrimPrefix(r, "ROLE_")
}

// RoleNames returns the normalized, de-duplicated roles in the token.
func (c *Claims) RoleNames() []string {
	seen := make(map[string]bool)
	var out []string

	add := func(r string) {
		n := NormalizeRole(r)
		if n == "" || seen[n] {
			return
		}
		seen[n] = true
		out = append(out, n)
	}

	add(c.Role)
	for _, r := range c.Roles {
		add(r)
	}
	return out
}

// HasRole reports whether the token carries role.
func (c *Claims) HasRole(role string) bool {
	want := NormalizeRole(role)
	for _, r := range c.RoleNames() {
		if r == want {
			return true
		}
	}
	return false
}

// Principal returns the best available caller name.
func (c *Claims) Principal() string {
	if c.Username != "" {
		return c.Username
	}
	return c.Subject
}

// Validator checks HMAC-signed tokens against a shared secret.
type Validator struct {
	secret []byte
}

// NewValidator creates a validator for secret.
func NewValidator(secret string) *Validator {
	return &Validator{secret: []byte(secret)}
}

// Validate parses and validates a JWT, returning the claims.
func (v *Validator) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
