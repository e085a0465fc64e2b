package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, secret string, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestValidate(t *testing.T) {
	v := NewValidator(testSecret)
	token := sign(t, testSecret, jwt.SigningMethodHS256, Claims{Username: "dr.lee", Role: "admin"})

	claims, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "dr.lee", claims.Principal())
	assert.True(t, claims.HasRole(RoleAdmin))
}

func TestValidateRejects(t *testing.T) {
	v := NewValidator(testSecret)

	cases := map[string]string{
		"wrong secret": sign(t, "other", jwt.SigningMethodHS256, Claims{Role: "ADMIN"}),
		"expired": sign(t, testSecret, jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
		}),
		"garbage": "not.a.token",
		"empty":   "",
	}

	for name, token := range cases {
		_, err := v.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: "ADMIN"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewValidator(testSecret).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRoleNames(t *testing.T) {
	c := Claims{Role: "user", Roles: []string{"ROLE_ADMIN", "User", " vet "}}
	assert.Equal(t, []string{"USER", "ADMIN", "VET"}, c.RoleNames())
	assert.True(t, c.HasRole("admin"))
	assert.False(t, (&Claims{}).HasRole("ADMIN"))
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, "ADMIN", NormalizeRole("admin"))
	assert.Equal(t, "ADMIN", NormalizeRole("ROLE_admin"))
	assert.Equal(t, "", NormalizeRole("  "))
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	tok, ok = BearerToken("bearer xyz")
	assert.True(t, ok)
	assert.Equal(t, "xyz", tok)

	for _, h := range []string{"", "Bearer ", "Basic abc", "abc"} {
		_, ok := BearerToken(h)
		assert.False(t, ok, h)
	}
}
