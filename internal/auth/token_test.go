package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-checked-here"))
	require.NoError(t, err)
	return token
}

func TestParseClaims_UserIDClaim(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := sign(t, jwt.MapClaims{
		"sub":    "42",
		"userId": 42,
		"email":  "ada@example.com",
		"roles":  []string{"ADMIN", "USER"},
		"exp":    exp.Unix(),
	})

	claims, err := ParseClaims(token)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, []string{"ADMIN", "USER"}, claims.Roles)
	assert.True(t, exp.Equal(claims.ExpiresAt))
}

func TestParseClaims_FallsBackToSubject(t *testing.T) {
	claims, err := ParseClaims(sign(t, jwt.MapClaims{"sub": "7", "roles": "USER, ADMIN"}))
	require.NoError(t, err)

	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, []string{"USER", "ADMIN"}, claims.Roles)
}

func TestParseClaims_NoIdentifier(t *testing.T) {
	claims, err := ParseClaims(sign(t, jwt.MapClaims{"sub": "ada@example.com", "email": "ada@example.com"}))
	require.NoError(t, err)

	assert.Zero(t, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestParseClaims_Malformed(t *testing.T) {
	_, err := ParseClaims("not-a-token")
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc.def.ghi")
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	_, ok = BearerToken("Basic Zm9vOmJhcg==")
	assert.False(t, ok)

	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)
}

func TestContextHelpers(t *testing.T) {
	ctx := WithRequestID(WithToken(context.Background(), "tok"), "req-1")

	token, ok := TokenFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "tok", token)

	id, ok := RequestIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "req-1", id)

	_, ok = TokenFromContext(context.Background())
	assert.False(t, ok)
}
