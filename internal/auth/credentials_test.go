package auth

import (
	"strings"
	"testing"
	"time"

	"dayboard/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	creds := NewCredentials("secret")

	digest, err := creds.HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", digest)
	assert.True(t, strings.HasPrefix(digest, "$2a$10$"))

	assert.True(t, creds.CheckPassword("hunter22", digest))
	assert.False(t, creds.CheckPassword("wrong", digest))
}

func TestIssueAndVerifyToken(t *testing.T) {
	creds := NewCredentials("secret")

	token, err := creds.IssueToken(42, "alice")
	require.NoError(t, err)

	claims, err := creds.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestVerifyToken_Failures(t *testing.T) {
	creds := NewCredentials("secret")
	other := NewCredentials("different-secret")

	token, err := creds.IssueToken(1, "bob")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"missing", "", ErrTokenMissing},
		{"garbage", "not.a.token", ErrTokenInvalid},
		{"wrong secret", token, ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := creds
			if tt.name == "wrong secret" {
				verifier = other
			}
			_, err := verifier.VerifyToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	creds := NewCredentials("secret")

	now := time.Now().Add(-48 * time.Hour)
	claims := jwt.MapClaims{
		"sub":      "1",
		"username": "bob",
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(TokenTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = creds.VerifyToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyToken_RejectsWrongIssuerAndAudience(t *testing.T) {
	creds := NewCredentials("secret")

	sign := func(iss, aud string) string {
		now := time.Now()
		claims := jwt.MapClaims{
			"sub": "1", "iss": iss, "aud": aud,
			"exp": now.Add(time.Hour).Unix(), "iat": now.Unix(), "nbf": now.Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		return token
	}

	_, err := creds.VerifyToken(sign("someone-else", tokenAudience))
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = creds.VerifyToken(sign(tokenIssuer, "someone-else"))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAsUnauthorized(t *testing.T) {
	assert.Equal(t, "Access token required", AsUnauthorized(ErrTokenMissing).Message)
	assert.Equal(t, "Token expired", AsUnauthorized(ErrTokenExpired).Message)
	assert.Equal(t, "Invalid token", AsUnauthorized(ErrTokenInvalid).Message)
	assert.Equal(t, models.CodeUnauthorized, AsUnauthorized(ErrTokenInvalid).Code)
}
