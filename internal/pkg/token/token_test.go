package token

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyAccessToken(t *testing.T) {
	codec := NewCodec("test-secret-123", time.Hour)

	raw, err := codec.IssueAccessToken(42, "Ada", "ada@example.com", "Engineer")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := codec.VerifyAccessToken(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "Engineer", claims.Role)
	assert.NotEmpty(t, claims.ID) // jti
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	codec := NewCodec("test-secret-123", -time.Minute)

	raw, err := codec.IssueAccessToken(1, "Ada", "ada@example.com", "Engineer")
	require.NoError(t, err)

	_, err = codec.VerifyAccessToken(raw)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	issuer := NewCodec("secret-a", time.Hour)
	verifier := NewCodec("secret-b", time.Hour)

	raw, err := issuer.IssueAccessToken(1, "Ada", "ada@example.com", "Engineer")
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyAccessToken_Malformed(t *testing.T) {
	codec := NewCodec("test-secret-123", time.Hour)

	_, err := codec.VerifyAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestCodec_NotConfigured(t *testing.T) {
	codec := NewCodec("", time.Hour)

	_, err := codec.IssueAccessToken(1, "Ada", "ada@example.com", "Engineer")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = codec.VerifyAccessToken("anything")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGenerateOpaqueToken(t *testing.T) {
	codec := NewCodec("irrelevant", time.Hour)

	a, err := codec.GenerateOpaqueToken(RefreshTokenBytes)
	require.NoError(t, err)
	b, err := codec.GenerateOpaqueToken(RefreshTokenBytes)
	require.NoError(t, err)

	assert.Len(t, a, RefreshTokenBytes*2)
	assert.NotEqual(t, a, b)

	_, err = hex.DecodeString(a)
	assert.NoError(t, err)
}
