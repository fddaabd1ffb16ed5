package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	keys, err := NewKeys("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := keys.GenerateToken("user-123", RoleBuyer)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := keys.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, RoleBuyer, claims.Role)
	assert.Equal(t, "storefront-service", claims.Issuer)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	signer, err := NewKeys("secret-one", time.Hour)
	require.NoError(t, err)
	verifier, err := NewKeys("secret-two", time.Hour)
	require.NoError(t, err)

	token, err := signer.GenerateToken("user-123", RoleSeller)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenExpired(t *testing.T) {
	keys, err := NewKeys("test-secret", time.Hour)
	require.NoError(t, err)
	keys.tokenTTL = -time.Minute

	token, err := keys.GenerateToken("user-123", RoleBuyer)
	require.NoError(t, err)

	_, err = keys.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenGarbage(t *testing.T) {
	keys, err := NewKeys("test-secret", time.Hour)
	require.NoError(t, err)

	_, err = keys.VerifyToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewKeysEmptySecret(t *testing.T) {
	_, err := NewKeys("", time.Hour)
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	keys, err := NewKeys("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := keys.GenerateToken("user-123", RoleBuyer)
	require.NoError(t, err)

	expiry := keys.TokenExpiry(token)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), expiry, time.Minute)
}

func TestTokenExpiryUnparseableFallsBackToTTL(t *testing.T) {
	keys, err := NewKeys("test-secret", 2*time.Hour)
	require.NoError(t, err)

	expiry := keys.TokenExpiry("garbage")
	assert.WithinDuration(t, time.Now().UTC().Add(2*time.Hour), expiry, time.Minute)
}
