package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	InitJWTWithSecret("test-secret")

	token, err := IssueToken(42, time.Hour)
	require.NoError(t, err)

	memberID, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), memberID)
}

func TestTokenRejectsGarbage(t *testing.T) {
	InitJWTWithSecret("test-secret")

	_, err := ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsExpired(t *testing.T) {
	InitJWTWithSecret("test-secret")

	token, err := IssueToken(42, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	InitJWTWithSecret("secret-a")
	token, err := IssueToken(42, time.Hour)
	require.NoError(t, err)

	InitJWTWithSecret("secret-b")
	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
