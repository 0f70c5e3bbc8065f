package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueSingleUseToken(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tok, err := IssueSingleUseToken(24*time.Hour, now)
	require.NoError(t, err)

	assert.Len(t, tok.Secret, 64)
	assert.Len(t, tok.SecretHash, 64)
	assert.NotEqual(t, tok.Secret, tok.SecretHash)
	assert.Equal(t, HashSecret(tok.Secret), tok.SecretHash)
	assert.Equal(t, now.Add(24*time.Hour), tok.ExpiresAt)

	again, err := IssueSingleUseToken(time.Hour, now)
	require.NoError(t, err)
	assert.NotEqual(t, tok.Secret, again.Secret)
}

func TestVerifySingleUseToken(t *testing.T) {
	tok, err := IssueSingleUseToken(time.Hour, time.Now())
	require.NoError(t, err)

	assert.True(t, VerifySingleUseToken(tok.Secret, tok.SecretHash))

	other, err := IssueSingleUseToken(time.Hour, time.Now())
	require.NoError(t, err)

	cases := []string{"", other.Secret, tok.Secret[:63], tok.Secret + "0", tok.SecretHash}
	for _, c := range cases {
		assert.False(t, VerifySingleUseToken(c, tok.SecretHash), "secret %q", c)
	}
	assert.False(t, VerifySingleUseToken(tok.Secret, ""))
}

func TestIsExpired_IndependentOfHash(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tok, err := IssueSingleUseToken(time.Hour, now)
	require.NoError(t, err)

	later := now.Add(2 * time.Hour)
	assert.True(t, VerifySingleUseToken(tok.Secret, tok.SecretHash))
	assert.True(t, IsExpired(tok.ExpiresAt, later))

	assert.False(t, IsExpired(tok.ExpiresAt, now.Add(59*time.Minute)))
	assert.True(t, IsExpired(tok.ExpiresAt, tok.ExpiresAt))
}
