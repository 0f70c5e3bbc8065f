package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestManager(clock *fakeClock) *TokenManager {
	return NewTokenManager(testSecret, "edujobs", 7*24*time.Hour, 30*24*time.Hour).WithClock(clock.Now)
}

func TestTokenManager_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(clock)

	for _, role := range AllRoles {
		tok, err := m.IssueSessionToken("user-"+role, role)
		require.NoError(t, err)

		claims, err := m.VerifySessionToken(tok)
		require.NoError(t, err)
		assert.Equal(t, "user-"+role, claims.ID)
		assert.Equal(t, role, claims.Role)
		assert.Equal(t, TokenTypeAccess, claims.Type)
		assert.True(t, claims.IssuedAt.Equal(clock.t))
	}
}

func TestTokenManager_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(clock)

	tok, err := m.IssueSessionToken("u1", RoleStudent)
	require.NoError(t, err)

	clock.t = clock.t.Add(7*24*time.Hour - time.Minute)
	_, err = m.VerifySessionToken(tok)
	require.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Minute)
	_, err = m.VerifySessionToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.False(t, errors.Is(err, ErrTokenInvalid))
}

func TestTokenManager_InvalidSignature(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	m := newTestManager(clock)
	other := NewTokenManager("ffffffffffffffffffffffffffffffff", "edujobs", time.Hour, time.Hour).WithClock(clock.Now)

	tok, err := other.IssueSessionToken("u1", RoleAdmin)
	require.NoError(t, err)

	_, err = m.VerifySessionToken(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.False(t, errors.Is(err, ErrTokenExpired))

	_, err = m.VerifySessionToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_RejectsNoneAlgorithm(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	m := newTestManager(clock)

	claims := jwtClaims{
		Role: RoleAdmin,
		Type: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "edujobs",
			IssuedAt:  jwt.NewNumericDate(clock.t),
			ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.VerifySessionToken(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_TypeMarker(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	m := newTestManager(clock)

	pair, err := m.IssuePair("u1", RoleInstructor)
	require.NoError(t, err)
	assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))

	_, err = m.VerifySessionToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid, "refresh token must not pass as a session token")

	_, err = m.Verify(pair.AccessToken, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	claims, err := m.Verify(pair.RefreshToken, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.ID)
	assert.Equal(t, TokenTypeRefresh, claims.Type)
}

func TestTokenManager_IssuedAtKeepsMilliseconds(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 250*int(time.Millisecond), time.UTC)}
	m := newTestManager(clock)

	tok, err := m.IssueSessionToken("u1", RoleStudent)
	require.NoError(t, err)

	clock.t = clock.t.Add(500 * time.Millisecond)
	claims, err := m.VerifySessionToken(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(250), claims.IssuedAt.UnixMilli()%1000)
	assert.True(t, claims.IssuedAt.Before(clock.t))
}
