package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType distinguishes session tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is what a verified session token asserts.
type Claims struct {
	ID       string
	Role     string
	IssuedAt time.Time
	Type     TokenType
}

type jwtClaims struct {
	Role string    `json:"role"`
	Type TokenType `json:"typ"`
	// IssuedAtMs carries the issue time in milliseconds; iat only has seconds.
	IssuedAtMs int64 `json:"iat_ms,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair is what login and registration hand to the client.
type TokenPair struct {
	AccessToken      string    `json:"token"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

func (m *TokenManager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

// Issue signs a token of the given type for an account.
func (m *TokenManager) Issue(accountID, role string, typ TokenType) (string, time.Time, error) {
	ttl := m.accessTTL
	if typ == TokenTypeRefresh {
		ttl = m.refreshTTL
	}
	now := m.now()
	exp := now.Add(ttl)
	claims := jwtClaims{
		Role:       role,
		Type:       typ,
		IssuedAtMs: now.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// IssueSessionToken signs an access token.
func (m *TokenManager) IssueSessionToken(accountID, role string) (string, error) {
	tok, _, err := m.Issue(accountID, role, TokenTypeAccess)
	return tok, err
}

// IssuePair signs an access and a refresh token together.
func (m *TokenManager) IssuePair(accountID, role string) (*TokenPair, error) {
	access, accessExp, err := m.Issue(accountID, role, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := m.Issue(accountID, role, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifySessionToken verifies an access token.
func (m *TokenManager) VerifySessionToken(token string) (*Claims, error) {
	return m.Verify(token, TokenTypeAccess)
}

// Verify checks signature, expiry and the type marker.
// It fails with ErrTokenExpired or ErrTokenInvalid.
func (m *TokenManager) Verify(token string, want TokenType) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Type != want {
		return nil, fmt.Errorf("%w: expected %s token", ErrTokenInvalid, want)
	}
	if claims.Subject == "" || claims.IssuedAt == nil {
		return nil, ErrTokenInvalid
	}
	if m.issuer != "" && claims.Issuer != m.issuer {
		return nil, fmt.Errorf("%w: unexpected issuer", ErrTokenInvalid)
	}

	issuedAt := claims.IssuedAt.Time
	if claims.IssuedAtMs > 0 {
		if ms := time.UnixMilli(claims.IssuedAtMs); ms.Unix() == issuedAt.Unix() {
			issuedAt = ms
		}
	}

	return &Claims{
		ID:       claims.Subject,
		Role:     claims.Role,
		IssuedAt: issuedAt,
		Type:     claims.Type,
	}, nil
}
