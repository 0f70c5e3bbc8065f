package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"
)

const singleUseSecretBytes = 32

// SingleUseToken is a random secret for email verification or password reset.
// Only SecretHash and ExpiresAt are persisted; Secret goes out by email.
type SingleUseToken struct {
	Secret     string
	SecretHash string
	ExpiresAt  time.Time
}

// IssueSingleUseToken creates a 256-bit secret that expires after lifetime.
func IssueSingleUseToken(lifetime time.Duration, now time.Time) (*SingleUseToken, error) {
	buf := make([]byte, singleUseSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate single-use token: %w", err)
	}
	secret := hex.EncodeToString(buf)
	return &SingleUseToken{
		Secret:     secret,
		SecretHash: HashSecret(secret),
		ExpiresAt:  now.Add(lifetime),
	}, nil
}

// HashSecret returns the hex SHA-256 digest stored for a secret.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// VerifySingleUseToken reports whether secret hashes to storedHash.
// It does not look at expiry.
func VerifySingleUseToken(secret, storedHash string) bool {
	if secret == "" || storedHash == "" {
		return false
	}
	computed := HashSecret(secret)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}

// IsExpired reports whether expiresAt is not after now.
func IsExpired(expiresAt, now time.Time) bool {
	return !now.Before(expiresAt)
}
