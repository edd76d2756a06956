// Package token creates opaque refresh tokens. Only their SHA-256 digest is
// ever stored.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// RefreshTokenBytes is the entropy of a refresh token before encoding.
const RefreshTokenBytes = 48

func GenerateRandomToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func HashSHA256(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// NewRefreshToken returns a raw token for the client and the hash to persist.
func NewRefreshToken() (raw, hash string, err error) {
	raw, err = GenerateRandomToken(RefreshTokenBytes)
	if err != nil {
		return "", "", err
	}
	return raw, HashSHA256(raw), nil
}
