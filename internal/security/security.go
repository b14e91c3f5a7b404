package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Secret sizes in raw bytes before base64url encoding.
const (
	sessionIDBytes   = 32
	tokenSecretBytes = 64
)

// HashPassword hashes a plaintext password with bcrypt at the given cost.
// The cost is the externally configured work factor; bcrypt validates it.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// GenerateSessionID returns a new opaque session identifier.
func GenerateSessionID() (string, error) {
	return randomSecret(sessionIDBytes)
}

// GenerateTokenSecret returns a new opaque bearer token secret.
func GenerateTokenSecret() (string, error) {
	return randomSecret(tokenSecretBytes)
}

func randomSecret(size int) (string, error) {
	raw := make([]byte, size)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// sessionClaims are the JWT claims carried by the auth cookie.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// SignSessionToken wraps a session identifier in a signed JWT suitable for
// the auth cookie.
func SignSessionToken(secret, sessionID string, expiry time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ParseSessionToken validates a signed cookie value and returns the
// embedded session identifier.
func ParseSessionToken(secret, tokenString string) (string, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("parse session token: empty subject")
	}
	return claims.Subject, nil
}
