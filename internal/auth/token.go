package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// TokenError distinguishes the two failure modes of Validate. Expired means
// the signature checked out but the token is past its expiry; everything
// else (bad signature, wrong key, tampered or malformed payload) is Invalid.
type TokenError string

func (e TokenError) Error() string { return string(e) }

const (
	ErrTokenExpired = TokenError("token expired")
	ErrTokenInvalid = TokenError("token invalid")
)

// TokenManager signs and verifies HS256 bearer tokens. Both operations are
// pure CPU work with no shared mutable state, so a single manager is safe
// under concurrent use.
type TokenManager struct {
	key []byte
	ttl time.Duration
}

// NewTokenManager creates a manager that signs with key and issues tokens
// valid for ttl by default.
func NewTokenManager(key []byte, ttl time.Duration) *TokenManager {
	return &TokenManager{key: key, ttl: ttl}
}

// Issue signs a token for subject using the manager's default ttl.
func (tm *TokenManager) Issue(subject string) (string, error) {
	return tm.IssueWithTTL(subject, tm.ttl)
}

// IssueWithTTL signs a token for subject that expires ttl from now. The
// token is self-contained: subject, absolute expiry, and a unique jti.
func (tm *TokenManager) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature and expiry and returns the encoded subject.
// Failures come back as ErrTokenExpired or ErrTokenInvalid; no other error
// values escape.
func (tm *TokenManager) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tm.key, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}
