package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// CustomClaims carries the token subject plus the token kind (access or
// refresh) so one secret can back both token types.
type CustomClaims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HMAC tokens.
type JWTManager struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewJWTManager creates a manager signing with the given secret.
func NewJWTManager(secret string, accessExpiry, refreshExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// GenerateAccessToken issues a short-lived access token for userID.
func (m *JWTManager) GenerateAccessToken(userID string) (string, error) {
	return m.generate(userID, "access", m.accessExpiry)
}

// GenerateRefreshToken issues a refresh token for userID with the given token id.
func (m *JWTManager) GenerateRefreshToken(tokenID, userID string) (string, error) {
	return m.generateWithID(tokenID, userID, "refresh", m.refreshExpiry)
}

func (m *JWTManager) generate(userID, kind string, expiry time.Duration) (string, error) {
	return m.generateWithID("", userID, kind, expiry)
}

func (m *JWTManager) generateWithID(tokenID, userID, kind string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// VerifyToken validates an access token and returns its claims.
func (m *JWTManager) VerifyToken(tokenStr string) (*CustomClaims, error) {
	return m.verify(tokenStr, "access")
}

// VerifyRefreshToken validates a refresh token and returns its claims.
func (m *JWTManager) VerifyRefreshToken(tokenStr string) (*CustomClaims, error) {
	return m.verify(tokenStr, "refresh")
}

func (m *JWTManager) verify(tokenStr, kind string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
