package entity

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token claims used by the auth middleware.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}
