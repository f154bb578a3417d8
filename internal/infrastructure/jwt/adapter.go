package jwt

import (
	"github.com/mikiasgoitom/Parley/internal/domain/contract"
	"github.com/mikiasgoitom/Parley/internal/domain/entity"
	"github.com/mikiasgoitom/Parley/internal/usecase"
)

// JWTServiceAdapter adapts JWTManager to the usecase.JWTService interface.
// It wraps JWTManager methods into the usecase-friendly interface.
type JWTServiceAdapter struct {
	mgr     *JWTManager
	uuidGen contract.IUUIDGenerator
}

// NewJWTService creates a new usecase.JWTService from JWTManager
func NewJWTService(mgr *JWTManager, uuidGen contract.IUUIDGenerator) usecase.JWTService {
	return &JWTServiceAdapter{mgr: mgr, uuidGen: uuidGen}
}

// GenerateAccessToken issues an access token for a user.
func (a *JWTServiceAdapter) GenerateAccessToken(userID string) (string, error) {
	return a.mgr.GenerateAccessToken(userID)
}

// GenerateRefreshToken issues a refresh token for a user.
func (a *JWTServiceAdapter) GenerateRefreshToken(userID string) (string, error) {
	tokenID := a.uuidGen.NewUUID()
	return a.mgr.GenerateRefreshToken(tokenID, userID)
}

// ParseAccessToken validates an access token and returns Claims.
func (a *JWTServiceAdapter) ParseAccessToken(tokenStr string) (*entity.Claims, error) {
	customClaims, err := a.mgr.VerifyToken(tokenStr)
	if err != nil {
		return nil, err
	}
	return &entity.Claims{
		UserID:           customClaims.Subject,
		RegisteredClaims: customClaims.RegisteredClaims,
	}, nil
}

// ParseRefreshToken validates a refresh token and returns Claims.
func (a *JWTServiceAdapter) ParseRefreshToken(tokenStr string) (*entity.Claims, error) {
	customClaims, err := a.mgr.VerifyRefreshToken(tokenStr)
	if err != nil {
		return nil, err
	}
	return &entity.Claims{
		UserID:           customClaims.Subject,
		RegisteredClaims: customClaims.RegisteredClaims,
	}, nil
}
