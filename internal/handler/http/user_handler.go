package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikiasgoitom/Parley/internal/domain/contract"
	"github.com/mikiasgoitom/Parley/internal/domain/entity"
	"github.com/mikiasgoitom/Parley/internal/handler/http/dto"
	"github.com/mikiasgoitom/Parley/internal/usecase"
	usecasecontract "github.com/mikiasgoitom/Parley/internal/usecase/contract"
)

// UserHandlerInterface defines the methods for user handler to allow interface-based dependency injection (for testing/mocking)
type UserHandlerInterface interface {
	Register(*gin.Context)
	Login(*gin.Context)
	RefreshToken(*gin.Context)
	GetUser(*gin.Context)
	GetCurrentUser(*gin.Context)
	GetUsersBatch(*gin.Context)
	SearchUsers(*gin.Context)
	CheckUsername(*gin.Context)
	UpdateProfile(*gin.Context)
	SetPresence(*gin.Context)
	Heartbeat(*gin.Context)
	SetTyping(*gin.Context)
	RegisterDeviceToken(*gin.Context)
	UpdatePrivacy(*gin.Context)
	AddPrivacyException(*gin.Context)
	RemovePrivacyException(*gin.Context)
	BlockUser(*gin.Context)
	UnblockUser(*gin.Context)
	MuteChat(*gin.Context)
	UnmuteChat(*gin.Context)
	GrantPremium(*gin.Context)
	RevokePremium(*gin.Context)
	PremiumUsers(*gin.Context)
	OnlineCount(*gin.Context)
	SetPresenceBulk(*gin.Context)
	DeactivateAccount(*gin.Context)
	DeleteAccount(*gin.Context)
	ObserveUser(*gin.Context)
}

// Ensure UserHandler implements UserHandlerInterface
var _ UserHandlerInterface = (*UserHandler)(nil)

type UserHandler struct {
	userUsecase usecasecontract.IUserUseCase
}

func NewUserHandler(userUsecase usecasecontract.IUserUseCase) *UserHandler {
	return &UserHandler{
		userUsecase: userUsecase,
	}
}

// Register handles account creation
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}

	user, err := h.userUsecase.Register(c.Request.Context(), req.Username, req.Email, req.Phone, req.FirstName, req.LastName)
	if err != nil {
		ErrorHandler(c, http.StatusConflict, err.Error())
		return
	}

	SuccessHandler(c, http.StatusCreated, dto.ToUserResponse(*user))
}

// Login issues a token pair for an existing account
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}

	user, accessToken, refreshToken, err := h.userUsecase.Login(c.Request.Context(), req.Username)
	if err != nil {
		ErrorHandler(c, http.StatusUnauthorized, "Unknown or deleted account")
		return
	}

	response := dto.LoginResponse{
		User:         dto.ToUserResponse(*user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	SuccessHandler(c, http.StatusOK, response)
}

// RefreshToken exchanges a refresh token for a new pair
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}

	access, refresh, err := h.userUsecase.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		ErrorHandler(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	SuccessHandler(c, http.StatusOK, dto.TokenResponse{AccessToken: access, RefreshToken: refresh})
}

// GetUser handles retrieving user by ID
func (h *UserHandler) GetUser(c *gin.Context) {
	userID := c.Param("id")
	user, err := h.userUsecase.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		ErrorHandler(c, http.StatusNotFound, "User not found")
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToUserResponse(*user))
}

// GetCurrentUser handles retrieving the current authenticated user
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userUsecase.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		ErrorHandler(c, http.StatusNotFound, "User not found")
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToUserResponse(*user))
}

// GetUsersBatch looks up many users at once
func (h *UserHandler) GetUsersBatch(c *gin.Context) {
	var req dto.UsersBatchRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}

	users, err := h.userUsecase.GetUsersByIDs(c.Request.Context(), req.IDs)
	if err != nil {
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToUserResponses(users))
}

// SearchUsers runs a username prefix search
func (h *UserHandler) SearchUsers(c *gin.Context) {
	prefix := c.Query("q")
	users, err := h.userUsecase.SearchUsers(c.Request.Context(), prefix)
	if err != nil {
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToUserResponses(users))
}

// CheckUsername reports whether a username is still available
func (h *UserHandler) CheckUsername(c *gin.Context) {
	username := c.Query("username")
	available, err := h.userUsecase.CheckUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidUsername) {
			ErrorHandler(c, http.StatusBadRequest, err.Error())
			return
		}
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessHandler(c, http.StatusOK, dto.AvailabilityResponse{Username: username, Available: available})
}

// UpdateProfile handles partial profile updates for the current user
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}

	update := contract.ProfileUpdate{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	}
	user, err := h.userUsecase.UpdateProfile(c.Request.Context(), userID, update)
	if err != nil {
		ErrorHandler(c, http.StatusConflict, err.Error())
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToUserResponse(*user))
}

// SetPresence updates the caller's availability
func (h *UserHandler) SetPresence(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.PresenceRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}
	if err := h.userUsecase.SetPresence(c.Request.Context(), userID, entity.Presence(req.Presence)); err != nil {
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	MessageHandler(c, http.StatusOK, "Presence updated")
}

// Heartbeat refreshes the caller's last-active timestamp
func (h *UserHandler) Heartbeat(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.userUsecase.Heartbeat(c.Request.Context(), userID); err != nil {
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	MessageHandler(c, http.StatusOK, "OK")
}

// SetTyping records or clears the typing indicator
func (h *UserHandler) SetTyping(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.TypingRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}
	if err := h.userUsecase.SetTyping(c.Request.Context(), userID, req.ChatID); err != nil {
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	MessageHandler(c, http.StatusOK, "Typing status updated")
}

// RegisterDeviceToken stores a push notification token
func (h *UserHandler) RegisterDeviceToken(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.DeviceTokenRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}
	if err := h.userUsecase.RegisterDeviceToken(c.Request.Context(), userID, req.Token); err != nil {
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	MessageHandler(c, http.StatusOK, "Device token registered")
}

// UpdatePrivacy replaces the caller's privacy settings
func (h *UserHandler) UpdatePrivacy(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.PrivacyRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}
	privacy := entity.PrivacySettings{
		LastSeenVisibility:     entity.Visibility(req.LastSeenVisibility),
		ProfilePhotoVisibility: entity.Visibility(req.ProfilePhotoVisibility),
		ReadReceipts:           req.ReadReceipts,
	}
	if err := h.userUsecase.UpdatePrivacy(c.Request.Context(), userID, privacy); err != nil {
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	MessageHandler(c, http.StatusOK, "Privacy settings updated")
}

// AddPrivacyException hides last-seen from one user
func (h *UserHandler) AddPrivacyException(c *gin.Context) {
	h.targetOp(c, h.userUsecase.AddPrivacyException, "Privacy exception added")
}

// RemovePrivacyException lifts a last-seen exception
func (h *UserHandler) RemovePrivacyException(c *gin.Context) {
	h.targetOp(c, h.userUsecase.RemovePrivacyException, "Privacy exception removed")
}

// BlockUser adds a user to the caller's blocked set
func (h *UserHandler) BlockUser(c *gin.Context) {
	h.targetOp(c, h.userUsecase.BlockUser, "User blocked")
}

// UnblockUser removes a user from the caller's blocked set
func (h *UserHandler) UnblockUser(c *gin.Context) {
	h.targetOp(c, h.userUsecase.UnblockUser, "User unblocked")
}

// MuteChat silences a chat
func (h *UserHandler) MuteChat(c *gin.Context) {
	h.targetOp(c, h.userUsecase.MuteChat, "Chat muted")
}

// UnmuteChat restores notifications for a chat
func (h *UserHandler) UnmuteChat(c *gin.Context) {
	h.targetOp(c, h.userUsecase.UnmuteChat, "Chat unmuted")
}

// targetOp runs an operation taking the caller id and the :id path param.
func (h *UserHandler) targetOp(c *gin.Context, op func(ctx context.Context, userID, targetID string) error, message string) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID := c.Param("id")
	if targetID == "" {
		ErrorHandler(c, http.StatusBadRequest, "Missing target id")
		return
	}
	if err := op(c.Request.Context(), userID, targetID); err != nil {
		ErrorHandler(c, http.StatusConflict, err.Error())
		return
	}
	MessageHandler(c, http.StatusOK, message)
}

// GrantPremium flags the caller's account as premium
func (h *UserHandler) GrantPremium(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.PremiumRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}
	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			ErrorHandler(c, http.StatusBadRequest, "expires_at must be RFC3339")
			return
		}
		expiresAt = &t
	}
	if err := h.userUsecase.GrantPremium(c.Request.Context(), userID, expiresAt); err != nil {
		ErrorHandler(c, http.StatusBadRequest, err.Error())
		return
	}
	MessageHandler(c, http.StatusOK, "Premium granted")
}

// RevokePremium clears the caller's premium flag
func (h *UserHandler) RevokePremium(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.userUsecase.RevokePremium(c.Request.Context(), userID); err != nil {
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	MessageHandler(c, http.StatusOK, "Premium revoked")
}

// PremiumUsers lists premium accounts
func (h *UserHandler) PremiumUsers(c *gin.Context) {
	users, err := h.userUsecase.PremiumUsers(c.Request.Context())
	if err != nil {
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToUserResponses(users))
}

// OnlineCount reports how many users are currently online
func (h *UserHandler) OnlineCount(c *gin.Context) {
	count, err := h.userUsecase.OnlineCount(c.Request.Context())
	if err != nil {
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessHandler(c, http.StatusOK, dto.CountResponse{Count: count})
}

// SetPresenceBulk applies presence for many users in one atomic batch
func (h *UserHandler) SetPresenceBulk(c *gin.Context) {
	var req dto.BulkPresenceRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}
	presenceByID := make(map[string]entity.Presence, len(req.Presence))
	for id, p := range req.Presence {
		presenceByID[id] = entity.Presence(p)
	}
	if err := h.userUsecase.SetPresenceBulk(c.Request.Context(), presenceByID); err != nil {
		ErrorHandler(c, http.StatusBadRequest, err.Error())
		return
	}
	MessageHandler(c, http.StatusOK, "Presence updated")
}

// DeactivateAccount soft-deletes the caller's account
func (h *UserHandler) DeactivateAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.userUsecase.DeactivateAccount(c.Request.Context(), userID); err != nil {
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	MessageHandler(c, http.StatusOK, "Account deactivated")
}

// DeleteAccount removes the caller's account permanently
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.userUsecase.DeleteAccount(c.Request.Context(), userID); err != nil {
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	MessageHandler(c, http.StatusOK, "Account deleted")
}

// ObserveUser streams user snapshots as server-sent events until the client
// disconnects
func (h *UserHandler) ObserveUser(c *gin.Context) {
	userID := c.Param("id")
	snapshots, err := h.userUsecase.ObserveUser(c.Request.Context(), userID)
	if err != nil {
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.Stream(func(w io.Writer) bool {
		snap, open := <-snapshots
		if !open {
			return false
		}
		if snap.Err != nil {
			c.SSEvent("error", snap.Err.Error())
			return false
		}
		if snap.User == nil {
			c.SSEvent("absent", gin.H{"id": userID})
			return true
		}
		c.SSEvent("user", dto.ToUserResponse(*snap.User))
		return true
	})
}
