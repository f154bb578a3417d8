package dto

import (
	"time"

	"github.com/mikiasgoitom/Parley/internal/domain/entity"
)

// UserResponse is the DTO for a user.
type UserResponse struct {
	ID           string          `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	FirstName    string          `json:"first_name,omitempty"`
	LastName     string          `json:"last_name,omitempty"`
	Bio          string          `json:"bio,omitempty"`
	AvatarURL    string          `json:"avatar_url,omitempty"`
	Presence     string          `json:"presence"`
	Status       string          `json:"status"`
	TypingInChat string          `json:"typing_in_chat,omitempty"`
	Privacy      PrivacyResponse `json:"privacy"`
	BlockedUsers []string        `json:"blocked_users,omitempty"`
	MutedChats   []string        `json:"muted_chats,omitempty"`
	IsPremium    bool            `json:"is_premium"`
	LastActiveAt string          `json:"last_active,omitempty"`
	CreatedAt    string          `json:"created_at"`
}

// PrivacyResponse mirrors the stored privacy settings.
type PrivacyResponse struct {
	LastSeenVisibility     string   `json:"last_seen_visibility"`
	ProfilePhotoVisibility string   `json:"profile_photo_visibility"`
	ReadReceipts           bool     `json:"read_receipts"`
	LastSeenExceptions     []string `json:"last_seen_exceptions,omitempty"`
}

// LoginResponse is the DTO for a successful login.
type LoginResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

// TokenResponse is the DTO for a token refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AvailabilityResponse reports whether a username is claimable.
type AvailabilityResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

// CountResponse carries a single aggregate count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// converts an entity.User to a UserResponse DTO.
func ToUserResponse(user entity.User) UserResponse {
	resp := UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Phone:        user.Phone,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Bio:          user.Bio,
		AvatarURL:    user.AvatarURL,
		Presence:     string(user.Presence),
		Status:       string(user.Status),
		TypingInChat: user.TypingInChat,
		Privacy: PrivacyResponse{
			LastSeenVisibility:     string(user.Privacy.LastSeenVisibility),
			ProfilePhotoVisibility: string(user.Privacy.ProfilePhotoVisibility),
			ReadReceipts:           user.Privacy.ReadReceipts,
			LastSeenExceptions:     user.Privacy.LastSeenExceptions,
		},
		BlockedUsers: user.BlockedUsers,
		MutedChats:   user.MutedChats,
		IsPremium:    user.HasActivePremium(time.Now()),
		CreatedAt:    user.CreatedAt.Format(time.RFC3339),
	}
	if !user.LastActiveAt.IsZero() {
		resp.LastActiveAt = user.LastActiveAt.Format(time.RFC3339)
	}
	return resp
}

// ToUserResponses maps a slice of users.
func ToUserResponses(users []*entity.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		if u == nil {
			continue
		}
		out = append(out, ToUserResponse(*u))
	}
	return out
}

// MessageResponse is a generic response for success/error messages.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is a response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
