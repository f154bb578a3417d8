package dto

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,username"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone" binding:"omitempty,e164"`
	FirstName string `json:"first_name" binding:"omitempty,max=64"`
	LastName  string `json:"last_name" binding:"omitempty,max=64"`
}

// LoginRequest identifies the account to issue tokens for.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
}

// RefreshRequest carries a refresh token to exchange.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest carries optional profile changes; absent fields are
// left untouched.
type UpdateProfileRequest struct {
	Username  *string `json:"username" binding:"omitempty,username"`
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"first_name" binding:"omitempty,max=64"`
	LastName  *string `json:"last_name" binding:"omitempty,max=64"`
	Bio       *string `json:"bio" binding:"omitempty,max=280"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,url"`
}

// PresenceRequest sets the caller's availability.
type PresenceRequest struct {
	Presence string `json:"presence" binding:"required,oneof=online away offline"`
}

// TypingRequest marks the chat the caller is typing in; empty clears it.
type TypingRequest struct {
	ChatID string `json:"chat_id"`
}

// DeviceTokenRequest registers a push notification token.
type DeviceTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// PrivacyRequest replaces the caller's privacy settings.
type PrivacyRequest struct {
	LastSeenVisibility     string `json:"last_seen_visibility" binding:"required,oneof=everyone contacts nobody"`
	ProfilePhotoVisibility string `json:"profile_photo_visibility" binding:"required,oneof=everyone contacts nobody"`
	ReadReceipts           bool   `json:"read_receipts"`
}

// UsersBatchRequest looks up many users at once.
type UsersBatchRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// BulkPresenceRequest applies presence for many users atomically.
type BulkPresenceRequest struct {
	Presence map[string]string `json:"presence" binding:"required"`
}

// PremiumRequest grants premium, optionally until an RFC3339 timestamp.
type PremiumRequest struct {
	ExpiresAt string `json:"expires_at" binding:"omitempty"`
}
