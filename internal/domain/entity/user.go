package entity

import (
	"time"
)

// User represents a user document in the "users" collection. The document key
// is always User.ID.
type User struct {
	ID               string          `bson:"_id" json:"id"`
	Username         string          `bson:"username" json:"username"`
	Email            string          `bson:"email,omitempty" json:"email,omitempty"`
	Phone            string          `bson:"phone,omitempty" json:"phone,omitempty"`
	FirstName        string          `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName         string          `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Bio              string          `bson:"bio,omitempty" json:"bio,omitempty"`
	AvatarURL        string          `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Presence         Presence        `bson:"presence" json:"presence"`
	Status           AccountStatus   `bson:"status" json:"status"`
	TypingInChat     string          `bson:"typing_in_chat,omitempty" json:"typing_in_chat,omitempty"`
	FCMToken         string          `bson:"fcm_token,omitempty" json:"-"`
	Privacy          PrivacySettings `bson:"privacy" json:"privacy"`
	BlockedUsers     []string        `bson:"blocked_users,omitempty" json:"blocked_users,omitempty"`
	MutedChats       []string        `bson:"muted_chats,omitempty" json:"muted_chats,omitempty"`
	IsPremium        bool            `bson:"is_premium,omitempty" json:"is_premium"`
	PremiumExpiresAt *time.Time      `bson:"premium_expires_at,omitempty" json:"premium_expires_at,omitempty"`
	LastActiveAt     time.Time       `bson:"last_active,omitempty" json:"last_active"`
	CreatedAt        time.Time       `bson:"created_at,omitempty" json:"created_at"`
	UpdatedAt        time.Time       `bson:"updated_at,omitempty" json:"updated_at"`
}

// Presence is the user's real-time availability.
type Presence string

const (
	PresenceOnline  Presence = "online"
	PresenceAway    Presence = "away"
	PresenceOffline Presence = "offline"
)

// AccountStatus is the lifecycle state of an account. Soft deletion flips the
// status to deleted without removing the document.
type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "active"
	AccountStatusDeleted AccountStatus = "deleted"
	AccountStatusBanned  AccountStatus = "banned"
)

// Visibility controls who may see a privacy-guarded attribute.
type Visibility string

const (
	VisibilityEveryone Visibility = "everyone"
	VisibilityContacts Visibility = "contacts"
	VisibilityNobody   Visibility = "nobody"
)

// PrivacySettings is embedded in the user document under "privacy".
type PrivacySettings struct {
	LastSeenVisibility     Visibility `bson:"last_seen_visibility" json:"last_seen_visibility"`
	ProfilePhotoVisibility Visibility `bson:"profile_photo_visibility" json:"profile_photo_visibility"`
	ReadReceipts           bool       `bson:"read_receipts" json:"read_receipts"`
	// LastSeenExceptions lists user ids excluded from LastSeenVisibility.
	LastSeenExceptions []string `bson:"last_seen_exceptions,omitempty" json:"last_seen_exceptions,omitempty"`
}

// DefaultPrivacySettings returns the settings applied to new accounts.
func DefaultPrivacySettings() PrivacySettings {
	return PrivacySettings{
		LastSeenVisibility:     VisibilityEveryone,
		ProfilePhotoVisibility: VisibilityEveryone,
		ReadReceipts:           true,
	}
}

// IsDeleted reports whether the account has been soft-deleted.
func (u *User) IsDeleted() bool {
	return u.Status == AccountStatusDeleted
}

// HasActivePremium reports whether the premium flag is set and not expired.
func (u *User) HasActivePremium(now time.Time) bool {
	if !u.IsPremium {
		return false
	}
	if u.PremiumExpiresAt == nil {
		return true
	}
	return u.PremiumExpiresAt.After(now)
}
