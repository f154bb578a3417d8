package contract

import (
	"context"
	"time"

	"github.com/mikiasgoitom/Parley/internal/domain/entity"
)

// ProfileUpdate names the profile fields a caller may change. Nil pointers
// leave the stored value untouched.
type ProfileUpdate struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	AvatarURL *string
}

// UserSnapshot is one observed state of a user document. User is nil when the
// document is absent. Err is delivered at most once, immediately before the
// stream closes.
type UserSnapshot struct {
	User *entity.User
	Err  error
}

type IUserRepository interface {
	// CreateUser writes the full document at user.ID.
	CreateUser(ctx context.Context, user *entity.User) error
	// CreateUserWithGeneratedID allocates a new id, stamps it onto user and
	// writes the document. The returned user carries the new id.
	CreateUserWithGeneratedID(ctx context.Context, user *entity.User) (*entity.User, error)
	// GetUserByID returns (nil, nil) when no document exists.
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*entity.User, error)
	// GetUsersByIDs looks up many users, chunking the lookup by the store's
	// IN cardinality cap. Result order is not guaranteed.
	GetUsersByIDs(ctx context.Context, ids []string) ([]*entity.User, error)
	// SearchUsersByUsername returns users whose username starts with prefix,
	// ordered by username, at most limit results.
	SearchUsersByUsername(ctx context.Context, prefix string, limit int64) ([]*entity.User, error)
	// SearchUsersByName is the same prefix search over first_name.
	SearchUsersByName(ctx context.Context, prefix string, limit int64) ([]*entity.User, error)

	// UpdateUser merge-writes the full document at user.ID.
	UpdateUser(ctx context.Context, user *entity.User) error
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error
	UpdatePresence(ctx context.Context, id string, presence entity.Presence) error
	// SetTypingStatus records the chat the user is typing in; an empty chatID
	// clears it.
	SetTypingStatus(ctx context.Context, id string, chatID string) error
	TouchLastActive(ctx context.Context, id string) error
	UpdateNotificationToken(ctx context.Context, id string, token string) error
	UpdatePrivacySettings(ctx context.Context, id string, privacy entity.PrivacySettings) error
	UpdateAccountStatus(ctx context.Context, id string, status entity.AccountStatus) error
	SetPremium(ctx context.Context, id string, premium bool, expiresAt *time.Time) error

	BlockUser(ctx context.Context, id, targetID string) error
	UnblockUser(ctx context.Context, id, targetID string) error
	MuteChat(ctx context.Context, id, chatID string) error
	UnmuteChat(ctx context.Context, id, chatID string) error
	AddLastSeenException(ctx context.Context, id, targetID string) error
	RemoveLastSeenException(ctx context.Context, id, targetID string) error

	// SoftDeleteUser marks the account deleted and the presence offline; the
	// document is kept.
	SoftDeleteUser(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error
	// DeleteUsers removes all listed documents in one atomic batch.
	DeleteUsers(ctx context.Context, ids []string) error
	// UpdatePresenceBulk applies all presence changes in one atomic batch
	// sharing a single timestamp.
	UpdatePresenceBulk(ctx context.Context, presenceByID map[string]entity.Presence) error

	IsUsernameAvailable(ctx context.Context, username string) (bool, error)
	UserExists(ctx context.Context, id string) (bool, error)
	CountOnlineUsers(ctx context.Context) (int64, error)
	ListPremiumUsers(ctx context.Context, limit int64) ([]*entity.User, error)

	// ObserveUserByID streams snapshots of the user, starting from the
	// current state. The stream ends when ctx is cancelled.
	ObserveUserByID(ctx context.Context, id string) (<-chan UserSnapshot, error)
}
