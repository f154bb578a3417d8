package usecasecontract

import (
	"context"
	"time"

	"github.com/mikiasgoitom/Parley/internal/domain/contract"
	"github.com/mikiasgoitom/Parley/internal/domain/entity"
)

// IUserUseCase defines the interface for user-related operations.
type IUserUseCase interface {
	Register(ctx context.Context, username, email, phone, firstName, lastName string) (*entity.User, error)
	Login(ctx context.Context, username string) (*entity.User, string, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, string, error)
	Authenticate(ctx context.Context, accessToken string) (*entity.User, error)

	GetUserByID(ctx context.Context, userID string) (*entity.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]*entity.User, error)
	SearchUsers(ctx context.Context, prefix string) ([]*entity.User, error)
	CheckUsername(ctx context.Context, username string) (bool, error)

	UpdateProfile(ctx context.Context, userID string, update contract.ProfileUpdate) (*entity.User, error)
	SetPresence(ctx context.Context, userID string, presence entity.Presence) error
	Heartbeat(ctx context.Context, userID string) error
	SetTyping(ctx context.Context, userID, chatID string) error
	RegisterDeviceToken(ctx context.Context, userID, token string) error
	UpdatePrivacy(ctx context.Context, userID string, privacy entity.PrivacySettings) error
	AddPrivacyException(ctx context.Context, userID, targetID string) error
	RemovePrivacyException(ctx context.Context, userID, targetID string) error

	BlockUser(ctx context.Context, userID, targetID string) error
	UnblockUser(ctx context.Context, userID, targetID string) error
	MuteChat(ctx context.Context, userID, chatID string) error
	UnmuteChat(ctx context.Context, userID, chatID string) error

	GrantPremium(ctx context.Context, userID string, expiresAt *time.Time) error
	RevokePremium(ctx context.Context, userID string) error
	PremiumUsers(ctx context.Context) ([]*entity.User, error)
	OnlineCount(ctx context.Context) (int64, error)
	SetPresenceBulk(ctx context.Context, presenceByID map[string]entity.Presence) error

	DeactivateAccount(ctx context.Context, userID string) error
	DeleteAccount(ctx context.Context, userID string) error

	ObserveUser(ctx context.Context, userID string) (<-chan contract.UserSnapshot, error)
}
