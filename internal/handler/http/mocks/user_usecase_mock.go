package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/mikiasgoitom/Parley/internal/domain/contract"
	"github.com/mikiasgoitom/Parley/internal/domain/entity"
	"github.com/mikiasgoitom/Parley/internal/usecase"
	usecasecontract "github.com/mikiasgoitom/Parley/internal/usecase/contract"
)

// MockUserUsecase is a mock implementation of the UserUsecase interface
type MockUserUsecase struct {
	// Control mock behavior
	ShouldFailRegister        bool
	ShouldFailLogin           bool
	ShouldFailRefreshToken    bool
	ShouldFailAuthenticate    bool
	ShouldFailGetByID         bool
	ShouldFailGetBatch        bool
	ShouldFailSearch          bool
	ShouldFailCheckUsername   bool
	ShouldFailUsernameLookup  bool
	ShouldFailUpdateProfile   bool
	ShouldFailSetPresence     bool
	ShouldFailHeartbeat       bool
	ShouldFailSetTyping       bool
	ShouldFailDeviceToken     bool
	ShouldFailUpdatePrivacy   bool
	ShouldFailPrivacyExc      bool
	ShouldFailBlock           bool
	ShouldFailMute            bool
	ShouldFailPremium         bool
	ShouldFailOnlineCount     bool
	ShouldFailPresenceBulk    bool
	ShouldFailDeactivate      bool
	ShouldFailDelete          bool
	ShouldFailObserve         bool
	UsernameTaken             bool

	// Return values
	MockUser         entity.User
	MockAccessToken  string
	MockRefreshToken string
	MockOnlineCount  int64

	// Captured arguments
	LastTargetID string
	LastPresence entity.Presence
}

// Ensure MockUserUsecase implements the correct interface for handler.NewUserHandler
var _ usecasecontract.IUserUseCase = (*MockUserUsecase)(nil)

func NewMockUserUsecase() *MockUserUsecase {
	return &MockUserUsecase{
		MockUser: entity.User{
			ID:       "mock-user-id",
			Username: "testuser",
			Email:    "test@example.com",
			Presence: entity.PresenceOnline,
			Status:   entity.AccountStatusActive,
			Privacy:  entity.DefaultPrivacySettings(),
		},
		MockAccessToken:  "mock_access_token",
		MockRefreshToken: "mock_refresh_token",
		MockOnlineCount:  42,
	}
}

func (m *MockUserUsecase) Register(ctx context.Context, username, email, phone, firstName, lastName string) (*entity.User, error) {
	if m.ShouldFailRegister {
		return nil, errors.New("user creation failed")
	}
	return &m.MockUser, nil
}

func (m *MockUserUsecase) Login(ctx context.Context, username string) (*entity.User, string, string, error) {
	if m.ShouldFailLogin {
		return nil, "", "", errors.New("login failed")
	}
	return &m.MockUser, m.MockAccessToken, m.MockRefreshToken, nil
}

func (m *MockUserUsecase) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	if m.ShouldFailRefreshToken {
		return "", "", errors.New("refresh failed")
	}
	return m.MockAccessToken, m.MockRefreshToken, nil
}

func (m *MockUserUsecase) Authenticate(ctx context.Context, accessToken string) (*entity.User, error) {
	if m.ShouldFailAuthenticate {
		return nil, errors.New("authentication failed")
	}
	return &m.MockUser, nil
}

func (m *MockUserUsecase) GetUserByID(ctx context.Context, userID string) (*entity.User, error) {
	if m.ShouldFailGetByID {
		return nil, errors.New("user not found")
	}
	return &m.MockUser, nil
}

func (m *MockUserUsecase) GetUsersByIDs(ctx context.Context, ids []string) ([]*entity.User, error) {
	if m.ShouldFailGetBatch {
		return nil, errors.New("batch lookup failed")
	}
	return []*entity.User{&m.MockUser}, nil
}

func (m *MockUserUsecase) SearchUsers(ctx context.Context, prefix string) ([]*entity.User, error) {
	if m.ShouldFailSearch {
		return nil, errors.New("search failed")
	}
	return []*entity.User{&m.MockUser}, nil
}

func (m *MockUserUsecase) CheckUsername(ctx context.Context, username string) (bool, error) {
	if m.ShouldFailCheckUsername {
		return false, usecase.ErrInvalidUsername
	}
	if m.ShouldFailUsernameLookup {
		return false, errors.New("availability lookup failed")
	}
	return !m.UsernameTaken, nil
}

func (m *MockUserUsecase) UpdateProfile(ctx context.Context, userID string, update contract.ProfileUpdate) (*entity.User, error) {
	if m.ShouldFailUpdateProfile {
		return nil, errors.New("update profile failed")
	}
	return &m.MockUser, nil
}

func (m *MockUserUsecase) SetPresence(ctx context.Context, userID string, presence entity.Presence) error {
	if m.ShouldFailSetPresence {
		return errors.New("set presence failed")
	}
	m.LastPresence = presence
	return nil
}

func (m *MockUserUsecase) Heartbeat(ctx context.Context, userID string) error {
	if m.ShouldFailHeartbeat {
		return errors.New("heartbeat failed")
	}
	return nil
}

func (m *MockUserUsecase) SetTyping(ctx context.Context, userID, chatID string) error {
	if m.ShouldFailSetTyping {
		return errors.New("set typing failed")
	}
	return nil
}

func (m *MockUserUsecase) RegisterDeviceToken(ctx context.Context, userID, token string) error {
	if m.ShouldFailDeviceToken {
		return errors.New("register device token failed")
	}
	return nil
}

func (m *MockUserUsecase) UpdatePrivacy(ctx context.Context, userID string, privacy entity.PrivacySettings) error {
	if m.ShouldFailUpdatePrivacy {
		return errors.New("update privacy failed")
	}
	return nil
}

func (m *MockUserUsecase) AddPrivacyException(ctx context.Context, userID, targetID string) error {
	if m.ShouldFailPrivacyExc {
		return errors.New("add privacy exception failed")
	}
	m.LastTargetID = targetID
	return nil
}

func (m *MockUserUsecase) RemovePrivacyException(ctx context.Context, userID, targetID string) error {
	if m.ShouldFailPrivacyExc {
		return errors.New("remove privacy exception failed")
	}
	m.LastTargetID = targetID
	return nil
}

func (m *MockUserUsecase) BlockUser(ctx context.Context, userID, targetID string) error {
	if m.ShouldFailBlock {
		return errors.New("block failed")
	}
	m.LastTargetID = targetID
	return nil
}

func (m *MockUserUsecase) UnblockUser(ctx context.Context, userID, targetID string) error {
	if m.ShouldFailBlock {
		return errors.New("unblock failed")
	}
	m.LastTargetID = targetID
	return nil
}

func (m *MockUserUsecase) MuteChat(ctx context.Context, userID, chatID string) error {
	if m.ShouldFailMute {
		return errors.New("mute failed")
	}
	m.LastTargetID = chatID
	return nil
}

func (m *MockUserUsecase) UnmuteChat(ctx context.Context, userID, chatID string) error {
	if m.ShouldFailMute {
		return errors.New("unmute failed")
	}
	m.LastTargetID = chatID
	return nil
}

func (m *MockUserUsecase) GrantPremium(ctx context.Context, userID string, expiresAt *time.Time) error {
	if m.ShouldFailPremium {
		return errors.New("grant premium failed")
	}
	return nil
}

func (m *MockUserUsecase) RevokePremium(ctx context.Context, userID string) error {
	if m.ShouldFailPremium {
		return errors.New("revoke premium failed")
	}
	return nil
}

func (m *MockUserUsecase) PremiumUsers(ctx context.Context) ([]*entity.User, error) {
	if m.ShouldFailPremium {
		return nil, errors.New("premium listing failed")
	}
	return []*entity.User{&m.MockUser}, nil
}

func (m *MockUserUsecase) OnlineCount(ctx context.Context) (int64, error) {
	if m.ShouldFailOnlineCount {
		return 0, errors.New("count failed")
	}
	return m.MockOnlineCount, nil
}

func (m *MockUserUsecase) SetPresenceBulk(ctx context.Context, presenceByID map[string]entity.Presence) error {
	if m.ShouldFailPresenceBulk {
		return errors.New("bulk presence failed")
	}
	return nil
}

func (m *MockUserUsecase) DeactivateAccount(ctx context.Context, userID string) error {
	if m.ShouldFailDeactivate {
		return errors.New("deactivate failed")
	}
	return nil
}

func (m *MockUserUsecase) DeleteAccount(ctx context.Context, userID string) error {
	if m.ShouldFailDelete {
		return errors.New("delete failed")
	}
	return nil
}

func (m *MockUserUsecase) ObserveUser(ctx context.Context, userID string) (<-chan contract.UserSnapshot, error) {
	if m.ShouldFailObserve {
		return nil, errors.New("observe failed")
	}
	ch := make(chan contract.UserSnapshot, 1)
	ch <- contract.UserSnapshot{User: &m.MockUser}
	close(ch)
	return ch, nil
}
