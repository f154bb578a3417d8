package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikiasgoitom/Parley/internal/domain/contract"
	"github.com/mikiasgoitom/Parley/internal/domain/entity"
	usecasecontract "github.com/mikiasgoitom/Parley/internal/usecase/contract"
)

// Constants for common error messages
const (
	errUserNotFound   = "user not found"
	errInternalServer = "internal server error"
)

var (
	ErrUsernameTaken   = errors.New("username already taken")
	ErrInvalidUsername = errors.New("invalid username")
	ErrSelfTarget      = errors.New("operation cannot target the requesting user")
	ErrAccountDeleted  = errors.New("account has been deleted")
)

// UserUsecase implements the IUserUseCase interface.
type UserUsecase struct {
	userRepo   contract.IUserRepository
	jwtService JWTService
	logger     usecasecontract.IAppLogger
	config     usecasecontract.IConfigProvider
	validator  usecasecontract.IValidator
}

// NewUserUsecase creates a new UserUsecase instance.
func NewUserUsecase(
	userRepo contract.IUserRepository,
	jwtService JWTService,
	logger usecasecontract.IAppLogger,
	cfg usecasecontract.IConfigProvider,
	validator usecasecontract.IValidator,
) *UserUsecase {
	return &UserUsecase{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
		config:     cfg,
		validator:  validator,
	}
}

// check if UserUsecase implements the IUserUseCase
var _ usecasecontract.IUserUseCase = (*UserUsecase)(nil)

// Register creates a new user account with default presence and privacy.
func (uc *UserUsecase) Register(ctx context.Context, username, email, phone, firstName, lastName string) (*entity.User, error) {
	if err := uc.validator.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if email != "" {
		if err := uc.validator.ValidateEmail(email); err != nil {
			return nil, fmt.Errorf("invalid email format: %w", err)
		}
	}
	if phone != "" {
		if err := uc.validator.ValidatePhone(phone); err != nil {
			return nil, fmt.Errorf("invalid phone number: %w", err)
		}
	}

	// Best-effort check only; the store does not enforce username uniqueness
	// transactionally.
	available, err := uc.userRepo.IsUsernameAvailable(ctx, username)
	if err != nil {
		uc.logger.Errorf("failed to check username availability: %v", err)
		return nil, errors.New(errInternalServer)
	}
	if !available {
		return nil, ErrUsernameTaken
	}

	user := &entity.User{
		Username:  username,
		Email:     email,
		Phone:     phone,
		FirstName: firstName,
		LastName:  lastName,
		Presence:  entity.PresenceOffline,
		Status:    entity.AccountStatusActive,
		Privacy:   entity.DefaultPrivacySettings(),
	}
	created, err := uc.userRepo.CreateUserWithGeneratedID(ctx, user)
	if err != nil {
		uc.logger.Errorf("failed to create user %s: %v", username, err)
		return nil, errors.New(errInternalServer)
	}
	uc.logger.Infof("registered user %s (%s)", created.Username, created.ID)
	return created, nil
}

// Login issues a token pair for an existing, non-deleted account. Identity
// verification happens upstream; this service only guards its own data.
func (uc *UserUsecase) Login(ctx context.Context, username string) (*entity.User, string, string, error) {
	user, err := uc.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		uc.logger.Errorf("login lookup failed for %s: %v", username, err)
		return nil, "", "", errors.New(errInternalServer)
	}
	if user == nil {
		return nil, "", "", errors.New(errUserNotFound)
	}
	if user.IsDeleted() {
		return nil, "", "", ErrAccountDeleted
	}

	accessToken, err := uc.jwtService.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, "", "", err
	}
	refreshToken, err := uc.jwtService.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, "", "", err
	}

	if err := uc.userRepo.TouchLastActive(ctx, user.ID); err != nil {
		uc.logger.Warnf("failed to touch last_active for %s: %v", user.ID, err)
	}
	return user, accessToken, refreshToken, nil
}

// RefreshToken exchanges a valid refresh token for a new token pair.
func (uc *UserUsecase) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := uc.jwtService.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", "", err
	}
	exists, err := uc.userRepo.UserExists(ctx, claims.UserID)
	if err != nil {
		return "", "", errors.New(errInternalServer)
	}
	if !exists {
		return "", "", errors.New(errUserNotFound)
	}
	access, err := uc.jwtService.GenerateAccessToken(claims.UserID)
	if err != nil {
		return "", "", err
	}
	refresh, err := uc.jwtService.GenerateRefreshToken(claims.UserID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Authenticate resolves an access token to its user.
func (uc *UserUsecase) Authenticate(ctx context.Context, accessToken string) (*entity.User, error) {
	claims, err := uc.jwtService.ParseAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, errors.New(errInternalServer)
	}
	if user == nil || user.IsDeleted() {
		return nil, errors.New(errUserNotFound)
	}
	return user, nil
}

// GetUserByID returns the user or an error when absent.
func (uc *UserUsecase) GetUserByID(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		uc.logger.Errorf("failed to get user %s: %v", userID, err)
		return nil, errors.New(errInternalServer)
	}
	if user == nil {
		return nil, errors.New(errUserNotFound)
	}
	return user, nil
}

// GetUsersByIDs returns the users found for the given ids.
func (uc *UserUsecase) GetUsersByIDs(ctx context.Context, ids []string) ([]*entity.User, error) {
	users, err := uc.userRepo.GetUsersByIDs(ctx, ids)
	if err != nil {
		uc.logger.Errorf("batch user lookup failed: %v", err)
		return nil, errors.New(errInternalServer)
	}
	return users, nil
}

// SearchUsers runs a prefix search over usernames, bounded by configuration.
func (uc *UserUsecase) SearchUsers(ctx context.Context, prefix string) ([]*entity.User, error) {
	if prefix == "" {
		return nil, nil
	}
	users, err := uc.userRepo.SearchUsersByUsername(ctx, prefix, uc.config.GetSearchResultLimit())
	if err != nil {
		uc.logger.Errorf("user search failed for prefix %q: %v", prefix, err)
		return nil, errors.New(errInternalServer)
	}
	return users, nil
}

// CheckUsername reports whether a username can still be claimed. A malformed
// username is reported as ErrInvalidUsername; a store failure is not.
func (uc *UserUsecase) CheckUsername(ctx context.Context, username string) (bool, error) {
	if err := uc.validator.ValidateUsername(username); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidUsername, err)
	}
	available, err := uc.userRepo.IsUsernameAvailable(ctx, username)
	if err != nil {
		return false, errors.New(errInternalServer)
	}
	return available, nil
}

// UpdateProfile applies a partial profile update and returns the fresh user.
func (uc *UserUsecase) UpdateProfile(ctx context.Context, userID string, update contract.ProfileUpdate) (*entity.User, error) {
	if update.Username != nil {
		if err := uc.validator.ValidateUsername(*update.Username); err != nil {
			return nil, fmt.Errorf("invalid username: %w", err)
		}
		available, err := uc.userRepo.IsUsernameAvailable(ctx, *update.Username)
		if err != nil {
			return nil, errors.New(errInternalServer)
		}
		if !available {
			return nil, ErrUsernameTaken
		}
	}
	if update.Email != nil && *update.Email != "" {
		if err := uc.validator.ValidateEmail(*update.Email); err != nil {
			return nil, fmt.Errorf("invalid email format: %w", err)
		}
	}

	if err := uc.userRepo.UpdateProfile(ctx, userID, update); err != nil {
		uc.logger.Errorf("profile update failed for %s: %v", userID, err)
		return nil, errors.New(errInternalServer)
	}
	return uc.GetUserByID(ctx, userID)
}

// SetPresence updates real-time availability.
func (uc *UserUsecase) SetPresence(ctx context.Context, userID string, presence entity.Presence) error {
	switch presence {
	case entity.PresenceOnline, entity.PresenceAway, entity.PresenceOffline:
	default:
		return fmt.Errorf("unknown presence %q", presence)
	}
	return uc.userRepo.UpdatePresence(ctx, userID, presence)
}

// Heartbeat refreshes the last-active timestamp.
func (uc *UserUsecase) Heartbeat(ctx context.Context, userID string) error {
	return uc.userRepo.TouchLastActive(ctx, userID)
}

// SetTyping records or clears the typing indicator for a chat.
func (uc *UserUsecase) SetTyping(ctx context.Context, userID, chatID string) error {
	return uc.userRepo.SetTypingStatus(ctx, userID, chatID)
}

// RegisterDeviceToken stores the push notification token.
func (uc *UserUsecase) RegisterDeviceToken(ctx context.Context, userID, token string) error {
	return uc.userRepo.UpdateNotificationToken(ctx, userID, token)
}

// UpdatePrivacy replaces the privacy settings after validating the enums.
func (uc *UserUsecase) UpdatePrivacy(ctx context.Context, userID string, privacy entity.PrivacySettings) error {
	for _, v := range []entity.Visibility{privacy.LastSeenVisibility, privacy.ProfilePhotoVisibility} {
		switch v {
		case entity.VisibilityEveryone, entity.VisibilityContacts, entity.VisibilityNobody:
		default:
			return fmt.Errorf("unknown visibility %q", v)
		}
	}
	return uc.userRepo.UpdatePrivacySettings(ctx, userID, privacy)
}

// AddPrivacyException hides last-seen from one specific user.
func (uc *UserUsecase) AddPrivacyException(ctx context.Context, userID, targetID string) error {
	if userID == targetID {
		return ErrSelfTarget
	}
	return uc.userRepo.AddLastSeenException(ctx, userID, targetID)
}

// RemovePrivacyException lifts a last-seen exception.
func (uc *UserUsecase) RemovePrivacyException(ctx context.Context, userID, targetID string) error {
	return uc.userRepo.RemoveLastSeenException(ctx, userID, targetID)
}

// BlockUser adds targetID to the caller's blocked set.
func (uc *UserUsecase) BlockUser(ctx context.Context, userID, targetID string) error {
	if userID == targetID {
		return ErrSelfTarget
	}
	return uc.userRepo.BlockUser(ctx, userID, targetID)
}

// UnblockUser removes targetID from the caller's blocked set.
func (uc *UserUsecase) UnblockUser(ctx context.Context, userID, targetID string) error {
	return uc.userRepo.UnblockUser(ctx, userID, targetID)
}

// MuteChat silences notifications for a chat.
func (uc *UserUsecase) MuteChat(ctx context.Context, userID, chatID string) error {
	return uc.userRepo.MuteChat(ctx, userID, chatID)
}

// UnmuteChat restores notifications for a chat.
func (uc *UserUsecase) UnmuteChat(ctx context.Context, userID, chatID string) error {
	return uc.userRepo.UnmuteChat(ctx, userID, chatID)
}

// GrantPremium flags the account as premium until expiresAt (nil means no
// expiry).
func (uc *UserUsecase) GrantPremium(ctx context.Context, userID string, expiresAt *time.Time) error {
	if expiresAt != nil && expiresAt.Before(time.Now()) {
		return fmt.Errorf("premium expiry %s is in the past", expiresAt.Format(time.RFC3339))
	}
	return uc.userRepo.SetPremium(ctx, userID, true, expiresAt)
}

// RevokePremium clears the premium flag.
func (uc *UserUsecase) RevokePremium(ctx context.Context, userID string) error {
	return uc.userRepo.SetPremium(ctx, userID, false, nil)
}

// PremiumUsers lists premium accounts, bounded by configuration.
func (uc *UserUsecase) PremiumUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := uc.userRepo.ListPremiumUsers(ctx, uc.config.GetPremiumListLimit())
	if err != nil {
		uc.logger.Errorf("premium listing failed: %v", err)
		return nil, errors.New(errInternalServer)
	}
	return users, nil
}

// OnlineCount returns the number of currently online users.
func (uc *UserUsecase) OnlineCount(ctx context.Context) (int64, error) {
	count, err := uc.userRepo.CountOnlineUsers(ctx)
	if err != nil {
		uc.logger.Errorf("online count failed: %v", err)
		return 0, errors.New(errInternalServer)
	}
	return count, nil
}

// SetPresenceBulk applies presence for many users atomically. Used by the
// connection gateway when it flushes session state.
func (uc *UserUsecase) SetPresenceBulk(ctx context.Context, presenceByID map[string]entity.Presence) error {
	for id, presence := range presenceByID {
		switch presence {
		case entity.PresenceOnline, entity.PresenceAway, entity.PresenceOffline:
		default:
			return fmt.Errorf("unknown presence %q for user %s", presence, id)
		}
	}
	return uc.userRepo.UpdatePresenceBulk(ctx, presenceByID)
}

// DeactivateAccount soft-deletes the account; the document is kept.
func (uc *UserUsecase) DeactivateAccount(ctx context.Context, userID string) error {
	uc.logger.Infof("deactivating account %s", userID)
	return uc.userRepo.SoftDeleteUser(ctx, userID)
}

// DeleteAccount removes the account document permanently.
func (uc *UserUsecase) DeleteAccount(ctx context.Context, userID string) error {
	uc.logger.Infof("deleting account %s", userID)
	return uc.userRepo.DeleteUser(ctx, userID)
}

// ObserveUser streams snapshots of the user document.
func (uc *UserUsecase) ObserveUser(ctx context.Context, userID string) (<-chan contract.UserSnapshot, error) {
	return uc.userRepo.ObserveUserByID(ctx, userID)
}
