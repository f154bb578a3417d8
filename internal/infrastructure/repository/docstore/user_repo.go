package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mikiasgoitom/Parley/internal/domain/contract"
	"github.com/mikiasgoitom/Parley/internal/domain/entity"
	"github.com/mikiasgoitom/Parley/internal/infrastructure/metrics"
)

const usersCollection = "users"

// prefixUpperBound is a high code point appended to a prefix to close the
// range [prefix, prefix+prefixUpperBound) in index order, which turns an
// ordered range query into a prefix search.
const prefixUpperBound = ""

var ErrMissingUserID = errors.New("user id is required")

// StoreError wraps any error the underlying store raised during an
// operation. Callers needing the cause can unwrap it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("user store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// UserRepository translates user-domain calls into document store operations
// against the "users" collection. It never caches: every read hits the store.
type UserRepository struct {
	store   contract.IDocumentStore
	logger  *zap.Logger
	metrics *metrics.RepositoryMetrics
}

// NewUserRepository creates the repository over any IDocumentStore.
func NewUserRepository(store contract.IDocumentStore, logger *zap.Logger, m *metrics.RepositoryMetrics) *UserRepository {
	return &UserRepository{
		store:   store,
		logger:  logger.Named("UserRepository"),
		metrics: m,
	}
}

var _ contract.IUserRepository = (*UserRepository)(nil)

// done records the outcome of an operation and wraps failures uniformly.
func (r *UserRepository) done(op string, err error) error {
	r.metrics.Observe(op, err)
	if err != nil {
		r.logger.Error("store operation failed", zap.String("operation", op), zap.Error(err))
		return &StoreError{Op: op, Err: err}
	}
	return nil
}

// CreateUser writes the full document at user.ID.
func (r *UserRepository) CreateUser(ctx context.Context, user *entity.User) error {
	if user.ID == "" {
		return &StoreError{Op: "create", Err: ErrMissingUserID}
	}
	stampNew(user)
	return r.done("create", r.store.Insert(ctx, usersCollection, user.ID, user))
}

// CreateUserWithGeneratedID allocates a store id, stamps it onto user and
// writes the document.
func (r *UserRepository) CreateUserWithGeneratedID(ctx context.Context, user *entity.User) (*entity.User, error) {
	user.ID = r.store.NewID()
	stampNew(user)
	if err := r.done("create_generated_id", r.store.Insert(ctx, usersCollection, user.ID, user)); err != nil {
		return nil, err
	}
	return user, nil
}

func stampNew(user *entity.User) {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
}

// GetUserByID is a point read; a missing document returns (nil, nil).
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	found, err := r.store.Get(ctx, usersCollection, id, &user)
	if err != nil {
		return nil, r.done("get_by_id", err)
	}
	r.metrics.Observe("get_by_id", nil)
	if !found {
		return nil, nil
	}
	return &user, nil
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOneByField(ctx, "get_by_username", "username", username)
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOneByField(ctx, "get_by_email", "email", email)
}

func (r *UserRepository) GetUserByPhone(ctx context.Context, phone string) (*entity.User, error) {
	return r.getOneByField(ctx, "get_by_phone", "phone", phone)
}

// getOneByField runs an equality query capped at one result. No match is
// (nil, nil), mirroring point reads.
func (r *UserRepository) getOneByField(ctx context.Context, op, field string, value interface{}) (*entity.User, error) {
	var users []*entity.User
	spec := contract.QuerySpec{
		Filters: []contract.Filter{{Field: field, Op: contract.OpEqual, Value: value}},
		Limit:   1,
	}
	if err := r.store.Find(ctx, usersCollection, spec, &users); err != nil {
		return nil, r.done(op, err)
	}
	r.metrics.Observe(op, nil)
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}

// GetUsersByIDs looks the ids up in chunks bounded by the store's IN
// cardinality cap, one sequential query per chunk. Repeated ids are collapsed
// before chunking so each user appears at most once. An empty input returns
// without touching the store. Result order is not guaranteed.
func (r *UserRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]*entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	users := make([]*entity.User, 0, len(unique))
	for start := 0; start < len(unique); start += contract.MaxInValues {
		end := start + contract.MaxInValues
		if end > len(unique) {
			end = len(unique)
		}
		var chunkUsers []*entity.User
		spec := contract.QuerySpec{
			Filters: []contract.Filter{{Field: "_id", Op: contract.OpIn, Value: unique[start:end]}},
		}
		if err := r.store.Find(ctx, usersCollection, spec, &chunkUsers); err != nil {
			return nil, r.done("get_batch", err)
		}
		users = append(users, chunkUsers...)
	}
	r.metrics.Observe("get_batch", nil)
	return users, nil
}

func (r *UserRepository) SearchUsersByUsername(ctx context.Context, prefix string, limit int64) ([]*entity.User, error) {
	return r.searchByPrefix(ctx, "search_by_username", "username", prefix, limit)
}

func (r *UserRepository) SearchUsersByName(ctx context.Context, prefix string, limit int64) ([]*entity.User, error) {
	return r.searchByPrefix(ctx, "search_by_name", "first_name", prefix, limit)
}

// searchByPrefix runs the ordered range query [prefix, prefix+sentinel),
// which returns documents whose field starts with prefix without needing
// full-text indexing.
func (r *UserRepository) searchByPrefix(ctx context.Context, op, field, prefix string, limit int64) ([]*entity.User, error) {
	var users []*entity.User
	spec := contract.QuerySpec{
		Filters: []contract.Filter{
			{Field: field, Op: contract.OpGreaterOrEqual, Value: prefix},
			{Field: field, Op: contract.OpLessThan, Value: prefix + prefixUpperBound},
		},
		OrderBy: field,
		Limit:   limit,
	}
	if err := r.store.Find(ctx, usersCollection, spec, &users); err != nil {
		return nil, r.done(op, err)
	}
	r.metrics.Observe(op, nil)
	return users, nil
}

// UpdateUser merge-writes the full document: fields the struct carries are
// overwritten, everything else is preserved.
func (r *UserRepository) UpdateUser(ctx context.Context, user *entity.User) error {
	if user.ID == "" {
		return &StoreError{Op: "update", Err: ErrMissingUserID}
	}
	user.UpdatedAt = time.Now().UTC()
	return r.done("update", r.store.Merge(ctx, usersCollection, user.ID, user))
}

// updateFields is the single partial-write path. It always injects a
// server-assigned updated_at, overriding anything the caller supplied.
func (r *UserRepository) updateFields(ctx context.Context, op, id string, fields map[string]interface{}) error {
	fields["updated_at"] = contract.ServerTimestamp()
	return r.done(op, r.store.UpdateFields(ctx, usersCollection, id, fields))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update contract.ProfileUpdate) error {
	fields := map[string]interface{}{}
	if update.Username != nil {
		fields["username"] = *update.Username
	}
	if update.Email != nil {
		fields["email"] = *update.Email
	}
	if update.FirstName != nil {
		fields["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		fields["last_name"] = *update.LastName
	}
	if update.Bio != nil {
		fields["bio"] = *update.Bio
	}
	if update.AvatarURL != nil {
		fields["avatar_url"] = *update.AvatarURL
	}
	if len(fields) == 0 {
		return nil
	}
	return r.updateFields(ctx, "update_profile", id, fields)
}

func (r *UserRepository) UpdatePresence(ctx context.Context, id string, presence entity.Presence) error {
	return r.updateFields(ctx, "update_presence", id, map[string]interface{}{
		"presence":    presence,
		"last_active": contract.ServerTimestamp(),
	})
}

// SetTypingStatus records the chat the user is typing in; an empty chatID
// clears the indicator.
func (r *UserRepository) SetTypingStatus(ctx context.Context, id string, chatID string) error {
	return r.updateFields(ctx, "set_typing_status", id, map[string]interface{}{
		"typing_in_chat": chatID,
	})
}

func (r *UserRepository) TouchLastActive(ctx context.Context, id string) error {
	return r.updateFields(ctx, "touch_last_active", id, map[string]interface{}{
		"last_active": contract.ServerTimestamp(),
	})
}

func (r *UserRepository) UpdateNotificationToken(ctx context.Context, id string, token string) error {
	return r.updateFields(ctx, "update_notification_token", id, map[string]interface{}{
		"fcm_token": token,
	})
}

func (r *UserRepository) UpdatePrivacySettings(ctx context.Context, id string, privacy entity.PrivacySettings) error {
	return r.updateFields(ctx, "update_privacy", id, map[string]interface{}{
		"privacy": privacy,
	})
}

func (r *UserRepository) UpdateAccountStatus(ctx context.Context, id string, status entity.AccountStatus) error {
	return r.updateFields(ctx, "update_account_status", id, map[string]interface{}{
		"status": status,
	})
}

func (r *UserRepository) SetPremium(ctx context.Context, id string, premium bool, expiresAt *time.Time) error {
	return r.updateFields(ctx, "set_premium", id, map[string]interface{}{
		"is_premium":         premium,
		"premium_expires_at": expiresAt,
	})
}

func (r *UserRepository) BlockUser(ctx context.Context, id, targetID string) error {
	return r.updateFields(ctx, "block_user", id, map[string]interface{}{
		"blocked_users": contract.ArrayUnion(targetID),
	})
}

func (r *UserRepository) UnblockUser(ctx context.Context, id, targetID string) error {
	return r.updateFields(ctx, "unblock_user", id, map[string]interface{}{
		"blocked_users": contract.ArrayRemove(targetID),
	})
}

func (r *UserRepository) MuteChat(ctx context.Context, id, chatID string) error {
	return r.updateFields(ctx, "mute_chat", id, map[string]interface{}{
		"muted_chats": contract.ArrayUnion(chatID),
	})
}

func (r *UserRepository) UnmuteChat(ctx context.Context, id, chatID string) error {
	return r.updateFields(ctx, "unmute_chat", id, map[string]interface{}{
		"muted_chats": contract.ArrayRemove(chatID),
	})
}

func (r *UserRepository) AddLastSeenException(ctx context.Context, id, targetID string) error {
	return r.updateFields(ctx, "add_last_seen_exception", id, map[string]interface{}{
		"privacy.last_seen_exceptions": contract.ArrayUnion(targetID),
	})
}

func (r *UserRepository) RemoveLastSeenException(ctx context.Context, id, targetID string) error {
	return r.updateFields(ctx, "remove_last_seen_exception", id, map[string]interface{}{
		"privacy.last_seen_exceptions": contract.ArrayRemove(targetID),
	})
}

// SoftDeleteUser marks the account deleted without removing the document.
func (r *UserRepository) SoftDeleteUser(ctx context.Context, id string) error {
	return r.updateFields(ctx, "soft_delete", id, map[string]interface{}{
		"status":   entity.AccountStatusDeleted,
		"presence": entity.PresenceOffline,
	})
}

func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	return r.done("delete", r.store.Delete(ctx, usersCollection, id))
}

// DeleteUsers removes all listed documents in a single atomic batch: either
// every document is removed or none is.
func (r *UserRepository) DeleteUsers(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	batch := r.store.Batch()
	for _, id := range ids {
		batch.Delete(usersCollection, id)
	}
	return r.done("delete_batch", batch.Commit(ctx))
}

// UpdatePresenceBulk applies every presence change in one atomic batch. All
// documents share the same timestamp.
func (r *UserRepository) UpdatePresenceBulk(ctx context.Context, presenceByID map[string]entity.Presence) error {
	if len(presenceByID) == 0 {
		return nil
	}
	now := time.Now().UTC()
	batch := r.store.Batch()
	for id, presence := range presenceByID {
		batch.UpdateFields(usersCollection, id, map[string]interface{}{
			"presence":    presence,
			"last_active": now,
			"updated_at":  now,
		})
	}
	return r.done("update_presence_bulk", batch.Commit(ctx))
}

// IsUsernameAvailable reports whether no document carries the username.
func (r *UserRepository) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	spec := contract.QuerySpec{
		Filters: []contract.Filter{{Field: "username", Op: contract.OpEqual, Value: username}},
		Limit:   1,
	}
	count, err := r.store.Count(ctx, usersCollection, spec)
	if err != nil {
		return false, r.done("username_available", err)
	}
	r.metrics.Observe("username_available", nil)
	return count == 0, nil
}

func (r *UserRepository) UserExists(ctx context.Context, id string) (bool, error) {
	var user entity.User
	found, err := r.store.Get(ctx, usersCollection, id, &user)
	if err != nil {
		return false, r.done("exists", err)
	}
	r.metrics.Observe("exists", nil)
	return found, nil
}

func (r *UserRepository) CountOnlineUsers(ctx context.Context) (int64, error) {
	spec := contract.QuerySpec{
		Filters: []contract.Filter{{Field: "presence", Op: contract.OpEqual, Value: entity.PresenceOnline}},
	}
	count, err := r.store.Count(ctx, usersCollection, spec)
	if err != nil {
		return 0, r.done("count_online", err)
	}
	r.metrics.Observe("count_online", nil)
	return count, nil
}

func (r *UserRepository) ListPremiumUsers(ctx context.Context, limit int64) ([]*entity.User, error) {
	var users []*entity.User
	spec := contract.QuerySpec{
		Filters: []contract.Filter{{Field: "is_premium", Op: contract.OpEqual, Value: true}},
		Limit:   limit,
	}
	if err := r.store.Find(ctx, usersCollection, spec, &users); err != nil {
		return nil, r.done("list_premium", err)
	}
	r.metrics.Observe("list_premium", nil)
	return users, nil
}

// ObserveUserByID bridges the store's change events into a channel of
// user-or-absent snapshots. The stream starts with the current state and
// ends when ctx is cancelled; a stream failure is delivered as a final
// snapshot with Err set.
func (r *UserRepository) ObserveUserByID(ctx context.Context, id string) (<-chan contract.UserSnapshot, error) {
	snapshots, err := r.store.Watch(ctx, usersCollection, id)
	if err != nil {
		return nil, r.done("observe", err)
	}
	r.metrics.Observe("observe", nil)

	out := make(chan contract.UserSnapshot, 1)
	go func() {
		defer close(out)
		for snap := range snapshots {
			var us contract.UserSnapshot
			switch {
			case snap.Err != nil:
				us.Err = &StoreError{Op: "observe", Err: snap.Err}
			case snap.Exists:
				var user entity.User
				if err := snap.Decode(&user); err != nil {
					us.Err = &StoreError{Op: "observe", Err: err}
				} else {
					us.User = &user
				}
			}
			select {
			case out <- us:
			case <-ctx.Done():
				return
			}
			if us.Err != nil {
				return
			}
		}
	}()
	return out, nil
}
