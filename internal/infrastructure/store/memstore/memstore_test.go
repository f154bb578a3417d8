package memstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikiasgoitom/Parley/internal/domain/contract"
	"github.com/mikiasgoitom/Parley/internal/domain/entity"
	"github.com/mikiasgoitom/Parley/internal/infrastructure/store/memstore"
)

func newUser(id, username string) *entity.User {
	return &entity.User{
		ID:       id,
		Username: username,
		Presence: entity.PresenceOffline,
		Status:   entity.AccountStatusActive,
		Privacy:  entity.DefaultPrivacySettings(),
	}
}

func TestInsertAndGet(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "users", "u1", newUser("u1", "alice")))

	var got entity.User
	found, err := s.Get(ctx, "users", "u1", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "u1", got.ID)
}

func TestGet_Missing(t *testing.T) {
	s := memstore.New()
	var got entity.User
	found, err := s.Get(context.Background(), "users", "nope", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInsert_Duplicate(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, "users", "u1", newUser("u1", "alice")))
	err := s.Insert(ctx, "users", "u1", newUser("u1", "alice2"))
	assert.ErrorIs(t, err, memstore.ErrDuplicateID)
}

func TestMerge_PreservesOmittedFields(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	u := newUser("u1", "alice")
	u.Bio = "first bio"
	u.FCMToken = "token-1"
	require.NoError(t, s.Insert(ctx, "users", "u1", u))

	// A merge write carrying only some fields must not wipe the rest.
	patch := newUser("u1", "alice")
	patch.Bio = "second bio"
	require.NoError(t, s.Merge(ctx, "users", "u1", patch))

	var got entity.User
	found, err := s.Get(ctx, "users", "u1", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "second bio", got.Bio)
	assert.Equal(t, "token-1", got.FCMToken)
}

func TestMerge_UpsertsMissingDocument(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Merge(ctx, "users", "u9", newUser("u9", "zoe")))

	var got entity.User
	found, err := s.Get(ctx, "users", "u9", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "zoe", got.Username)
}

func TestUpdateFields_ServerTimestamp(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, "users", "u1", newUser("u1", "alice")))

	before := time.Now().UTC().Add(-time.Second)
	require.NoError(t, s.UpdateFields(ctx, "users", "u1", map[string]interface{}{
		"last_active": contract.ServerTimestamp(),
	}))

	var got entity.User
	_, err := s.Get(ctx, "users", "u1", &got)
	require.NoError(t, err)
	assert.True(t, got.LastActiveAt.After(before))
}

func TestUpdateFields_MissingDocument(t *testing.T) {
	s := memstore.New()
	err := s.UpdateFields(context.Background(), "users", "nope", map[string]interface{}{
		"bio": "x",
	})
	assert.ErrorIs(t, err, memstore.ErrNotFound)
}

func TestUpdateFields_ArrayUnionAndRemove(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, "users", "u1", newUser("u1", "alice")))

	require.NoError(t, s.UpdateFields(ctx, "users", "u1", map[string]interface{}{
		"blocked_users": contract.ArrayUnion("b1"),
	}))
	// Union is idempotent.
	require.NoError(t, s.UpdateFields(ctx, "users", "u1", map[string]interface{}{
		"blocked_users": contract.ArrayUnion("b1", "b2"),
	}))

	var got entity.User
	_, err := s.Get(ctx, "users", "u1", &got)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b2"}, got.BlockedUsers)

	require.NoError(t, s.UpdateFields(ctx, "users", "u1", map[string]interface{}{
		"blocked_users": contract.ArrayRemove("b1"),
	}))
	_, err = s.Get(ctx, "users", "u1", &got)
	require.NoError(t, err)
	assert.Equal(t, []string{"b2"}, got.BlockedUsers)
}

func TestUpdateFields_DottedPath(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, "users", "u1", newUser("u1", "alice")))

	require.NoError(t, s.UpdateFields(ctx, "users", "u1", map[string]interface{}{
		"privacy.last_seen_exceptions": contract.ArrayUnion("hidden-from"),
	}))

	var got entity.User
	_, err := s.Get(ctx, "users", "u1", &got)
	require.NoError(t, err)
	assert.Equal(t, []string{"hidden-from"}, got.Privacy.LastSeenExceptions)
	// The rest of the embedded document survives the dotted write.
	assert.Equal(t, entity.VisibilityEveryone, got.Privacy.LastSeenVisibility)
}

func TestFind_PrefixRangeOrderedAndLimited(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	for _, name := range []string{"carol", "bob", "alina", "alice", "albert"} {
		require.NoError(t, s.Insert(ctx, "users", name, newUser(name, name)))
	}

	var got []*entity.User
	spec := contract.QuerySpec{
		Filters: []contract.Filter{
			{Field: "username", Op: contract.OpGreaterOrEqual, Value: "al"},
			{Field: "username", Op: contract.OpLessThan, Value: "al"},
		},
		OrderBy: "username",
		Limit:   2,
	}
	require.NoError(t, s.Find(ctx, "users", spec, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "albert", got[0].Username)
	assert.Equal(t, "alice", got[1].Username)
}

func TestFind_InFilter(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Insert(ctx, "users", id, newUser(id, "user-"+id)))
	}

	var got []*entity.User
	spec := contract.QuerySpec{
		Filters: []contract.Filter{{Field: "_id", Op: contract.OpIn, Value: []string{"a", "c", "missing"}}},
	}
	require.NoError(t, s.Find(ctx, "users", spec, &got))
	assert.Len(t, got, 2)
}

func TestCount(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c"} {
		u := newUser(id, "user-"+id)
		if i < 2 {
			u.Presence = entity.PresenceOnline
		}
		require.NoError(t, s.Insert(ctx, "users", id, u))
	}

	spec := contract.QuerySpec{
		Filters: []contract.Filter{{Field: "presence", Op: contract.OpEqual, Value: entity.PresenceOnline}},
	}
	n, err := s.Count(ctx, "users", spec)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestBatch_Atomic(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, "users", "u1", newUser("u1", "alice")))
	require.NoError(t, s.Insert(ctx, "users", "u2", newUser("u2", "bob")))

	batch := s.Batch()
	batch.Delete("users", "u1")
	batch.Delete("users", "u2")
	require.NoError(t, batch.Commit(ctx))

	for _, id := range []string{"u1", "u2"} {
		var got entity.User
		found, err := s.Get(ctx, "users", id, &got)
		require.NoError(t, err)
		assert.False(t, found)
	}
}

func TestBatch_RollsBackOnFailure(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, "users", "u1", newUser("u1", "alice")))

	// The update of a missing document fails the whole batch; the delete
	// staged before it must not be applied.
	batch := s.Batch()
	batch.Delete("users", "u1")
	batch.UpdateFields("users", "missing", map[string]interface{}{"bio": "x"})
	err := batch.Commit(ctx)
	require.Error(t, err)

	var got entity.User
	found, err := s.Get(ctx, "users", "u1", &got)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestBatch_SeesEarlierStagedWrites(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	batch := s.Batch()
	batch.Set("users", "u1", newUser("u1", "alice"))
	batch.UpdateFields("users", "u1", map[string]interface{}{"bio": "set then updated"})
	require.NoError(t, batch.Commit(ctx))

	var got entity.User
	found, err := s.Get(ctx, "users", "u1", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "set then updated", got.Bio)
}

func TestBatch_InjectedCommitFailure(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, "users", "u1", newUser("u1", "alice")))

	injected := errors.New("transaction aborted")
	s.FailNextCommit(injected)

	batch := s.Batch()
	batch.Delete("users", "u1")
	assert.ErrorIs(t, batch.Commit(ctx), injected)

	var got entity.User
	found, err := s.Get(ctx, "users", "u1", &got)
	require.NoError(t, err)
	assert.True(t, found, "failed commit must not apply staged operations")

	// The failure is one-shot.
	batch = s.Batch()
	batch.Delete("users", "u1")
	require.NoError(t, batch.Commit(ctx))
}

func TestWatch_InitialStateAndUpdates(t *testing.T) {
	s := memstore.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Insert(ctx, "users", "u1", newUser("u1", "alice")))

	snapshots, err := s.Watch(ctx, "users", "u1")
	require.NoError(t, err)

	snap := <-snapshots
	require.True(t, snap.Exists)
	var got entity.User
	require.NoError(t, snap.Decode(&got))
	assert.Equal(t, "alice", got.Username)

	require.NoError(t, s.UpdateFields(ctx, "users", "u1", map[string]interface{}{"bio": "hello"}))
	snap = <-snapshots
	require.True(t, snap.Exists)
	require.NoError(t, snap.Decode(&got))
	assert.Equal(t, "hello", got.Bio)

	require.NoError(t, s.Delete(ctx, "users", "u1"))
	snap = <-snapshots
	assert.False(t, snap.Exists)
}

func TestWatch_AbsentDocument(t *testing.T) {
	s := memstore.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots, err := s.Watch(ctx, "users", "ghost")
	require.NoError(t, err)

	snap := <-snapshots
	assert.False(t, snap.Exists)
}

func TestWatch_CancelClosesChannel(t *testing.T) {
	s := memstore.New()
	ctx, cancel := context.WithCancel(context.Background())

	snapshots, err := s.Watch(ctx, "users", "u1")
	require.NoError(t, err)
	<-snapshots // initial state

	cancel()

	select {
	case _, open := <-snapshots:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("watch channel not closed after cancellation")
	}
}
