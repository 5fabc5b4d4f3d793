package redis

import (
	"context"
	"testing"
	"time"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/hostelhub/hostel-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	client := testutil.SetupTestRedis(t)
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStoreWithPrefix(client, "test:"+t.Name()+":")
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := domainauth.Session{
		ID:        "s1",
		UserID:    "u1",
		Email:     "student@example.com",
		Token:     "signed-token",
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "student@example.com", got.Email)
	assert.Empty(t, got.Token, "token must not be persisted")
	assert.WithinDuration(t, session.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestSessionStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "s2", UserID: "u1", ExpiresAt: time.Now().Add(time.Minute)}))
	require.NoError(t, store.Delete(ctx, "s2"))
	require.NoError(t, store.Delete(ctx, "s2"))
	require.NoError(t, store.Delete(ctx, ""))

	_, err := store.Get(ctx, "s2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionStore_RejectsInvalid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, domainauth.Session{ExpiresAt: time.Now().Add(time.Minute)}))
	assert.Error(t, store.Save(ctx, domainauth.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Minute)}))
}

func TestSessionStore_ExpiredIsDeleted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "s3", UserID: "u1", ExpiresAt: now.Add(time.Hour)}))

	store.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err := store.Get(ctx, "s3")
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := store.client.Exists(ctx, store.prefix+"s3").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
