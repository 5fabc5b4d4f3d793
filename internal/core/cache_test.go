package core_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hostelhub/hostel-api/internal/core"
	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/hostelhub/hostel-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func adminAssignments(t *testing.T) ([]domainauth.RoleAssignment, []byte) {
	t.Helper()
	roles := []domainauth.RoleAssignment{{ID: "ra-1", UserID: "u1", Role: domainauth.RoleAdmin}}
	b, err := json.Marshal(roles)
	require.NoError(t, err)
	return roles, b
}

func TestCachedIdentityStore_ListRoleAssignments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		setup     func(*testing.T, *mocks.MockCacheRepository, *mocks.MockIdentityRepository)
		wantAdmin bool
		wantErr   bool
	}{
		{
			name: "cache hit skips the store",
			setup: func(t *testing.T, cache *mocks.MockCacheRepository, _ *mocks.MockIdentityRepository) {
				_, b := adminAssignments(t)
				cache.EXPECT().Get(gomock.Any(), "roles:u1").Return(b, nil)
			},
			wantAdmin: true,
		},
		{
			name: "cache miss reads and caches",
			setup: func(t *testing.T, cache *mocks.MockCacheRepository, store *mocks.MockIdentityRepository) {
				roles, b := adminAssignments(t)
				cache.EXPECT().Get(gomock.Any(), "roles:u1").Return(nil, nil)
				store.EXPECT().ListRoleAssignments(gomock.Any(), "u1").Return(roles, nil)
				cache.EXPECT().Set(gomock.Any(), "roles:u1", b, 5*time.Second).Return(nil)
			},
			wantAdmin: true,
		},
		{
			name: "cache failure degrades to store",
			setup: func(t *testing.T, cache *mocks.MockCacheRepository, store *mocks.MockIdentityRepository) {
				cache.EXPECT().Get(gomock.Any(), "roles:u1").Return(nil, errors.New("redis down"))
				store.EXPECT().ListRoleAssignments(gomock.Any(), "u1").Return(nil, nil)
				cache.EXPECT().Set(gomock.Any(), "roles:u1", []byte("[]"), 5*time.Second).Return(errors.New("redis down"))
			},
			wantAdmin: false,
		},
		{
			name: "store error is returned and not cached",
			setup: func(t *testing.T, cache *mocks.MockCacheRepository, store *mocks.MockIdentityRepository) {
				cache.EXPECT().Get(gomock.Any(), "roles:u1").Return(nil, nil)
				store.EXPECT().ListRoleAssignments(gomock.Any(), "u1").Return(nil, errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			cache := mocks.NewMockCacheRepository(ctrl)
			store := mocks.NewMockIdentityRepository(ctrl)
			tt.setup(t, cache, store)

			s := core.NewCachedIdentityStore(core.CachedIdentityStoreOptions{Cache: cache, Store: store, TTL: 5 * time.Second})
			roles, err := s.ListRoleAssignments(context.Background(), "u1")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAdmin, domainauth.HasAdmin(roles))
		})
	}
}

func TestCachedIdentityStore_GrantAndRevokeInvalidate(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheRepository(ctrl)
	store := mocks.NewMockIdentityRepository(ctrl)
	s := core.NewCachedIdentityStore(core.CachedIdentityStoreOptions{Cache: cache, Store: store})
	ctx := context.Background()

	gomock.InOrder(
		store.EXPECT().GrantRole(gomock.Any(), "u1", domainauth.RoleAdmin).
			Return(&domainauth.RoleAssignment{ID: "ra-1", UserID: "u1", Role: domainauth.RoleAdmin}, nil),
		cache.EXPECT().Delete(gomock.Any(), "roles:u1").Return(true, nil),
		store.EXPECT().RevokeRole(gomock.Any(), "u1", domainauth.RoleAdmin).Return(true, nil),
		cache.EXPECT().Delete(gomock.Any(), "roles:u1").Return(true, nil),
	)

	ra, err := s.GrantRole(ctx, "u1", domainauth.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "ra-1", ra.ID)

	removed, err := s.RevokeRole(ctx, "u1", domainauth.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestCachedIdentityStore_NilCachePassesThrough(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdentityRepository(ctrl)
	s := core.NewCachedIdentityStore(core.CachedIdentityStoreOptions{Store: store})

	store.EXPECT().ListRoleAssignments(gomock.Any(), "u1").Return(nil, nil)
	store.EXPECT().GetProfile(gomock.Any(), "u1").Return(&domainauth.Profile{ID: "u1", FullName: "Uma"}, nil)

	_, err := s.ListRoleAssignments(context.Background(), "u1")
	require.NoError(t, err)
	p, err := s.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Uma", p.FullName)
	require.NoError(t, s.InvalidateRoles(context.Background(), "u1"))
}
