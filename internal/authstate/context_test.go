package authstate

import (
	"context"
	"errors"
	"testing"
	"time"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	authmocks "github.com/hostelhub/hostel-api/internal/mocks/auth"
	"github.com/hostelhub/hostel-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	sessions *authmocks.FakeSessionStore
	store    *authmocks.FakeRoleProfileStore
	ctx      *Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sessions := authmocks.NewFakeSessionStore()
	store := authmocks.NewFakeRoleProfileStore()
	resolver := service.NewIdentityResolver(service.IdentityResolverOptions{Store: store, Timeout: time.Second})
	c := New(Options{Sessions: sessions, Resolver: resolver})
	t.Cleanup(c.Close)
	return &fixture{sessions: sessions, store: store, ctx: c}
}

func settle(t *testing.T, c *Context) State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := c.WaitSettled(ctx)
	require.NoError(t, err)
	return st
}

func TestContext_InitialState(t *testing.T) {
	f := newFixture(t)
	st := f.ctx.State()
	assert.True(t, st.IsLoading)
	assert.Nil(t, st.User)
	assert.Nil(t, st.Session)
	assert.Nil(t, st.Profile)
	assert.False(t, st.IsAdmin)
}

func TestContext_StartSubscribesBeforeInitialCheck(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctx.Start(context.Background()))
	assert.Equal(t, []string{"subscribe", "get"}, f.sessions.CallOrder())

	st := settle(t, f.ctx)
	assert.False(t, st.Authenticated())
	assert.False(t, st.IsLoading)
}

func TestContext_StartWithExistingSession(t *testing.T) {
	f := newFixture(t)
	id := f.sessions.AddAccount("warden@hostel.test", "secret1")
	f.store.SetRoles(id, domainauth.RoleStudent, domainauth.RoleAdmin)
	f.store.SetProfile(domainauth.Profile{ID: id, FullName: "Warden"})
	f.sessions.SetCurrent(f.sessions.NewSession(id, "warden@hostel.test"))

	require.NoError(t, f.ctx.Start(context.Background()))
	st := settle(t, f.ctx)
	require.True(t, st.Authenticated())
	assert.Equal(t, id, st.User.ID)
	assert.True(t, st.IsAdmin)
	require.NotNil(t, st.Profile)
	assert.Equal(t, "Warden", st.Profile.FullName)

	t.Run("repeat notifications for the same principal do not re-resolve", func(t *testing.T) {
		sess := f.sessions.NewSession(id, "warden@hostel.test")
		f.sessions.Emit(domainauth.SessionEvent{Kind: domainauth.SessionInitial, Session: sess})
		f.sessions.Emit(domainauth.SessionEvent{Kind: domainauth.SessionRefreshed, Session: sess})

		st := f.ctx.State()
		assert.False(t, st.IsLoading, "no loading flicker")
		assert.True(t, st.IsAdmin)
		assert.Equal(t, sess.ID, st.Session.ID)
		assert.Equal(t, 1, f.store.RoleCalls())
	})
}

func TestContext_StartFailure(t *testing.T) {
	f := newFixture(t)
	f.sessions.GetErr = errors.New("network down")

	err := f.ctx.Start(context.Background())
	require.Error(t, err)
	st := f.ctx.State()
	assert.False(t, st.IsLoading)
	assert.False(t, st.Authenticated())
}

func TestContext_SignInResolvesBeforeReturning(t *testing.T) {
	for _, silent := range []bool{false, true} {
		name := "with notification"
		if silent {
			name = "without notification"
		}
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.sessions.Silent = silent
			id := f.sessions.AddAccount("warden@hostel.test", "secret1")
			f.store.SetRoles(id, domainauth.RoleAdmin)
			require.NoError(t, f.ctx.Start(context.Background()))
			settle(t, f.ctx)

			st, err := f.ctx.SignIn(context.Background(), "warden@hostel.test", "secret1")
			require.NoError(t, err)
			assert.True(t, st.IsAdmin)
			assert.False(t, st.IsLoading)
			assert.Equal(t, id, st.User.ID)
		})
	}
}

func TestContext_SignInFailureSurfaces(t *testing.T) {
	f := newFixture(t)
	f.sessions.AddAccount("s@hostel.test", "secret1")
	require.NoError(t, f.ctx.Start(context.Background()))
	settle(t, f.ctx)

	st, err := f.ctx.SignIn(context.Background(), "s@hostel.test", "nope")
	assert.ErrorIs(t, err, authmocks.ErrInvalidCredentials)
	assert.False(t, st.Authenticated())
}

func TestContext_SignOutClearsWithoutNotification(t *testing.T) {
	f := newFixture(t)
	f.sessions.Silent = true
	id := f.sessions.AddAccount("warden@hostel.test", "secret1")
	f.store.SetRoles(id, domainauth.RoleAdmin)
	f.store.SetProfile(domainauth.Profile{ID: id, FullName: "Warden"})
	require.NoError(t, f.ctx.Start(context.Background()))

	_, err := f.ctx.SignIn(context.Background(), "warden@hostel.test", "secret1")
	require.NoError(t, err)

	require.NoError(t, f.ctx.SignOut(context.Background()))
	assert.Equal(t, State{}, f.ctx.State())
}

func TestContext_SignOutFromElsewhere(t *testing.T) {
	f := newFixture(t)
	id := f.sessions.AddAccount("s@hostel.test", "secret1")
	f.store.SetProfile(domainauth.Profile{ID: id, FullName: "S"})
	require.NoError(t, f.ctx.Start(context.Background()))
	_, err := f.ctx.SignIn(context.Background(), "s@hostel.test", "secret1")
	require.NoError(t, err)

	f.sessions.Emit(domainauth.SessionEvent{Kind: domainauth.SessionSignedOut})
	st := f.ctx.State()
	assert.Nil(t, st.User)
	assert.Nil(t, st.Profile)
	assert.False(t, st.IsAdmin)
	assert.False(t, st.IsLoading)
}

func TestContext_StaleResolutionDiscarded(t *testing.T) {
	f := newFixture(t)
	slow := make(chan struct{})
	admin := f.sessions.AddAccount("warden@hostel.test", "x")
	student := f.sessions.AddAccount("s@hostel.test", "y")
	f.store.RolesFunc = func(principalID string, _ int) ([]domainauth.RoleAssignment, error) {
		if principalID == admin {
			<-slow
			return []domainauth.RoleAssignment{{UserID: admin, Role: domainauth.RoleAdmin}}, nil
		}
		return nil, nil
	}
	require.NoError(t, f.ctx.Start(context.Background()))
	settle(t, f.ctx)

	f.sessions.Emit(domainauth.SessionEvent{Kind: domainauth.SessionSignedIn, Session: f.sessions.NewSession(admin, "warden@hostel.test")})
	st := f.ctx.State()
	assert.True(t, st.IsLoading)
	assert.Equal(t, admin, st.User.ID, "session is published before resolution")

	f.sessions.Emit(domainauth.SessionEvent{Kind: domainauth.SessionSignedIn, Session: f.sessions.NewSession(student, "s@hostel.test")})
	close(slow)

	st = settle(t, f.ctx)
	assert.Equal(t, student, st.User.ID)
	assert.False(t, st.IsAdmin, "the slow admin resolution must not clobber the newer principal")
}

func TestContext_SignOutDuringResolution(t *testing.T) {
	f := newFixture(t)
	id := f.sessions.AddAccount("warden@hostel.test", "x")
	f.store.SetRoles(id, domainauth.RoleAdmin)
	f.store.Gate = make(chan struct{})
	require.NoError(t, f.ctx.Start(context.Background()))
	settle(t, f.ctx)

	f.sessions.Emit(domainauth.SessionEvent{Kind: domainauth.SessionSignedIn, Session: f.sessions.NewSession(id, "warden@hostel.test")})
	require.NoError(t, f.ctx.SignOut(context.Background()))
	close(f.store.Gate)
	f.ctx.Close()

	assert.Equal(t, State{}, f.ctx.State())
}

func TestContext_ResolutionFailureFailsClosed(t *testing.T) {
	f := newFixture(t)
	id := f.sessions.AddAccount("warden@hostel.test", "secret1")
	f.store.SetRoles(id, domainauth.RoleAdmin)
	f.store.ProfileErr = errors.New("policy violation")
	require.NoError(t, f.ctx.Start(context.Background()))

	st, err := f.ctx.SignIn(context.Background(), "warden@hostel.test", "secret1")
	require.NoError(t, err, "resolution failures do not fail sign-in")
	assert.True(t, st.Authenticated())
	assert.False(t, st.IsAdmin)
	assert.Nil(t, st.Profile)
	assert.False(t, st.IsLoading)
}

func TestContext_RefreshUserData(t *testing.T) {
	t.Run("no principal is a no-op", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.ctx.Start(context.Background()))
		before := settle(t, f.ctx)

		require.NoError(t, f.ctx.RefreshUserData(context.Background()))
		assert.Equal(t, before, f.ctx.State())
		assert.Zero(t, f.store.RoleCalls())
	})

	t.Run("picks up a late role grant", func(t *testing.T) {
		f := newFixture(t)
		id := f.sessions.AddAccount("s@hostel.test", "secret1")
		require.NoError(t, f.ctx.Start(context.Background()))
		st, err := f.ctx.SignIn(context.Background(), "s@hostel.test", "secret1")
		require.NoError(t, err)
		require.False(t, st.IsAdmin)

		f.store.SetRoles(id, domainauth.RoleAdmin)
		require.NoError(t, f.ctx.RefreshUserData(context.Background()))
		assert.True(t, f.ctx.State().IsAdmin)
		assert.Equal(t, 1, f.store.Invalidations(), "refresh bypasses cached roles")
	})
}

func TestContext_SignUpDelegates(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctx.Start(context.Background()))
	settle(t, f.ctx)

	in := domainauth.SignUpInput{Email: "new@hostel.test", Password: "secret1", FullName: "New"}
	require.NoError(t, f.ctx.SignUp(context.Background(), in))
	assert.Error(t, f.ctx.SignUp(context.Background(), in))
	assert.False(t, f.ctx.State().Authenticated(), "sign-up alone does not sign in")
}

func TestContext_WatchAndClose(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := f.ctx.Watch(ctx)
	first := <-ch
	assert.True(t, first.IsLoading)

	require.NoError(t, f.ctx.Start(context.Background()))
	require.Eventually(t, func() bool {
		select {
		case st := <-ch:
			return !st.IsLoading
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	f.ctx.Close()
	assert.Zero(t, f.sessions.Listeners())
	_, open := <-ch
	assert.False(t, open)

	_, err := f.ctx.WaitSettled(context.Background())
	require.NoError(t, err, "settled state is still readable after close")
}
