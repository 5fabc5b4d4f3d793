package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hostelhub/hostel-api/internal/core"
	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/hostelhub/hostel-api/internal/mocks"
	authmocks "github.com/hostelhub/hostel-api/internal/mocks/auth"
	"github.com/hostelhub/hostel-api/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	accounts *mocks.MockAccountRepository
	sessions *authmocks.MemorySessionRepository
	tokens   *TokenIssuer
	svc      *AuthService
}

func newAuthFixture(t *testing.T, sso SSOOptions) *authFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountRepository(ctrl)
	sessions := authmocks.NewMemorySessionRepository()
	tokens, err := NewTokenIssuer("test-secret", "hostel")
	require.NoError(t, err)

	svc := NewAuthService(AuthServiceOptions{
		Accounts:   accounts,
		Sessions:   sessions,
		Tokens:     tokens,
		SSO:        sso,
		SessionTTL: 2 * time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
	return &authFixture{accounts: accounts, sessions: sessions, tokens: tokens, svc: svc}
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_SignUpValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    domainauth.SignUpInput
		field string
	}{
		{name: "missing email", in: domainauth.SignUpInput{Password: "secret1", FullName: "A"}, field: "email"},
		{name: "bad email", in: domainauth.SignUpInput{Email: "not-an-email", Password: "secret1", FullName: "A"}, field: "email"},
		{name: "short password", in: domainauth.SignUpInput{Email: "a@hostel.test", Password: "12345", FullName: "A"}, field: "password"},
		{name: "missing name", in: domainauth.SignUpInput{Email: "a@hostel.test", Password: "secret1", FullName: "  "}, field: "full_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newAuthFixture(t, SSOOptions{})
			_, err := f.svc.SignUp(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.field, apperrors.GetField(err))
		})
	}
}

func TestAuthService_SignUpCreatesAccount(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, SSOOptions{})

	f.accounts.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in core.NewAccount) (*domainauth.User, error) {
			assert.Equal(t, "ravi@hostel.test", in.Email)
			assert.Equal(t, "Ravi", in.FullName)
			require.NotNil(t, in.RoomNumber)
			assert.Equal(t, "B-12", *in.RoomNumber)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(in.PasswordHash), []byte("secret1")))
			return &domainauth.User{ID: "u1", Email: in.Email}, nil
		})

	user, err := f.svc.SignUp(context.Background(), domainauth.SignUpInput{
		Email: " Ravi@Hostel.test ", Password: "secret1", FullName: " Ravi ", RoomNumber: "B-12",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestAuthService_SignUpDuplicate(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, SSOOptions{})
	f.accounts.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).
		Return(nil, apperrors.Conflict("an account with this email already exists"))

	_, err := f.svc.SignUp(context.Background(), domainauth.SignUpInput{Email: "a@hostel.test", Password: "secret1", FullName: "A"})
	assert.True(t, apperrors.IsConflict(err))
}

func TestAuthService_SignInAndGetSession(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, SSOOptions{})
	f.accounts.EXPECT().GetCredentials(gomock.Any(), "a@hostel.test").
		Return(&core.Credentials{UserID: "u1", Email: "a@hostel.test", PasswordHash: hashOf(t, "secret1")}, nil)

	sess, err := f.svc.SignIn(context.Background(), "A@hostel.test", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)
	assert.NotEmpty(t, sess.Token)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), sess.ExpiresAt, time.Minute)
	assert.Equal(t, 1, f.sessions.Len())

	got, err := f.svc.GetSession(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, sess.Token, got.Token)

	require.NoError(t, f.svc.SignOut(context.Background(), sess.Token))
	assert.Zero(t, f.sessions.Len())
	_, err = f.svc.GetSession(context.Background(), sess.Token)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestAuthService_SignInRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		credsErr     error
		password     string
		unauthorized bool
	}{
		{name: "wrong password", password: "wrong!", unauthorized: true},
		{name: "unknown email", credsErr: apperrors.NotFound("not found"), password: "secret1", unauthorized: true},
		{name: "sso-only account", credsErr: core.ErrNoPassword, password: "secret1", unauthorized: true},
		{name: "store failure", credsErr: errors.New("db down"), password: "secret1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newAuthFixture(t, SSOOptions{})
			if tt.credsErr != nil {
				f.accounts.EXPECT().GetCredentials(gomock.Any(), "a@hostel.test").Return(nil, tt.credsErr)
			} else {
				f.accounts.EXPECT().GetCredentials(gomock.Any(), "a@hostel.test").
					Return(&core.Credentials{UserID: "u1", Email: "a@hostel.test", PasswordHash: hashOf(t, "secret1")}, nil)
			}

			_, err := f.svc.SignIn(context.Background(), "a@hostel.test", tt.password)
			require.Error(t, err)
			assert.Equal(t, tt.unauthorized, apperrors.IsUnauthorized(err))
			assert.Zero(t, f.sessions.Len())
		})
	}
}

func TestAuthService_GetSessionExpired(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, SSOOptions{})
	f.accounts.EXPECT().GetCredentials(gomock.Any(), gomock.Any()).
		Return(&core.Credentials{UserID: "u1", Email: "a@hostel.test", PasswordHash: hashOf(t, "secret1")}, nil)

	sess, err := f.svc.SignIn(context.Background(), "a@hostel.test", "secret1")
	require.NoError(t, err)

	f.svc.now = func() time.Time { return time.Now().Add(3 * time.Hour) }
	_, err = f.svc.GetSession(context.Background(), sess.Token)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Zero(t, f.sessions.Len(), "expired sessions are deleted")
}

func TestAuthService_GetSessionBadToken(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, SSOOptions{})

	for _, token := range []string{"", "garbage"} {
		_, err := f.svc.GetSession(context.Background(), token)
		assert.True(t, apperrors.IsUnauthorized(err), "token %q", token)
	}

	t.Run("token for a deleted session", func(t *testing.T) {
		token, err := f.tokens.Issue(domainauth.Session{ID: "gone", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)})
		require.NoError(t, err)
		_, err = f.svc.GetSession(context.Background(), token)
		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("token subject mismatch", func(t *testing.T) {
		require.NoError(t, f.sessions.Save(context.Background(), domainauth.Session{ID: "s2", UserID: "u2", ExpiresAt: time.Now().Add(time.Hour)}))
		token, err := f.tokens.Issue(domainauth.Session{ID: "s2", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)})
		require.NoError(t, err)
		_, err = f.svc.GetSession(context.Background(), token)
		assert.True(t, apperrors.IsUnauthorized(err))
	})
}

func TestAuthService_SignOutIsLenient(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, SSOOptions{})
	assert.NoError(t, f.svc.SignOut(context.Background(), ""))
	assert.NoError(t, f.svc.SignOut(context.Background(), "garbage"))
}

func TestAuthService_SSODisabled(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, SSOOptions{})
	assert.False(t, f.svc.SSOEnabled())

	_, err := f.svc.BeginLogin(context.Background(), "http://localhost/auth/callback")
	assert.True(t, apperrors.IsValidation(err))
	_, err = f.svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestAuthService_SSOLogin(t *testing.T) {
	t.Parallel()
	provider := authmocks.NewMockAuthProvider()
	provider.DefaultUser.Groups = []string{"wardens"}
	f := newAuthFixture(t, SSOOptions{Provider: provider, Roles: authmocks.StaticRoleMapper{AdminGroup: "wardens"}})
	require.True(t, f.svc.SSOEnabled())

	begin, err := f.svc.BeginLogin(context.Background(), "http://localhost/auth/callback")
	require.NoError(t, err)
	assert.Equal(t, "state-1", begin.State)

	f.accounts.EXPECT().EnsureSSOAccount(gomock.Any(), core.SSOAccount{
		Subject:     "idp-student-1",
		Email:       "student@hostel.test",
		FullName:    "Test Student",
		InitialRole: domainauth.RoleAdmin,
	}).Return(&domainauth.User{ID: "u9", Email: "student@hostel.test"}, nil)

	sess, err := f.svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "code", State: begin.State, Nonce: begin.Nonce})
	require.NoError(t, err)
	assert.Equal(t, "u9", sess.UserID)
	assert.True(t, sess.ExpiresAt.Before(time.Now().Add(90*time.Minute)), "IdP expiry caps the session")

	_, err = f.svc.CompleteLogin(context.Background(), CompleteLoginInput{State: "s", Nonce: "n"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestAuthService_SSOExchangeFailure(t *testing.T) {
	t.Parallel()
	provider := &authmocks.MockAuthProvider{
		ExchangeFunc: func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
			return domainauth.Identity{}, errors.New("nonce mismatch")
		},
	}
	f := newAuthFixture(t, SSOOptions{Provider: provider})

	_, err := f.svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	assert.True(t, apperrors.IsUnauthorized(err))
}
