package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/hostel-api/internal/core"
	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/hostelhub/hostel-api/internal/observability/metrics"
	"github.com/hostelhub/hostel-api/internal/observability/statsd"
	"github.com/hostelhub/hostel-api/internal/ports"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores input beyond 72 bytes.
	maxPasswordBytes = 72

	DefaultSessionTTL = 24 * time.Hour
)

var (
	errInvalidCredentials = apperrors.Unauthorized("invalid login credentials")
	errSessionExpired     = apperrors.Unauthorized("session expired")
	errSSODisabled        = apperrors.Validation("single sign-on is not enabled")
)

// SSOOptions wires the optional single sign-on flow.
type SSOOptions struct {
	Provider ports.AuthProvider
	Roles    ports.RoleMapper
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Accounts   core.AccountRepository
	Sessions   ports.SessionRepository
	Tokens     *TokenIssuer
	SSO        SSOOptions
	SessionTTL time.Duration
	BcryptCost int
	Metrics    statsd.Sink
	Logger     *slog.Logger
}

// AuthService registers accounts, verifies credentials and issues server sessions.
type AuthService struct {
	accounts   core.AccountRepository
	sessions   ports.SessionRepository
	tokens     *TokenIssuer
	sso        SSOOptions
	ttl        time.Duration
	cost       int
	dummyHash  []byte
	metrics    statsd.Sink
	logger     *slog.Logger
	now        func() time.Time
	generateID func() string
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Accounts == nil || opts.Sessions == nil || opts.Tokens == nil {
		panic("AccountRepository, SessionRepository and TokenIssuer are required")
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	// Compared against when the email is unknown so both paths cost one bcrypt verification.
	dummy, err := bcrypt.GenerateFromPassword([]byte("hostel-api-placeholder"), cost)
	if err != nil {
		panic(fmt.Sprintf("bcrypt cost %d: %v", cost, err))
	}
	return &AuthService{
		accounts:   opts.Accounts,
		sessions:   opts.Sessions,
		tokens:     opts.Tokens,
		sso:        opts.SSO,
		ttl:        ttl,
		cost:       cost,
		dummyHash:  dummy,
		metrics:    opts.Metrics,
		logger:     logger.With("component", "auth"),
		now:        time.Now,
		generateID: uuid.NewString,
	}
}

// SignUp validates the registration, hashes the password and creates the principal
// with its profile and a student role assignment.
func (s *AuthService) SignUp(ctx context.Context, in domainauth.SignUpInput) (*domainauth.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperrors.ValidationField("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, apperrors.ValidationField("password", "password is too long")
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return nil, apperrors.ValidationField("full_name", "full name is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var room *string
	if r := strings.TrimSpace(in.RoomNumber); r != "" {
		room = &r
	}
	user, err := s.accounts.CreateAccount(ctx, core.NewAccount{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		RoomNumber:   room,
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "account created", "principal_id", user.ID)
	return user, nil
}

// SignIn verifies the password and returns a new session carrying a signed token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domainauth.Session, error) {
	sess, err := s.signIn(ctx, email, password)
	s.recordSignIn("password", err)
	return sess, err
}

func (s *AuthService) signIn(ctx context.Context, email, password string) (*domainauth.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errInvalidCredentials
	}

	creds, err := s.accounts.GetCredentials(ctx, email)
	switch {
	case err == nil:
	case apperrors.IsNotFound(err), errors.Is(err, core.ErrNoPassword):
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, errInvalidCredentials
	default:
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		s.logger.InfoContext(ctx, "sign-in rejected", "principal_id", creds.UserID)
		return nil, errInvalidCredentials
	}

	return s.startSession(ctx, domainauth.User{ID: creds.UserID, Email: creds.Email}, time.Time{})
}

// GetSession verifies token and returns the live session it refers to.
// Expired sessions are deleted and reported as unauthorized.
func (s *AuthService) GetSession(ctx context.Context, token string) (*domainauth.Session, error) {
	if token == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "invalid or expired token")
	}

	sess, err := s.sessions.Get(ctx, claims.ID)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return nil, errSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.UserID != claims.Subject {
		return nil, apperrors.Unauthorized("token does not match session")
	}

	if sess.Expired(s.now()) {
		if delErr := s.sessions.Delete(ctx, sess.ID); delErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", delErr))
		}
		return nil, errSessionExpired
	}

	sess.Token = token
	return &sess, nil
}

// SignOut deletes the session the token refers to. Empty or unverifiable tokens are a no-op.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.ParseIgnoringExpiry(token)
	if err != nil {
		s.logger.DebugContext(ctx, "sign-out with unverifiable token ignored", "error", err)
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// SSOEnabled reports whether an identity provider is wired.
func (s *AuthService) SSOEnabled() bool {
	return s.sso.Provider != nil
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an SSO flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if !s.SSOEnabled() {
		return nil, errSSODisabled
	}
	if redirectURL == "" {
		return nil, apperrors.Validation("redirect URL is required")
	}
	authURL, state, nonce, err := s.sso.Provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLogin exchanges the authorization code, provisions the principal on first login
// and starts a session. The initial role only applies to newly provisioned principals.
func (s *AuthService) CompleteLogin(ctx context.Context, in CompleteLoginInput) (*domainauth.Session, error) {
	sess, err := s.completeLogin(ctx, in)
	s.recordSignIn("sso", err)
	return sess, err
}

func (s *AuthService) completeLogin(ctx context.Context, in CompleteLoginInput) (*domainauth.Session, error) {
	if !s.SSOEnabled() {
		return nil, errSSODisabled
	}
	switch {
	case in.Code == "":
		return nil, apperrors.Validation("authorization code is required")
	case in.State == "":
		return nil, apperrors.Validation("state parameter is required")
	case in.Nonce == "":
		return nil, apperrors.Validation("nonce parameter is required")
	}

	identity, err := s.sso.Provider.Exchange(ctx, ports.ExchangeInput{Code: in.Code, State: in.State, Nonce: in.Nonce})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "single sign-on failed")
	}
	email, err := normalizeEmail(identity.Email)
	if err != nil {
		return nil, err
	}

	role := domainauth.RoleStudent
	if s.sso.Roles != nil {
		role = s.sso.Roles.Map(identity.Groups)
	}
	user, err := s.accounts.EnsureSSOAccount(ctx, core.SSOAccount{
		Subject:     identity.UserID,
		Email:       email,
		FullName:    identity.FullName(),
		InitialRole: role,
	})
	if err != nil {
		return nil, fmt.Errorf("provision sso account: %w", err)
	}
	return s.startSession(ctx, *user, identity.ExpiresAt)
}

func (s *AuthService) recordSignIn(method string, err error) {
	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case apperrors.IsUnauthorized(err), apperrors.IsValidation(err):
		result = metrics.ResultDenied
	default:
		result = metrics.ResultError
	}
	metrics.EmitSignIn(s.metrics, metrics.SignIn{Method: method, Result: result, Err: err})
}

// startSession persists a new session and signs its token. notAfter, when set, caps the expiry.
func (s *AuthService) startSession(
	ctx context.Context,
	user domainauth.User,
	notAfter time.Time,
) (*domainauth.Session, error) {
	expires := s.now().Add(s.ttl)
	if !notAfter.IsZero() && notAfter.Before(expires) {
		expires = notAfter
	}
	sess := domainauth.Session{
		ID:        s.generateID(),
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: expires.UTC(),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	token, err := s.tokens.Issue(sess)
	if err != nil {
		return nil, err
	}
	sess.Token = token
	s.logger.InfoContext(ctx, "session started", "principal_id", user.ID, "expires_at", sess.ExpiresAt)
	return &sess, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperrors.ValidationField("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperrors.ValidationField("email", "email is not valid")
	}
	return email, nil
}
