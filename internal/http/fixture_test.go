package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/hostelhub/hostel-api/internal/mocks"
	authmocks "github.com/hostelhub/hostel-api/internal/mocks/auth"
	"github.com/hostelhub/hostel-api/internal/service"
	"go.uber.org/mock/gomock"
)

// mockAuthService is a test double for service.AuthService keyed by token.
type mockAuthService struct {
	signUpFunc        func(ctx context.Context, in domainauth.SignUpInput) (*domainauth.User, error)
	signInFunc        func(ctx context.Context, email, password string) (*domainauth.Session, error)
	beginLoginFunc    func(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	completeLoginFunc func(ctx context.Context, in service.CompleteLoginInput) (*domainauth.Session, error)
	getSessionErr     error
	sso               bool

	mu        sync.Mutex
	sessions  map[string]domainauth.Session
	signedOut []string
}

func newMockAuthService() *mockAuthService {
	return &mockAuthService{sessions: make(map[string]domainauth.Session)}
}

func (m *mockAuthService) addSession(token, userID, email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = domainauth.Session{
		ID:        "sess-" + userID,
		UserID:    userID,
		Email:     email,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func (m *mockAuthService) SignUp(ctx context.Context, in domainauth.SignUpInput) (*domainauth.User, error) {
	if m.signUpFunc != nil {
		return m.signUpFunc(ctx, in)
	}
	return &domainauth.User{ID: "new-user", Email: in.Email}, nil
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (*domainauth.Session, error) {
	if m.signInFunc != nil {
		return m.signInFunc(ctx, email, password)
	}
	return nil, apperrors.Unauthorized("invalid login credentials")
}

func (m *mockAuthService) GetSession(_ context.Context, token string) (*domainauth.Session, error) {
	if m.getSessionErr != nil {
		return nil, m.getSessionErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[token]
	if !ok {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}
	sess.Token = token
	return &sess, nil
}

func (m *mockAuthService) SignOut(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signedOut = append(m.signedOut, token)
	delete(m.sessions, token)
	return nil
}

func (m *mockAuthService) SSOEnabled() bool { return m.sso }

func (m *mockAuthService) BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error) {
	if m.beginLoginFunc != nil {
		return m.beginLoginFunc(ctx, redirectURL)
	}
	return &service.BeginLoginResult{
		AuthURL: "https://idp.example.com/auth?state=test-state&nonce=test-nonce",
		State:   "test-state",
		Nonce:   "test-nonce",
	}, nil
}

func (m *mockAuthService) CompleteLogin(ctx context.Context, in service.CompleteLoginInput) (*domainauth.Session, error) {
	if m.completeLoginFunc != nil {
		return m.completeLoginFunc(ctx, in)
	}
	return &domainauth.Session{
		ID:        "sso-session",
		UserID:    "sso-user",
		Email:     "sso@hostel.test",
		Token:     "sso-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

// memoryObjectStore records uploads.
type memoryObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memoryObjectStore) Upload(_ context.Context, path, _ string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[path] = data
	return "https://cdn.hostel.test/" + path, nil
}

// apiFixture wires the router over real services backed by mocks and fakes.
type apiFixture struct {
	handler    http.Handler
	auth       *mockAuthService
	store      *authmocks.FakeRoleProfileStore
	complaints *mocks.MockComplaintRepository
	leave      *mocks.MockLeaveRepository
	notices    *mocks.MockNoticeRepository
	modules    *mocks.MockModuleRepository
	photos     *memoryObjectStore
}

const (
	studentToken = "tok-student"
	adminToken   = "tok-admin"
)

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &apiFixture{
		auth:       newMockAuthService(),
		store:      authmocks.NewFakeRoleProfileStore(),
		complaints: mocks.NewMockComplaintRepository(ctrl),
		leave:      mocks.NewMockLeaveRepository(ctrl),
		notices:    mocks.NewMockNoticeRepository(ctrl),
		modules:    mocks.NewMockModuleRepository(ctrl),
		photos:     &memoryObjectStore{},
	}

	f.auth.addSession(studentToken, "stu-1", "asha@hostel.test")
	f.store.SetRoles("stu-1", domainauth.RoleStudent)
	f.store.SetProfile(domainauth.Profile{ID: "stu-1", FullName: "Asha Rao"})
	f.auth.addSession(adminToken, "warden-1", "warden@hostel.test")
	f.store.SetRoles("warden-1", domainauth.RoleStudent, domainauth.RoleAdmin)
	f.store.SetProfile(domainauth.Profile{ID: "warden-1", FullName: "Meera Iyer"})

	resolver := service.NewIdentityResolver(service.IdentityResolverOptions{Store: f.store})
	complaints := service.NewComplaintService(service.ComplaintServiceOptions{
		Repo: f.complaints, Profiles: f.store, Photos: f.photos,
	})
	leave := service.NewLeaveService(service.LeaveServiceOptions{Repo: f.leave, Profiles: f.store})
	notices := service.NewNoticeService(service.NoticeServiceOptions{Repo: f.notices})

	f.handler = NewRouter(RouterServices{
		Auth:       f.auth,
		Resolver:   resolver,
		Profiles:   service.NewProfileService(service.ProfileServiceOptions{Store: f.store, Resolver: resolver}),
		Complaints: complaints,
		Leave:      leave,
		Notices:    notices,
		Modules:    service.NewModuleService(service.ModuleServiceOptions{Repo: f.modules}),
		Dashboards: service.NewDashboardService(complaints, leave, notices),
	})
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}
