package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/hostelhub/hostel-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider      = (*MockAuthProvider)(nil)
	_ ports.SessionRepository = (*MemorySessionRepository)(nil)
	_ ports.RoleMapper        = StaticRoleMapper{}
	_ ports.SessionStore      = (*FakeSessionStore)(nil)
	_ ports.RoleProfileStore  = (*FakeRoleProfileStore)(nil)
)

// ErrNotFound is returned by doubles when an entity is not present.
var ErrNotFound = errors.New("not found")

// ErrInvalidCredentials is returned by FakeSessionStore for a bad email/password pair.
var ErrInvalidCredentials = errors.New("invalid login credentials")

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL     string
	DefaultUser domainauth.Identity

	mu        sync.Mutex
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with a student identity.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL: "https://mock-idp/auth",
		DefaultUser: domainauth.Identity{
			UserID:    "idp-student-1",
			FirstName: "Test",
			LastName:  "Student",
			Email:     "student@hostel.test",
			Groups:    []string{"students"},
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}
	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	return authURL, fmt.Sprintf("state-%d", n), fmt.Sprintf("nonce-%d", n), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	user := m.DefaultUser
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

// MemorySessionRepository is an in-memory server session repository.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionRepository creates an empty MemorySessionRepository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionRepository) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	sess.Token = ""
	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionRepository) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StaticRoleMapper grants admin to members of AdminGroup and student to everyone else.
type StaticRoleMapper struct {
	AdminGroup string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	return domainauth.RoleStudent
}

type fakeAccount struct {
	userID   string
	password string
}

// FakeSessionStore is an in-memory client session store that emits change notifications.
// Notifications are delivered synchronously from the calling goroutine unless Silent is set,
// in which case tests deliver them explicitly with Emit.
type FakeSessionStore struct {
	Silent     bool
	GetErr     error
	SignUpErr  error
	SignInErr  error
	SignOutErr error
	TTL        time.Duration

	mu        sync.Mutex
	accounts  map[string]fakeAccount
	current   *domainauth.Session
	listeners map[int]func(domainauth.SessionEvent)
	nextID    int
	getCalls  int
	order     []string
}

// NewFakeSessionStore creates an empty FakeSessionStore.
func NewFakeSessionStore() *FakeSessionStore {
	return &FakeSessionStore{
		accounts:  make(map[string]fakeAccount),
		listeners: make(map[int]func(domainauth.SessionEvent)),
		TTL:       time.Hour,
	}
}

// AddAccount registers a password account and returns its principal id.
func (f *FakeSessionStore) AddAccount(email, password string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.NewString()
	f.accounts[email] = fakeAccount{userID: id, password: password}
	return id
}

// SetCurrent replaces the current session without emitting a notification.
func (f *FakeSessionStore) SetCurrent(sess *domainauth.Session) {
	f.mu.Lock()
	f.current = sess
	f.mu.Unlock()
}

// NewSession builds a session for principalID that expires after the store TTL.
func (f *FakeSessionStore) NewSession(principalID, email string) *domainauth.Session {
	return &domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    principalID,
		Email:     email,
		Token:     "token-" + principalID,
		ExpiresAt: time.Now().Add(f.TTL),
	}
}

func (f *FakeSessionStore) GetCurrentSession(_ context.Context) (*domainauth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	f.order = append(f.order, "get")
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	if f.current == nil {
		return nil, nil
	}
	cp := *f.current
	return &cp, nil
}

func (f *FakeSessionStore) OnSessionChange(fn func(domainauth.SessionEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	f.order = append(f.order, "subscribe")
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

func (f *FakeSessionStore) SignUp(_ context.Context, in domainauth.SignUpInput) error {
	if f.SignUpErr != nil {
		return f.SignUpErr
	}
	f.mu.Lock()
	if _, exists := f.accounts[in.Email]; exists {
		f.mu.Unlock()
		return errors.New("user already registered")
	}
	f.mu.Unlock()
	f.AddAccount(in.Email, in.Password)
	return nil
}

func (f *FakeSessionStore) SignInWithPassword(_ context.Context, email, password string) (*domainauth.Session, error) {
	if f.SignInErr != nil {
		return nil, f.SignInErr
	}
	f.mu.Lock()
	acct, ok := f.accounts[email]
	if !ok || acct.password != password {
		f.mu.Unlock()
		return nil, ErrInvalidCredentials
	}
	f.mu.Unlock()

	sess := f.NewSession(acct.userID, email)
	f.SetCurrent(sess)
	if !f.Silent {
		f.Emit(domainauth.SessionEvent{Kind: domainauth.SessionSignedIn, Session: sess})
	}
	cp := *sess
	return &cp, nil
}

func (f *FakeSessionStore) SignOut(_ context.Context) error {
	if f.SignOutErr != nil {
		return f.SignOutErr
	}
	f.SetCurrent(nil)
	if !f.Silent {
		f.Emit(domainauth.SessionEvent{Kind: domainauth.SessionSignedOut})
	}
	return nil
}

// Emit delivers ev to every registered listener.
func (f *FakeSessionStore) Emit(ev domainauth.SessionEvent) {
	f.mu.Lock()
	fns := make([]func(domainauth.SessionEvent), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Listeners returns the number of registered listeners.
func (f *FakeSessionStore) Listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// CallOrder returns the order of subscribe and get calls.
func (f *FakeSessionStore) CallOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

// FakeRoleProfileStore is an in-memory role/profile store with hooks for sequencing results.
type FakeRoleProfileStore struct {
	// RolesFunc, when set, replaces the map lookup; call is the 1-based call number.
	RolesFunc  func(principalID string, call int) ([]domainauth.RoleAssignment, error)
	ProfileErr error
	// Gate, when set, blocks every read until it is closed.
	Gate chan struct{}

	mu         sync.Mutex
	roles      map[string][]domainauth.Role
	profiles   map[string]domainauth.Profile
	roleCalls  int
	invalidate int
}

// NewFakeRoleProfileStore creates an empty FakeRoleProfileStore.
func NewFakeRoleProfileStore() *FakeRoleProfileStore {
	return &FakeRoleProfileStore{
		roles:    make(map[string][]domainauth.Role),
		profiles: make(map[string]domainauth.Profile),
	}
}

// SetRoles replaces the roles assigned to principalID.
func (f *FakeRoleProfileStore) SetRoles(principalID string, roles ...domainauth.Role) {
	f.mu.Lock()
	f.roles[principalID] = roles
	f.mu.Unlock()
}

// SetProfile stores p under p.ID.
func (f *FakeRoleProfileStore) SetProfile(p domainauth.Profile) {
	f.mu.Lock()
	f.profiles[p.ID] = p
	f.mu.Unlock()
}

// RoleCalls returns how many times ListRoleAssignments was called.
func (f *FakeRoleProfileStore) RoleCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roleCalls
}

// Invalidations returns how many times InvalidateRoles was called.
func (f *FakeRoleProfileStore) Invalidations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invalidate
}

func (f *FakeRoleProfileStore) wait(ctx context.Context) error {
	if f.Gate == nil {
		return nil
	}
	select {
	case <-f.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *FakeRoleProfileStore) ListRoleAssignments(
	ctx context.Context,
	principalID string,
) ([]domainauth.RoleAssignment, error) {
	f.mu.Lock()
	f.roleCalls++
	call := f.roleCalls
	fn := f.RolesFunc
	roles := append([]domainauth.Role(nil), f.roles[principalID]...)
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if fn != nil {
		return fn(principalID, call)
	}
	out := make([]domainauth.RoleAssignment, 0, len(roles))
	for i, r := range roles {
		out = append(out, domainauth.RoleAssignment{ID: fmt.Sprintf("ra-%d", i), UserID: principalID, Role: r})
	}
	return out, nil
}

func (f *FakeRoleProfileStore) GetProfile(ctx context.Context, principalID string) (*domainauth.Profile, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ProfileErr != nil {
		return nil, f.ProfileErr
	}
	p, ok := f.profiles[principalID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *FakeRoleProfileStore) UpdateProfile(_ context.Context, principalID string, upd domainauth.ProfileUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[principalID]
	if !ok {
		return ErrNotFound
	}
	if upd.FullName != nil {
		p.FullName = *upd.FullName
	}
	if upd.RoomNumber != nil {
		p.RoomNumber = upd.RoomNumber
	}
	if upd.Phone != nil {
		p.Phone = upd.Phone
	}
	if upd.RollNumber != nil {
		p.RollNumber = upd.RollNumber
	}
	f.profiles[principalID] = p
	return nil
}

// InvalidateRoles records a cache invalidation.
func (f *FakeRoleProfileStore) InvalidateRoles(_ context.Context, _ string) error {
	f.mu.Lock()
	f.invalidate++
	f.mu.Unlock()
	return nil
}
