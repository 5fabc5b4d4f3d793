package devseed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hostelhub/hostel-api/internal/core"
	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/hostelhub/hostel-api/internal/domain/model"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/hostelhub/hostel-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

type seedMocks struct {
	accounts   *mocks.MockAccountRepository
	identity   *mocks.MockIdentityRepository
	notices    *mocks.MockNoticeRepository
	modules    *mocks.MockModuleRepository
	complaints *mocks.MockComplaintRepository
	leave      *mocks.MockLeaveRepository
	svcs       Services
}

func newSeedMocks(t *testing.T) *seedMocks {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := &seedMocks{
		accounts:   mocks.NewMockAccountRepository(ctrl),
		identity:   mocks.NewMockIdentityRepository(ctrl),
		notices:    mocks.NewMockNoticeRepository(ctrl),
		modules:    mocks.NewMockModuleRepository(ctrl),
		complaints: mocks.NewMockComplaintRepository(ctrl),
		leave:      mocks.NewMockLeaveRepository(ctrl),
	}
	m.svcs = Services{
		Accounts:   m.accounts,
		Identity:   m.identity,
		Notices:    m.notices,
		Modules:    m.modules,
		Complaints: m.complaints,
		Leave:      m.leave,
		Now:        func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) },
	}
	return m
}

func (m *seedMocks) expectModules() {
	m.modules.EXPECT().UpsertMessMenu(gomock.Any(), gomock.Len(7)).Return(nil)
	m.modules.EXPECT().ReplaceContacts(gomock.Any(), gomock.Any()).Return(nil)
	m.modules.EXPECT().ReplaceRules(gomock.Any(), gomock.Any()).Return(nil)
	m.modules.EXPECT().ReplaceLinks(gomock.Any(), gomock.Any()).Return(nil)
	m.modules.EXPECT().ReplaceEvents(gomock.Any(), gomock.Any()).Return(nil)
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRun_FreshDatabase(t *testing.T) {
	m := newSeedMocks(t)

	var hashes []string
	m.accounts.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Times(3).
		DoAndReturn(func(_ context.Context, in core.NewAccount) (*domainauth.User, error) {
			hashes = append(hashes, in.PasswordHash)
			return &domainauth.User{ID: "id-" + in.Email, Email: in.Email}, nil
		})
	m.identity.EXPECT().GrantRole(gomock.Any(), "id-warden@hostel.test", domainauth.RoleAdmin).
		Return(&domainauth.RoleAssignment{UserID: "id-warden@hostel.test", Role: domainauth.RoleAdmin}, nil)
	m.expectModules()
	m.notices.EXPECT().List(gomock.Any(), 1, 0).Return(nil, nil)
	m.notices.EXPECT().Create(gomock.Any(), gomock.Any()).Times(3).Return(&model.Notice{}, nil)

	m.complaints.EXPECT().List(gomock.Any(), gomock.Any()).Times(2).Return(nil, nil)
	m.complaints.EXPECT().Create(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, in model.NewComplaint) (*model.Complaint, error) {
			assert.NotEmpty(t, in.StudentName)
			require.NotNil(t, in.RoomNumber)
			return &model.Complaint{ID: "c"}, nil
		})
	m.leave.EXPECT().List(gomock.Any(), gomock.Any()).Times(2).Return(nil, nil)
	m.leave.EXPECT().Create(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, in model.NewLeaveApplication) (*model.LeaveApplication, error) {
			assert.Equal(t, model.LeaveHome, in.LeaveType)
			assert.True(t, in.EndDate.After(in.StartDate))
			return &model.LeaveApplication{ID: "l"}, nil
		})

	require.NoError(t, Run(context.Background(), m.svcs, discard()))

	require.Len(t, hashes, 3)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashes[0]), []byte(DemoPassword)))
}

func TestRun_ExistingDataIsReused(t *testing.T) {
	m := newSeedMocks(t)

	conflict := apperrors.Conflict("an account with this email already exists")
	m.accounts.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Times(3).Return(nil, conflict)
	m.identity.EXPECT().FindUserIDByEmail(gomock.Any(), gomock.Any()).Times(3).
		DoAndReturn(func(_ context.Context, email string) (string, error) { return "id-" + email, nil })
	m.identity.EXPECT().GrantRole(gomock.Any(), "id-warden@hostel.test", domainauth.RoleAdmin).
		Return(&domainauth.RoleAssignment{}, nil)
	m.expectModules()
	m.notices.EXPECT().List(gomock.Any(), 1, 0).Return([]*model.Notice{{ID: "n1"}}, nil)
	m.complaints.EXPECT().List(gomock.Any(), gomock.Any()).Times(2).Return([]*model.Complaint{{ID: "c1"}}, nil)
	m.leave.EXPECT().List(gomock.Any(), gomock.Any()).Times(2).Return([]*model.LeaveApplication{{ID: "l1"}}, nil)

	require.NoError(t, Run(context.Background(), m.svcs, discard()))
}

func TestRun_CountsFailures(t *testing.T) {
	m := newSeedMocks(t)

	m.accounts.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Times(3).Return(nil, errors.New("db down"))
	m.modules.EXPECT().UpsertMessMenu(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
	m.notices.EXPECT().List(gomock.Any(), 1, 0).Return(nil, errors.New("db down"))

	err := Run(context.Background(), m.svcs, discard())
	require.Error(t, err)
	assert.Equal(t, "5 seed errors; check logs", err.Error())
}
