package service

import (
	"context"
	"errors"
	"testing"
	"time"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/hostelhub/hostel-api/internal/domain/model"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/hostelhub/hostel-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestModuleService_All(t *testing.T) {
	t.Parallel()
	repo := mocks.NewMockModuleRepository(gomock.NewController(t))
	svc := NewModuleService(ModuleServiceOptions{Repo: repo})

	repo.EXPECT().ListMessMenu(gomock.Any()).Return([]model.MessMenuDay{{Day: "Monday", Lunch: "Rajma rice"}}, nil)
	repo.EXPECT().ListContacts(gomock.Any()).Return(nil, nil)
	repo.EXPECT().ListRules(gomock.Any()).Return([]model.HostelRule{{Rule: "Gate closes at 22:00"}}, nil)
	repo.EXPECT().ListLinks(gomock.Any()).Return(nil, nil)
	repo.EXPECT().ListEvents(gomock.Any()).Return(nil, nil)

	all, err := svc.All(context.Background(), student1)
	require.NoError(t, err)
	assert.Len(t, all.MessMenu, 1)
	assert.Len(t, all.HostelRules, 1)
	assert.NotNil(t, all.EmergencyContacts)
	assert.NotNil(t, all.QuickLinks)
	assert.NotNil(t, all.Events)
}

func TestModuleService_AllPropagatesErrors(t *testing.T) {
	t.Parallel()
	repo := mocks.NewMockModuleRepository(gomock.NewController(t))
	svc := NewModuleService(ModuleServiceOptions{Repo: repo})
	boom := errors.New("db down")

	repo.EXPECT().ListMessMenu(gomock.Any()).Return(nil, boom)
	repo.EXPECT().ListContacts(gomock.Any()).Return(nil, nil).AnyTimes()
	repo.EXPECT().ListRules(gomock.Any()).Return(nil, nil).AnyTimes()
	repo.EXPECT().ListLinks(gomock.Any()).Return(nil, nil).AnyTimes()
	repo.EXPECT().ListEvents(gomock.Any()).Return(nil, nil).AnyTimes()

	_, err := svc.All(context.Background(), student1)
	assert.ErrorIs(t, err, boom)
}

func TestModuleService_Writes(t *testing.T) {
	t.Parallel()
	repo := mocks.NewMockModuleRepository(gomock.NewController(t))
	svc := NewModuleService(ModuleServiceOptions{Repo: repo})
	ctx := context.Background()

	err := svc.SaveRules(ctx, student1, []model.HostelRule{{Rule: "No loud music"}})
	assert.True(t, apperrors.IsForbidden(err))

	err = svc.SaveRules(ctx, domainauth.Actor{}, nil)
	assert.True(t, apperrors.IsUnauthorized(err))

	err = svc.SaveLinks(ctx, warden, []model.QuickLink{{Title: "Fees", URL: "javascript:alert(1)"}})
	assert.True(t, apperrors.IsValidation(err))

	err = svc.SaveMessMenu(ctx, warden, []model.MessMenuDay{{Day: "Funday"}})
	assert.True(t, apperrors.IsValidation(err))

	repo.EXPECT().UpsertMessMenu(gomock.Any(), []model.MessMenuDay{{Day: "Monday", Breakfast: "Poha"}}).Return(nil)
	require.NoError(t, svc.SaveMessMenu(ctx, warden, []model.MessMenuDay{{Day: "monday", Breakfast: " Poha "}}))

	repo.EXPECT().ReplaceLinks(gomock.Any(), []model.QuickLink{{Title: "Fees", URL: "/fees", Icon: "link"}}).Return(nil)
	require.NoError(t, svc.SaveLinks(ctx, warden, []model.QuickLink{{Title: "Fees", URL: "/fees"}}))

	repo.EXPECT().ReplaceContacts(gomock.Any(), gomock.Len(1)).Return(nil)
	require.NoError(t, svc.SaveContacts(ctx, warden, []model.EmergencyContact{{Name: "Warden", Phone: "100"}}))

	err = svc.SaveEvents(ctx, warden, []model.HostelEvent{{Title: "Sports day"}})
	assert.True(t, apperrors.IsValidation(err))

	repo.EXPECT().ReplaceEvents(gomock.Any(), gomock.Len(1)).Return(nil)
	require.NoError(t, svc.SaveEvents(ctx, warden, []model.HostelEvent{
		{Title: "Sports day", EventDate: time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC)},
	}))
}
