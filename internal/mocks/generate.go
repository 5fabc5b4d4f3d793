// Package mocks provides generated mock implementations of the hostel repository ports.
//
// This package uses go.uber.org/mock (gomock). To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	repo := mocks.NewMockComplaintRepository(ctrl)
//	repo.EXPECT().GetByID(gomock.Any(), "c1").Return(complaint, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/hostelhub/hostel-api/internal/core CacheRepository

// Role assignments and profiles: ListRoleAssignments, GetProfile, UpdateProfile, GrantRole, RevokeRole, FindUserIDByEmail
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_repository_mock.go github.com/hostelhub/hostel-api/internal/core IdentityRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=account_repository_mock.go github.com/hostelhub/hostel-api/internal/core AccountRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=complaint_repository_mock.go github.com/hostelhub/hostel-api/internal/core ComplaintRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=leave_repository_mock.go github.com/hostelhub/hostel-api/internal/core LeaveRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=notice_repository_mock.go github.com/hostelhub/hostel-api/internal/core NoticeRepository

// Dashboard modules: mess menu upsert plus the replace-all lists
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=module_repository_mock.go github.com/hostelhub/hostel-api/internal/core ModuleRepository
