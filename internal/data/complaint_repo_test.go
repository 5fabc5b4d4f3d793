package data

import (
	"context"
	"testing"
	"time"

	"github.com/hostelhub/hostel-api/internal/domain/model"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/hostelhub/hostel-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplaintRepo_Lifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	clock := NewFixedTimeProvider(testutil.TestTime())
	repo := NewComplaintRepoWithTimeProvider(db, clock)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, testutil.SeedUserParams{Email: "alice@hostel.test"})
	bob := testutil.SeedUser(t, db, testutil.SeedUserParams{Email: "bob@hostel.test"})

	first, err := repo.Create(ctx, model.NewComplaint{
		StudentID: alice, StudentName: "Alice", Category: "Plumbing", Description: "Leaking tap",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ComplaintPending, first.Status)
	assert.True(t, first.CreatedAt.Equal(testutil.TestTime()))

	clock.AddTime(time.Minute)
	second, err := repo.Create(ctx, model.NewComplaint{
		StudentID: alice, StudentName: "Alice", Category: "Electrical", Description: "Fan broken",
	})
	require.NoError(t, err)

	clock.AddTime(time.Minute)
	_, err = repo.Create(ctx, model.NewComplaint{
		StudentID: bob, StudentName: "Bob", Category: "Wifi", Description: "No signal",
	})
	require.NoError(t, err)

	own, err := repo.List(ctx, model.ComplaintListOptions{StudentID: &alice})
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, second.ID, own[0].ID, "newest first")

	all, err := repo.List(ctx, model.ComplaintListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	updated, err := repo.UpdateStatus(ctx, first.ID, model.ComplaintResolved)
	require.NoError(t, err)
	assert.Equal(t, model.ComplaintResolved, updated.Status)

	resolved := model.ComplaintResolved
	filtered, err := repo.List(ctx, model.ComplaintListOptions{Status: &resolved})
	require.NoError(t, err)
	require.Len(t, filtered, 1)

	withPhoto, err := repo.SetPhotoURL(ctx, second.ID, "https://cdn.test/p.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/p.jpg", *withPhoto.PhotoURL)

	stats, err := repo.Stats(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, model.ComplaintStats{Total: 3, Pending: 2, Resolved: 1}, *stats)

	aliceStats, err := repo.Stats(ctx, &alice)
	require.NoError(t, err)
	assert.Equal(t, 2, aliceStats.Total)

	_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.True(t, apperrors.IsNotFound(err))
}
