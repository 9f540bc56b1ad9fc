package jobs

import (
	"context"
	"io"
	"testing"
	"time"

	"varto-api/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Listing{}))
	return db
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestListingExpiryRun(t *testing.T) {
	db := testDB(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	listings := []models.Listing{
		{Title: "overdue", Status: models.ListingApproved, ExpiresAt: &past},
		{Title: "fresh", Status: models.ListingApproved, ExpiresAt: &future},
		{Title: "pending", Status: models.ListingPending, ExpiresAt: &past},
		{Title: "no expiry", Status: models.ListingApproved},
	}
	require.NoError(t, db.Create(&listings).Error)

	job := NewListingExpiry(db, quietLogger())
	job.now = func() time.Time { return now }

	n, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var got []models.Listing
	require.NoError(t, db.Order("id").Find(&got).Error)
	assert.Equal(t, models.ListingExpired, got[0].Status)
	assert.Equal(t, models.ListingApproved, got[1].Status)
	assert.Equal(t, models.ListingPending, got[2].Status)
	assert.Equal(t, models.ListingApproved, got[3].Status)

	n, err = job.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(quietLogger())
	assert.Error(t, s.Add("broken", "not a schedule", func(context.Context) {}))
	assert.NoError(t, s.Add("hourly", "@every 1h", func(context.Context) {}))
}

func TestSchedulerRunsJobs(t *testing.T) {
	s := NewScheduler(quietLogger())
	ran := make(chan struct{}, 1)
	require.NoError(t, s.Add("tick", "@every 1s", func(context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))
	s.Start()
	defer s.Stop(context.Background())

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
