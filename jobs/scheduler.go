// Package jobs runs the periodic maintenance tasks of the API process.
package jobs

import (
	"context"
	"time"

	"varto-api/metrics"
	"varto-api/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Scheduler wraps a cron runner with the jobs registered on it
type Scheduler struct {
	cron   *cron.Cron
	logger *logrus.Logger
}

func NewScheduler(logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		logger: logger,
	}
}

// Add registers fn under spec ("@every 1h", "0 3 * * *", ...)
func (s *Scheduler) Add(name, spec string, fn func(ctx context.Context)) error {
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		fn(context.Background())
		s.logger.WithFields(logrus.Fields{
			"job":         name,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("Job finished")
	})
	if err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"job": name, "schedule": spec}).Info("Job scheduled")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish or ctx to end
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("Timed out waiting for running jobs")
	}
}

// ListingExpiry marks approved listings whose expires_at has passed
type ListingExpiry struct {
	db     *gorm.DB
	logger *logrus.Logger
	now    func() time.Time
}

func NewListingExpiry(db *gorm.DB, logger *logrus.Logger) *ListingExpiry {
	return &ListingExpiry{db: db, logger: logger, now: time.Now}
}

// Run expires overdue listings and returns how many were changed
func (j *ListingExpiry) Run(ctx context.Context) (int64, error) {
	res := j.db.WithContext(ctx).Model(&models.Listing{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.ListingApproved, j.now().UTC()).
		Update("status", models.ListingExpired)
	if res.Error != nil {
		return 0, res.Error
	}
	metrics.RecordListingsExpired(res.RowsAffected)
	if res.RowsAffected > 0 {
		j.logger.WithField("count", res.RowsAffected).Info("Expired listings")
	}
	return res.RowsAffected, nil
}

// Job adapts Run to the scheduler, logging failures
func (j *ListingExpiry) Job(ctx context.Context) {
	if _, err := j.Run(ctx); err != nil {
		j.logger.WithError(err).Error("Listing expiry failed")
	}
}
