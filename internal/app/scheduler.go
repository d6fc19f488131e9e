/**
 * @description
 * Cron scheduler for the nightly interest accrual job. One day's interest
 * (balance * rate / 100 / 365, rounded) is applied to every account holding
 * a positive balance at a positive rate, in a single atomic statement.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron     *cron.Cron
	service  *Service
	logger   *slog.Logger
	schedule string
}

// NewScheduler creates a new scheduler instance. schedule is a cron
// expression; the accrual job is expected to run once per day.
func NewScheduler(service *Service, logger *slog.Logger, schedule string) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:     c,
		service:  service,
		logger:   logger,
		schedule: schedule,
	}
}

// Start registers the interest accrual job and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.schedule, s.runInterestAccrual); err != nil {
		s.logger.Error("failed to schedule interest accrual job", "error", err)
	} else {
		s.logger.Info("scheduled interest accrual job", "schedule", s.schedule)
	}

	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runInterestAccrual() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	started := time.Now()
	accrued, err := s.service.AccrueDailyInterest(ctx)
	if err != nil {
		s.logger.Error("interest accrual failed", "error", err)
		return
	}
	s.logger.Info("interest accrual completed", "accounts_accrued", accrued, "duration", time.Since(started).String())
}
