package jobs

import (
	"database/sql"
	"time"

	"toolpool-backend/internal/config"
	"toolpool-backend/internal/logger"
	"toolpool-backend/internal/service"
)

// RateLimiterCleaner is implemented by the in-process rate limiter so the
// scheduler can evict idle counters.
type RateLimiterCleaner interface {
	Cleanup(maxIdle time.Duration)
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	db       *sql.DB
	services *Services
	config   *config.Config
	limiter  RateLimiterCleaner
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Rental service.RentalService
	Email  service.EmailService
}

// NewJobRunner creates a new job runner with all dependencies. The limiter
// may be nil when the runner lives in a process without an HTTP server.
func NewJobRunner(db *sql.DB, services *Services, cfg *config.Config, limiter RateLimiterCleaner) *JobRunner {
	return &JobRunner{
		db:       db,
		services: services,
		config:   cfg,
		limiter:  limiter,
	}
}

// Config exposes the loaded configuration to the scheduler.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllJobs runs every scheduled job once (for manual execution)
func (jr *JobRunner) RunAllJobs() {
	jr.ReleaseExpiredDeposits()
	jr.MarkOverdueRentals()
	jr.CleanupRateLimiter()
}
