package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	appfinance "github.com/feedlot/backend/internal/application/finance"
	"github.com/feedlot/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	// ErrInvalidConfig wraps every rejected scheduler setting
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
	// ErrBatchInProgress means the previous run has not finished
	ErrBatchInProgress = errors.New("reconciliation batch already in progress")
)

// BatchRunner reconciles every unreconciled statement of a bank account
type BatchRunner interface {
	RunBatch(ctx context.Context, req appfinance.BatchRequest) (*appfinance.BatchSummary, error)
}

// ReconcileSchedulerConfig holds configuration for the nightly reconciliation run
type ReconcileSchedulerConfig struct {
	// Enabled indicates if the schedule is registered at all
	Enabled bool
	// CronSchedule is a standard five-field cron expression
	CronSchedule string
	// BatchTimeout bounds a single run; statements not reached are left for the next run
	BatchTimeout time.Duration
	// BankAccountRef restricts the run to one bank account; empty means all
	BankAccountRef string
}

// DefaultReconcileSchedulerConfig returns default configuration.
// Defaults to running at 2:00 AM daily.
func DefaultReconcileSchedulerConfig() ReconcileSchedulerConfig {
	return ReconcileSchedulerConfig{
		Enabled:      true,
		CronSchedule: "0 2 * * *",
		BatchTimeout: 30 * time.Minute,
	}
}

// Validate checks the cron expression and timeout
func (c ReconcileSchedulerConfig) Validate() error {
	if c.BatchTimeout <= 0 {
		return fmt.Errorf("%w: batch timeout must be positive", ErrInvalidConfig)
	}
	if _, err := cron.ParseStandard(c.CronSchedule); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ReconcileScheduler triggers the reconciliation batch on a cron schedule.
// Runs never overlap; a tick that fires while a run is executing is skipped.
type ReconcileScheduler struct {
	config ReconcileSchedulerConfig
	runner BatchRunner
	logger *zap.Logger
	cron   *cron.Cron

	mu        sync.Mutex
	running   bool // a batch is executing
	started   bool
	lastRunAt *time.Time
	last      *appfinance.BatchSummary
}

// NewReconcileScheduler creates a new ReconcileScheduler
func NewReconcileScheduler(config ReconcileSchedulerConfig, runner BatchRunner, log *zap.Logger) (*ReconcileScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("scheduler")
	s := &ReconcileScheduler{
		config: config,
		runner: runner,
		logger: log,
		cron:   cron.New(cron.WithLogger(newCronLogger(log))),
	}
	if _, err := s.cron.AddFunc(config.CronSchedule, s.tick); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return s, nil
}

// Start begins firing the schedule. It is a no-op when disabled or already started.
func (s *ReconcileScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.config.Enabled || s.started {
		return
	}
	s.started = true
	s.cron.Start()
	s.logger.Info("Reconciliation scheduler started",
		zap.String("schedule", s.config.CronSchedule),
		zap.Time("next_run_at", s.nextRunLocked()))
}

// Stop halts the schedule and waits for a running batch to finish or ctx to expire
func (s *ReconcileScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Reconciliation scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Reconciliation scheduler stop timed out")
		return ctx.Err()
	}
}

// NextRunAt returns when the schedule fires next, zero if not started
func (s *ReconcileScheduler) NextRunAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunLocked()
}

func (s *ReconcileScheduler) nextRunLocked() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// LastRun returns the summary and start time of the most recent completed run
func (s *ReconcileScheduler) LastRun() (*appfinance.BatchSummary, *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.lastRunAt
}

func (s *ReconcileScheduler) tick() {
	if _, err := s.RunOnce(context.Background()); err != nil && !errors.Is(err, ErrBatchInProgress) {
		s.logger.Error("Scheduled reconciliation failed", zap.Error(err))
	}
}

// RunOnce executes one batch now under the configured timeout. It returns
// ErrBatchInProgress if a batch is already executing.
func (s *ReconcileScheduler) RunOnce(ctx context.Context) (*appfinance.BatchSummary, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("Skipping reconciliation run, previous batch still executing")
		return nil, ErrBatchInProgress
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, s.config.BatchTimeout)
	defer cancel()
	ctx, log := logger.WithBatchID(ctx, s.logger, uuid.NewString())

	startedAt := time.Now()
	log.Info("Reconciliation batch started", zap.String("bank_account_ref", s.config.BankAccountRef))
	summary, err := s.runner.RunBatch(ctx, appfinance.BatchRequest{BankAccountRef: s.config.BankAccountRef})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.last = summary
	s.lastRunAt = &startedAt
	s.mu.Unlock()

	log.Info("Reconciliation batch finished",
		zap.Duration("duration", time.Since(startedAt)),
		zap.Int("processed", summary.Processed),
		zap.Int("auto_reconciled", summary.AutoReconciled),
		zap.Int("needs_review", summary.NeedsReview),
		zap.Int("no_candidate", summary.NoCandidate),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Bool("cancelled", summary.Cancelled))
	return summary, nil
}
