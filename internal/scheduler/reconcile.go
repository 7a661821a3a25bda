// Package scheduler enqueues periodic maintenance tasks on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mrlokans/conduit/internal/config"
)

// AuditCleanupSchedule runs the audit retention job daily at 03:00.
const AuditCleanupSchedule = "0 3 * * *"

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Enqueuer is the slice of the task client the scheduler needs.
type Enqueuer interface {
	EnqueueReconcile(ctx context.Context, source string) (string, error)
	EnqueueAuditCleanup(ctx context.Context, retentionDays int) (string, error)
}

// ReconcileScheduler enqueues favorite-count reconciliation and audit
// cleanup. Jobs only enqueue; the task queue does the work.
type ReconcileScheduler struct {
	tasks  Enqueuer
	config config.Reconcile
	log    *zap.SugaredLogger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewReconcileScheduler(tasks Enqueuer, cfg config.Reconcile, log *zap.SugaredLogger) *ReconcileScheduler {
	return &ReconcileScheduler{
		tasks:  tasks,
		config: cfg,
		log:    log,
	}
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// Start registers the jobs on a fresh cron loop and starts it. The loop stops
// when ctx is cancelled or Stop is called; Start may be called again after that.
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.config.Enabled {
		s.log.Infow("reconcile scheduler disabled")
		return nil
	}

	if err := ValidateSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	c := cron.New(cron.WithParser(parser))
	entryID, err := c.AddFunc(s.config.Schedule, func() {
		s.enqueueReconcile("cron")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reconcile job: %w", err)
	}
	if _, err := c.AddFunc(AuditCleanupSchedule, s.enqueueAuditCleanup); err != nil {
		return fmt.Errorf("failed to schedule audit cleanup job: %w", err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron = c
	s.entryID = entryID
	c.Start()
	s.isRunning = true

	s.log.Infow("reconcile scheduler started",
		"schedule", s.config.Schedule,
		"next_run", c.Entry(entryID).Next)

	go func() {
		<-cancelCtx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		// A later Start owns a different loop.
		if s.cron == c {
			s.stopLocked()
		}
	}()

	return nil
}

// Stop stops the cron loop and waits for a running job to return.
func (s *ReconcileScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *ReconcileScheduler) stopLocked() {
	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false

	s.log.Infow("reconcile scheduler stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *ReconcileScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the next reconciliation time, or zero when not running.
func (s *ReconcileScheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

func (s *ReconcileScheduler) enqueueReconcile(source string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := s.tasks.EnqueueReconcile(ctx, source)
	if err != nil {
		s.log.Errorw("failed to enqueue reconciliation", "error", err)
		return
	}
	s.log.Infow("enqueued reconciliation", "task_id", id, "source", source)
}

func (s *ReconcileScheduler) enqueueAuditCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.tasks.EnqueueAuditCleanup(ctx, 0); err != nil {
		s.log.Errorw("failed to enqueue audit cleanup", "error", err)
	}
}
