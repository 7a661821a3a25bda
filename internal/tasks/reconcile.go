package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

const ReconcileQueueName = "reconcile_favorite_counts"

// FavoriteReconciler recomputes every article's favorites counter from the
// favorites table and reports how many rows changed.
type FavoriteReconciler interface {
	ReconcileFavoriteCounts(ctx context.Context) (int64, error)
}

type ReconcileAuditor interface {
	LogReconcile(corrected int64, err error)
}

type ReconcileRecorder interface {
	RecordReconcile(ctx context.Context, corrected int64)
}

// ReconcileFavoriteCountsTask repairs drift between favorites_count and the
// favorites table. Source names what enqueued it (cron, api, cli).
type ReconcileFavoriteCountsTask struct {
	Source string `json:"source,omitempty"`
}

// Config returns the queue configuration for reconciliation tasks.
func (t ReconcileFavoriteCountsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        ReconcileQueueName,
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReconcileDeps are the collaborators of the reconciliation processor.
// Auditor and Metrics are optional.
type ReconcileDeps struct {
	Reconciler FavoriteReconciler
	Auditor    ReconcileAuditor
	Metrics    ReconcileRecorder
	Log        *zap.SugaredLogger
}

// ReconcileFavoriteCountsProcessor creates a processor function for ReconcileFavoriteCountsTask.
func ReconcileFavoriteCountsProcessor(deps ReconcileDeps) backlite.QueueProcessor[ReconcileFavoriteCountsTask] {
	return func(ctx context.Context, task ReconcileFavoriteCountsTask) error {
		if deps.Reconciler == nil {
			return fmt.Errorf("favorite reconciler not configured")
		}

		corrected, err := deps.Reconciler.ReconcileFavoriteCounts(ctx)
		if deps.Auditor != nil {
			deps.Auditor.LogReconcile(corrected, err)
		}
		if err != nil {
			return fmt.Errorf("reconcile favorite counts: %w", err)
		}
		if deps.Metrics != nil {
			deps.Metrics.RecordReconcile(ctx, corrected)
		}

		deps.Log.Infow("reconciled favorite counts", "corrected", corrected, "source", task.Source)
		return nil
	}
}

// NewReconcileFavoriteCountsQueue creates a backlite queue for reconciliation tasks.
func NewReconcileFavoriteCountsQueue(deps ReconcileDeps) backlite.Queue {
	return backlite.NewQueue(ReconcileFavoriteCountsProcessor(deps))
}
