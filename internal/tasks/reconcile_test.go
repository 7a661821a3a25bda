package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/conduit/internal/logging"
)

type fakeReconciler struct {
	corrected int64
	err       error
	calls     chan struct{}
}

func (f *fakeReconciler) ReconcileFavoriteCounts(context.Context) (int64, error) {
	if f.calls != nil {
		f.calls <- struct{}{}
	}
	return f.corrected, f.err
}

type recordingAuditor struct {
	corrected int64
	err       error
	calls     int
}

func (r *recordingAuditor) LogReconcile(corrected int64, err error) {
	r.calls++
	r.corrected = corrected
	r.err = err
}

type recordingMetrics struct {
	total int64
}

func (r *recordingMetrics) RecordReconcile(_ context.Context, corrected int64) {
	r.total += corrected
}

func TestReconcileTaskConfig(t *testing.T) {
	cfg := ReconcileFavoriteCountsTask{}.Config()

	assert.Equal(t, ReconcileQueueName, cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestReconcileProcessor(t *testing.T) {
	auditor := &recordingAuditor{}
	metrics := &recordingMetrics{}
	process := ReconcileFavoriteCountsProcessor(ReconcileDeps{
		Reconciler: &fakeReconciler{corrected: 4},
		Auditor:    auditor,
		Metrics:    metrics,
		Log:        logging.Nop(),
	})

	require.NoError(t, process(context.Background(), ReconcileFavoriteCountsTask{Source: "test"}))
	assert.Equal(t, 1, auditor.calls)
	assert.Equal(t, int64(4), auditor.corrected)
	assert.Equal(t, int64(4), metrics.total)
}

func TestReconcileProcessor_Error(t *testing.T) {
	auditor := &recordingAuditor{}
	metrics := &recordingMetrics{}
	process := ReconcileFavoriteCountsProcessor(ReconcileDeps{
		Reconciler: &fakeReconciler{err: errors.New("db locked")},
		Auditor:    auditor,
		Metrics:    metrics,
		Log:        logging.Nop(),
	})

	err := process(context.Background(), ReconcileFavoriteCountsTask{})
	assert.ErrorContains(t, err, "db locked")
	assert.Error(t, auditor.err)
	assert.Zero(t, metrics.total)
}

func TestReconcileProcessor_NotConfigured(t *testing.T) {
	process := ReconcileFavoriteCountsProcessor(ReconcileDeps{Log: logging.Nop()})
	assert.Error(t, process(context.Background(), ReconcileFavoriteCountsTask{}))
}

func TestEnqueueReconcile_RunsOnQueue(t *testing.T) {
	client := newTestClient(t)
	reconciler := &fakeReconciler{corrected: 1, calls: make(chan struct{}, 1)}
	client.Register(NewReconcileFavoriteCountsQueue(ReconcileDeps{Reconciler: reconciler, Log: logging.Nop()}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	id, err := client.EnqueueReconcile(context.Background(), "test")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case <-reconciler.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("reconciliation was not executed within timeout")
	}
}
