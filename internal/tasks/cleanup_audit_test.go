package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/conduit/internal/logging"
)

type fakeCleaner struct {
	retention time.Duration
}

func (f *fakeCleaner) DeleteOldEvents(_ context.Context, retention time.Duration) (int64, error) {
	f.retention = retention
	return 2, nil
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	cleaner := &fakeCleaner{}
	process := CleanupAuditEventsProcessor(cleaner, logging.Nop())

	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{RetentionDays: 7}))
	assert.Equal(t, 7*24*time.Hour, cleaner.retention)

	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{}))
	assert.Equal(t, DefaultAuditRetentionDays*24*time.Hour, cleaner.retention)
}

func TestCleanupAuditEventsProcessor_NilCleaner(t *testing.T) {
	process := CleanupAuditEventsProcessor(nil, logging.Nop())
	assert.Error(t, process(context.Background(), CleanupAuditEventsTask{}))
}

func TestEnqueueAuditCleanup(t *testing.T) {
	client := newTestClient(t)
	client.Register(NewCleanupAuditEventsQueue(&fakeCleaner{}, logging.Nop()))

	id, err := client.EnqueueAuditCleanup(context.Background(), 30)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
