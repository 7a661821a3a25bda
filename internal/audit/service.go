package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/conduit/internal/database/audit"
	"github.com/mrlokans/conduit/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	log     *zap.SugaredLogger
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, log *zap.SugaredLogger) *Service {
	return &Service{repo: repo, log: log}
}

// LogAsync records an audit event in the background (non-blocking).
// The write is detached from any request context.
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(context.Background(), event); err != nil {
			s.log.Warnw("Failed to log audit event", "action", event.Action, "error", err)
		}
	}()
}

// Wait blocks until every pending asynchronous write has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogArticleCreate records the creation of an article.
func (s *Service) LogArticleCreate(userID, articleID uint, slug string, tagCount int) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventArticle,
		Action:      "article_create",
		Description: "Created article " + slug,
		EntityType:  "article",
		EntityID:    &articleID,
		Metadata:    encodeMetadata(map[string]any{"slug": slug, "tags_count": tagCount}),
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// LogFavorite records a favorite or unfavorite. changed is false when the
// request was a no-op.
func (s *Service) LogFavorite(userID, articleID uint, slug string, added, changed bool) {
	action := "favorite_remove"
	if added {
		action = "favorite_add"
	}

	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventFavorite,
		Action:      action,
		Description: slug,
		EntityType:  "article",
		EntityID:    &articleID,
		Metadata:    encodeMetadata(map[string]any{"changed": changed}),
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// LogFollow records a follow or unfollow of another user.
func (s *Service) LogFollow(followerID, followedID uint, username string, added bool) {
	action := "follow_remove"
	if added {
		action = "follow_add"
	}

	event := &entities.AuditEvent{
		UserID:      followerID,
		EventType:   entities.AuditEventFollow,
		Action:      action,
		Description: username,
		EntityType:  "user",
		EntityID:    &followedID,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action string, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		UserAgent: truncate(userAgent, 500),
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogReconcile records a favorite-count reconciliation run.
func (s *Service) LogReconcile(corrected int64, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventReconcile,
		Action:      "favorite_counts_reconcile",
		Description: "Recomputed favorite counters",
		EntityType:  "article",
		Metadata:    encodeMetadata(map[string]any{"corrected": corrected}),
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, userID uint, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, userID, eventType, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

func encodeMetadata(metadata map[string]any) string {
	data, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(data)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
