package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/uni-adm/assignment-api/internal/models"
	appErrors "github.com/uni-adm/assignment-api/pkg/errors"
)

const unreadCountKeyPrefix = "notifications:unread:"

type notificationRepository interface {
	GetOrCreateContent(ctx context.Context, title, body string, category models.NotificationCategory, createdBy *string) (*models.NotificationContent, bool, error)
	GetRecipientState(ctx context.Context, contentID, recipientID string) (*models.RecipientState, error)
	CreateRecipientState(ctx context.Context, contentID, recipientID string) (*models.RecipientState, error)
	ResetRecipientState(ctx context.Context, id string) error
	MarkRead(ctx context.Context, id, recipientID string) error
	Snooze(ctx context.Context, id, recipientID string, until time.Time) error
	Dismiss(ctx context.Context, id, recipientID string) error
	ListInbox(ctx context.Context, recipientID string, filter models.InboxFilter, now time.Time) ([]models.InboxItem, int64, error)
	CountUnread(ctx context.Context, recipientID string, now time.Time) (int64, error)
}

type notificationCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// NotifyRequest describes one notification fan-out.
type NotifyRequest struct {
	Title      string                      `validate:"required"`
	Body       string                      `validate:"required"`
	Category   models.NotificationCategory `validate:"required"`
	CreatedBy  *string
	Recipients []string `validate:"required,min=1"`
}

// NotificationService delivers notifications and serves each recipient's
// inbox. Delivery is idempotent: repeating the same condition reuses the
// content row and leaves recipients who already saw it untouched, except
// that an elapsed snooze resets the state to unseen.
type NotificationService struct {
	notifications notificationRepository
	cache         notificationCache
	snoozeDays    int
	validator     *validator.Validate
	logger        *zap.Logger
	now           func() time.Time
}

// NewNotificationService creates a service instance.
func NewNotificationService(notifications notificationRepository, cache notificationCache, snoozeDays int, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if snoozeDays <= 0 {
		snoozeDays = 7
	}
	return &NotificationService{
		notifications: notifications,
		cache:         cache,
		snoozeDays:    snoozeDays,
		validator:     validate,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Notify delivers one content row to every recipient. Per recipient:
// missing state is created unseen; read or dismissed states stay as they
// are; a snooze whose remind-after already passed is reset to unseen. A
// failing recipient is logged and skipped, the rest still receive it.
func (s *NotificationService) Notify(ctx context.Context, req NotifyRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notification payload")
	}

	content, created, err := s.notifications.GetOrCreateContent(ctx, req.Title, req.Body, req.Category, req.CreatedBy)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve notification content")
	}
	if created {
		s.logger.Debug("notification content created", zap.String("content_id", content.ID), zap.String("title", content.Title))
	}

	now := s.now()
	for _, recipientID := range req.Recipients {
		if err := s.deliver(ctx, content.ID, recipientID, now); err != nil {
			s.logger.Error("notification delivery failed",
				zap.String("content_id", content.ID),
				zap.String("recipient_id", recipientID),
				zap.Error(err))
			continue
		}
		s.invalidateUnread(ctx, recipientID)
	}
	return nil
}

func (s *NotificationService) deliver(ctx context.Context, contentID, recipientID string, now time.Time) error {
	state, err := s.notifications.GetRecipientState(ctx, contentID, recipientID)
	if err != nil {
		if err == sql.ErrNoRows {
			_, err = s.notifications.CreateRecipientState(ctx, contentID, recipientID)
			return err
		}
		return err
	}
	if state.Read || state.Dismissed {
		return nil
	}
	if state.RemindAfter != nil && !state.RemindAfter.After(now) {
		return s.notifications.ResetRecipientState(ctx, state.ID)
	}
	return nil
}

// ListInbox returns the visible notifications of one recipient.
func (s *NotificationService) ListInbox(ctx context.Context, recipientID string, filter models.InboxFilter) ([]models.InboxItem, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	items, total, err := s.notifications.ListInbox(ctx, recipientID, filter, s.now())
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list inbox")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: int(total)}
	return items, pagination, nil
}

// UnreadCount returns the unread badge count, cached briefly in redis.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	key := unreadCountKeyPrefix + recipientID
	if s.cache != nil {
		var cached int64
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}
	count, err := s.notifications.CountUnread(ctx, recipientID, s.now())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread notifications")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, count, time.Minute); err != nil {
			s.logger.Warn("unread count cache write failed", zap.String("recipient_id", recipientID), zap.Error(err))
		}
	}
	return count, nil
}

// MarkRead marks one notification read for its owner.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, stateID string) error {
	if err := s.notifications.MarkRead(ctx, stateID, recipientID); err != nil {
		return s.mapOwnedError(err, "notification not found")
	}
	s.invalidateUnread(ctx, recipientID)
	return nil
}

// Snooze defers one notification for the configured number of days.
func (s *NotificationService) Snooze(ctx context.Context, recipientID, stateID string) error {
	until := s.now().Add(time.Duration(s.snoozeDays) * 24 * time.Hour)
	if err := s.notifications.Snooze(ctx, stateID, recipientID, until); err != nil {
		return s.mapOwnedError(err, "notification not found")
	}
	s.invalidateUnread(ctx, recipientID)
	return nil
}

// Dismiss archives one notification for its owner.
func (s *NotificationService) Dismiss(ctx context.Context, recipientID, stateID string) error {
	if err := s.notifications.Dismiss(ctx, stateID, recipientID); err != nil {
		return s.mapOwnedError(err, "notification not found")
	}
	s.invalidateUnread(ctx, recipientID)
	return nil
}

func (s *NotificationService) mapOwnedError(err error, message string) error {
	if err == sql.ErrNoRows {
		return appErrors.Clone(appErrors.ErrNotFound, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "notification update failed")
}

func (s *NotificationService) invalidateUnread(ctx context.Context, recipientID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("%s%s*", unreadCountKeyPrefix, recipientID)); err != nil {
		s.logger.Warn("unread count invalidation failed", zap.String("recipient_id", recipientID), zap.Error(err))
	}
}
