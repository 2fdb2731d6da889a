package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uni-adm/assignment-api/internal/models"
)

// NotificationRepository persists notification content and per-recipient
// state. Content rows are deduplicated on (title, body, category) so a
// repeated condition reuses the same row.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// GetOrCreateContent returns the existing content row for the exact
// (title, body, category) triple, inserting one when missing. The second
// result reports whether a new row was created.
func (r *NotificationRepository) GetOrCreateContent(ctx context.Context, title, body string, category models.NotificationCategory, createdBy *string) (*models.NotificationContent, bool, error) {
	const findQuery = `
SELECT id, title, body, category, created_by, created_at
FROM notification_contents
WHERE title = $1 AND body = $2 AND category = $3`
	var content models.NotificationContent
	err := r.db.GetContext(ctx, &content, findQuery, title, body, category)
	if err == nil {
		return &content, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("find notification content: %w", err)
	}

	content = models.NotificationContent{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      body,
		Category:  category,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	const insertQuery = `
INSERT INTO notification_contents (id, title, body, category, created_by, created_at)
VALUES (:id, :title, :body, :category, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, insertQuery, &content); err != nil {
		return nil, false, fmt.Errorf("insert notification content: %w", err)
	}
	return &content, true, nil
}

// GetRecipientState loads one recipient's state for a content row.
// Returns sql.ErrNoRows when the recipient has never received it.
func (r *NotificationRepository) GetRecipientState(ctx context.Context, contentID, recipientID string) (*models.RecipientState, error) {
	const query = `
SELECT id, content_id, recipient_id, read, read_at, dismissed, remind_after, created_at
FROM notification_recipients
WHERE content_id = $1 AND recipient_id = $2`
	var state models.RecipientState
	if err := r.db.GetContext(ctx, &state, query, contentID, recipientID); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find recipient state: %w", err)
	}
	return &state, nil
}

// CreateRecipientState inserts a fresh unseen state for one recipient.
func (r *NotificationRepository) CreateRecipientState(ctx context.Context, contentID, recipientID string) (*models.RecipientState, error) {
	state := models.RecipientState{
		ID:          uuid.NewString(),
		ContentID:   contentID,
		RecipientID: recipientID,
		CreatedAt:   time.Now().UTC(),
	}
	const query = `
INSERT INTO notification_recipients (id, content_id, recipient_id, read, read_at, dismissed, remind_after, created_at)
VALUES (:id, :content_id, :recipient_id, :read, :read_at, :dismissed, :remind_after, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, &state); err != nil {
		return nil, fmt.Errorf("insert recipient state: %w", err)
	}
	return &state, nil
}

// ResetRecipientState clears the snooze on an existing state so the
// notification surfaces again as unseen.
func (r *NotificationRepository) ResetRecipientState(ctx context.Context, id string) error {
	const query = `
UPDATE notification_recipients
SET read = FALSE, read_at = NULL, remind_after = NULL
WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("reset recipient state: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check reset rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkRead sets the read flag and timestamp for one recipient state owned
// by the recipient. Returns sql.ErrNoRows when the state is not theirs.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	const query = `
UPDATE notification_recipients
SET read = TRUE, read_at = $3
WHERE id = $1 AND recipient_id = $2`
	return r.execOwned(ctx, "mark read", query, id, recipientID, time.Now().UTC())
}

// Snooze defers the state until the given instant.
func (r *NotificationRepository) Snooze(ctx context.Context, id, recipientID string, until time.Time) error {
	const query = `
UPDATE notification_recipients
SET remind_after = $3
WHERE id = $1 AND recipient_id = $2`
	return r.execOwned(ctx, "snooze", query, id, recipientID, until)
}

// Dismiss archives the state for its recipient.
func (r *NotificationRepository) Dismiss(ctx context.Context, id, recipientID string) error {
	const query = `
UPDATE notification_recipients
SET dismissed = TRUE
WHERE id = $1 AND recipient_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, recipientID)
	if err != nil {
		return fmt.Errorf("dismiss notification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check dismiss rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *NotificationRepository) execOwned(ctx context.Context, op, query string, id, recipientID string, ts time.Time) error {
	result, err := r.db.ExecContext(ctx, query, id, recipientID, ts)
	if err != nil {
		return fmt.Errorf("%s notification: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s rows: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListInbox returns the visible inbox for one recipient: not dismissed and
// not snoozed past now, newest content first.
func (r *NotificationRepository) ListInbox(ctx context.Context, recipientID string, filter models.InboxFilter, now time.Time) ([]models.InboxItem, int64, error) {
	where := `
WHERE nr.recipient_id = $1
  AND nr.dismissed = FALSE
  AND (nr.remind_after IS NULL OR nr.remind_after <= $2)`
	args := []interface{}{recipientID, now}
	if filter.Read != nil {
		args = append(args, *filter.Read)
		where += fmt.Sprintf(" AND nr.read = $%d", len(args))
	}

	countQuery := `
SELECT COUNT(*)
FROM notification_recipients nr` + where
	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count inbox: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	args = append(args, pageSize, (page-1)*pageSize)
	listQuery := fmt.Sprintf(`
SELECT nr.id, nr.content_id, nr.recipient_id, nr.read, nr.read_at, nr.dismissed, nr.remind_after, nr.created_at,
       nc.title, nc.body, nc.category, nc.created_at AS content_created_at
FROM notification_recipients nr
JOIN notification_contents nc ON nc.id = nr.content_id`+where+`
ORDER BY nc.created_at DESC
LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	var items []models.InboxItem
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list inbox: %w", err)
	}
	return items, total, nil
}

// CountUnread returns the number of visible unread notifications.
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string, now time.Time) (int64, error) {
	const query = `
SELECT COUNT(*)
FROM notification_recipients
WHERE recipient_id = $1
  AND read = FALSE
  AND dismissed = FALSE
  AND (remind_after IS NULL OR remind_after <= $2)`
	var count int64
	if err := r.db.GetContext(ctx, &count, query, recipientID, now); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}
