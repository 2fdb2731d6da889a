package models

import "time"

// NotificationCategory classifies notification content.
type NotificationCategory string

const (
	NotificationInfo    NotificationCategory = "INFO"
	NotificationAlert   NotificationCategory = "ALERT"
	NotificationWarning NotificationCategory = "WARNING"
	NotificationSystem  NotificationCategory = "SYSTEM"
)

// NotificationContent is an immutable message shared by every recipient.
// Content rows are keyed by (title, body, category); repeated conditions
// reuse the existing row instead of duplicating it.
type NotificationContent struct {
	ID        string               `db:"id" json:"id"`
	Title     string               `db:"title" json:"title"`
	Body      string               `db:"body" json:"body"`
	Category  NotificationCategory `db:"category" json:"category"`
	CreatedBy *string              `db:"created_by" json:"created_by,omitempty"`
	CreatedAt time.Time            `db:"created_at" json:"created_at"`
}

// RecipientState tracks one recipient's view of one notification content
// row. Unique on (content_id, recipient_id).
type RecipientState struct {
	ID          string     `db:"id" json:"id"`
	ContentID   string     `db:"content_id" json:"content_id"`
	RecipientID string     `db:"recipient_id" json:"recipient_id"`
	Read        bool       `db:"read" json:"read"`
	ReadAt      *time.Time `db:"read_at" json:"read_at,omitempty"`
	Dismissed   bool       `db:"dismissed" json:"dismissed"`
	RemindAfter *time.Time `db:"remind_after" json:"remind_after,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Snoozed reports whether the state is deferred past now.
func (s *RecipientState) Snoozed(now time.Time) bool {
	return s.RemindAfter != nil && s.RemindAfter.After(now)
}

// InboxItem joins a recipient state with its content for inbox listings.
type InboxItem struct {
	RecipientState
	Title            string               `db:"title" json:"title"`
	Body             string               `db:"body" json:"body"`
	Category         NotificationCategory `db:"category" json:"category"`
	ContentCreatedAt time.Time            `db:"content_created_at" json:"content_created_at"`
}

// InboxFilter selects recipient states for listing.
type InboxFilter struct {
	Read     *bool
	Page     int
	PageSize int
}
