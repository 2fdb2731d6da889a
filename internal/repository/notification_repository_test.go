package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-adm/assignment-api/internal/models"
)

func newNotificationMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestNotificationRepositoryGetOrCreateContentReusesExisting(t *testing.T) {
	db, mock, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "body", "category", "created_by", "created_at"}).
		AddRow("content-1", "Workload exceeded", "Body", "ALERT", nil, time.Now())
	mock.ExpectQuery(`FROM notification_contents\s+WHERE title = \$1 AND body = \$2 AND category = \$3`).
		WithArgs("Workload exceeded", "Body", models.NotificationAlert).
		WillReturnRows(rows)

	content, created, err := repo.GetOrCreateContent(context.Background(), "Workload exceeded", "Body", models.NotificationAlert, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "content-1", content.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryGetOrCreateContentInserts(t *testing.T) {
	db, mock, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(`FROM notification_contents`).
		WithArgs("New condition", "Body", models.NotificationWarning).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO notification_contents`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	content, created, err := repo.GetOrCreateContent(context.Background(), "New condition", "Body", models.NotificationWarning, nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, content.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkReadNotOwned(t *testing.T) {
	db, mock, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(`UPDATE notification_recipients\s+SET read = TRUE, read_at = \$3\s+WHERE id = \$1 AND recipient_id = \$2`).
		WithArgs("state-1", "someone-else", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRead(context.Background(), "state-1", "someone-else")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositorySnooze(t *testing.T) {
	db, mock, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)
	until := time.Now().UTC().Add(7 * 24 * time.Hour)

	mock.ExpectExec(`UPDATE notification_recipients\s+SET remind_after = \$3`).
		WithArgs("state-1", "person-1", until).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Snooze(context.Background(), "state-1", "person-1", until))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryListInbox(t *testing.T) {
	db, mock, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM notification_recipients nr`).
		WithArgs("person-1", now).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{
		"id", "content_id", "recipient_id", "read", "read_at", "dismissed", "remind_after", "created_at",
		"title", "body", "category", "content_created_at",
	}).AddRow("state-1", "content-1", "person-1", false, nil, false, nil, now,
		"Workload exceeded", "Body", "ALERT", now)
	mock.ExpectQuery(`JOIN notification_contents nc ON nc\.id = nr\.content_id`).
		WithArgs("person-1", now, 20, 0).
		WillReturnRows(rows)

	items, total, err := repo.ListInbox(context.Background(), "person-1", models.InboxFilter{}, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Workload exceeded", items[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryListInboxUnreadFilter(t *testing.T) {
	db, mock, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)
	now := time.Now().UTC()
	unread := false

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("person-1", now, unread).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`JOIN notification_contents nc`).
		WithArgs("person-1", now, unread, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, total, err := repo.ListInbox(context.Background(), "person-1", models.InboxFilter{Read: &unread, PageSize: 10}, now)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}
