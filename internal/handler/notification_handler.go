package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/uni-adm/assignment-api/internal/models"
	"github.com/uni-adm/assignment-api/internal/service"
	appErrors "github.com/uni-adm/assignment-api/pkg/errors"
	"github.com/uni-adm/assignment-api/pkg/response"
)

// NotificationHandler serves the authenticated principal's inbox.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler constructs a new NotificationHandler.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// ListInbox godoc
// @Summary List the caller's visible notifications
// @Tags Notifications
// @Produce json
// @Param read query bool false "Filter by read state"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /me/notifications [get]
func (h *NotificationHandler) ListInbox(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.InboxFilter{}
	if read := c.Query("read"); read != "" {
		switch strings.ToLower(read) {
		case "true":
			val := true
			filter.Read = &val
		case "false":
			val := false
			filter.Read = &val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	items, pagination, err := h.notifications.ListInbox(c.Request.Context(), claims.UserID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	meta := map[string]interface{}{}
	if unread, err := h.notifications.UnreadCount(c.Request.Context(), claims.UserID); err == nil {
		meta["unread"] = unread
	}
	response.JSON(c, http.StatusOK, items, pagination, meta)
}

// MarkRead godoc
// @Summary Mark one notification read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 204
// @Router /me/notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	h.mutate(c, h.notifications.MarkRead)
}

// Snooze godoc
// @Summary Defer one notification for the configured number of days
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 204
// @Router /me/notifications/{id}/snooze [patch]
func (h *NotificationHandler) Snooze(c *gin.Context) {
	h.mutate(c, h.notifications.Snooze)
}

// Dismiss godoc
// @Summary Archive one notification
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 204
// @Router /me/notifications/{id}/dismiss [patch]
func (h *NotificationHandler) Dismiss(c *gin.Context) {
	h.mutate(c, h.notifications.Dismiss)
}

func (h *NotificationHandler) mutate(c *gin.Context, op func(ctx context.Context, recipientID, stateID string) error) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := op(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
