package handlers

import (
	"net/http"

	"licenseportal/internal/common"
	"licenseportal/internal/services"

	"github.com/labstack/echo/v4"
)

// NotificationHandlers handles notification-related HTTP requests
type NotificationHandlers struct {
	notificationSvc services.NotificationService
}

// NewNotificationHandlers creates a new notification handlers instance
func NewNotificationHandlers(notificationSvc services.NotificationService) *NotificationHandlers {
	return &NotificationHandlers{notificationSvc: notificationSvc}
}

// ListMyNotifications godoc
// @Summary List the caller's notifications
// @Tags notifications
// @Produce json
// @Param unread query bool false "Only unread"
// @Success 200 {object} map[string]interface{}
// @Router /v1/notifications [get]
func (h *NotificationHandlers) ListMyNotifications(c echo.Context) error {
	who, ok := callerFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return common.SendValidationError(c, "offset", err.Error())
	}
	unreadOnly := c.QueryParam("unread") == "true"

	items, err := h.notificationSvc.ListForRecipient(c.Request().Context(), who.TenantID, who.UserID, unreadOnly, limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": items,
		"limit":         limit,
		"offset":        offset,
	})
}

// MarkNotificationRead godoc
// @Summary Mark one of the caller's notifications as read
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} models.Notification
// @Failure 404 {object} common.ErrorResponse
// @Router /v1/notifications/{id}/read [put]
func (h *NotificationHandlers) MarkNotificationRead(c echo.Context) error {
	who, ok := callerFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	n, err := h.notificationSvc.MarkRead(c.Request().Context(), who.TenantID, id, who.UserID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}
