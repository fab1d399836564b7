package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/corvid-labs/rookery/backend/internal/notifications"
	"github.com/corvid-labs/rookery/backend/internal/pagination"
)

// NotificationHandler serves the caller's notification stream.
type NotificationHandler struct {
	reader *notifications.Reader
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(reader *notifications.Reader) *NotificationHandler {
	return &NotificationHandler{reader: reader}
}

// RegisterNotificationRoutes registers notification routes.
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// GetNotifications returns a cursor page of the caller's notifications,
// newest first.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	cursor, err := cursorFromQuery(c)
	if err != nil {
		return err
	}
	limit := pagination.ClampLimit(c.QueryParam("limit"), pagination.NotificationDefaultLimit, pagination.NotificationMaxLimit)

	page, err := h.reader.Page(c.Request().Context(), getAccountID(c), cursor, limit)
	if err != nil {
		return httpError(err)
	}

	var firstID, lastID int64
	if len(page) > 0 {
		firstID, lastID = page[0].ID, page[len(page)-1].ID
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"notifications": page},
		"meta":    pageMeta(firstID, lastID, len(page), limit),
	})
}

// GetUnreadCount returns how many notifications the caller has not read.
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.reader.UnreadCount(c.Request().Context(), getAccountID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// MarkAsRead marks one notification as read. Re-marking is a no-op.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	notificationID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.reader.MarkRead(c.Request().Context(), getAccountID(c), notificationID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"read": true}})
}

// MarkAllAsRead marks every unread notification of the caller as read.
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	if err := h.reader.MarkAllRead(c.Request().Context(), getAccountID(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"read": true}})
}
