// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"skillswap/internal/models"
	"skillswap/internal/view"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
// Optional filters: ?type=connection_request, ?unread=true, ?limit=N.
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, 50)

	items, err := s.notificationService.List(ctx, userID, page.Limit)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	// Derived filters run over the same normalized snapshot the
	// websocket view pushes, so both surfaces agree on read state.
	nv := view.NewNotificationView()
	nv.Apply(items)

	switch {
	case c.Query("type") != "":
		items = nv.ByType(models.NotificationType(c.Query("type")))
	case c.Query("unread") == "true":
		items = nv.ByReadState(true)
	case c.Query("unread") == "false":
		items = nv.ByReadState(false)
	default:
		items = nv.All()
	}

	return c.JSON(items)
}

// GetUnreadCount handles GET /api/notifications/unread-count
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	count, err := s.notificationService.UnreadCount(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"unread_count": count})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	n, err := s.notificationService.MarkRead(ctx, userID, id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(n)
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	if err := s.notificationService.MarkAllRead(ctx, userID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "All notifications marked as read"})
}

// UpdateNotificationStatus handles PUT /api/notifications/:id/status
// Used when the user acts on a request from within the notification;
// the transition implicitly marks the notification read.
func (s *Server) UpdateNotificationStatus(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	n, err := s.notificationService.UpdateStatus(ctx, userID, id, req.Status)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(n)
}

// DeleteNotification handles DELETE /api/notifications/:id
func (s *Server) DeleteNotification(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if delErr := s.notificationService.Delete(ctx, userID, id); delErr != nil {
		return models.RespondWithError(c, mapServiceError(delErr), delErr)
	}

	return c.JSON(fiber.Map{"message": "Notification deleted"})
}

// DeleteAllNotifications handles DELETE /api/notifications
func (s *Server) DeleteAllNotifications(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	if err := s.notificationService.DeleteAll(ctx, userID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "All notifications deleted"})
}
