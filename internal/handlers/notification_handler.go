package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jobup-app/backend/internal/services/notification"
)

type NotificationHandler struct {
	Notifications *notification.Service
}

func NewNotificationHandler(notifs *notification.Service) *NotificationHandler {
	return &NotificationHandler{Notifications: notifs}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	out, err := h.Notifications.List(userUUID, limit)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": out})
}

func (h *NotificationHandler) ListUnread(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	out, err := h.Notifications.ListUnread(userUUID, limit)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": out})
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	count, err := h.Notifications.UnreadCount(userUUID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"count": count}})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid notification ID"})
	}

	n, err := h.Notifications.MarkRead(id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": n})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	if err := h.Notifications.MarkAllRead(userUUID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "All notifications marked as read"})
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid notification ID"})
	}

	if err := h.Notifications.Delete(id); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Notification deleted"})
}
