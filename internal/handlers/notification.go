package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/velora/internal/middleware"
	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/utils"
)

// NotificationHandler manages the authenticated user's notifications.
type NotificationHandler struct {
	db *gorm.DB
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// List returns the user's notifications plus broadcasts, skipping expired
// ones, newest first.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Notification{}).
		Where("(user_id = ? OR user_id IS NULL)", userID).
		Where("expires_at IS NULL OR expires_at > ?", time.Now())

	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var unread int64
	if err := h.db.Model(&models.Notification{}).
		Where("(user_id = ? OR user_id IS NULL) AND is_read = ?", userID, false).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Count(&unread).Error; err != nil {
		return err
	}

	var notifications []models.Notification
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&notifications).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    notifications,
		"unread":  unread,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// MarkRead flips the read flag on one notification.
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var notification models.Notification
	if err := h.db.First(&notification, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "notification not found")
		}
		return err
	}
	if notification.UserID != nil && *notification.UserID != userID {
		return fiber.NewError(fiber.StatusForbidden, "notification belongs to another user")
	}

	if err := h.db.Model(&notification).Update("is_read", true).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "notification marked read"})
}

// MarkAllRead flips the read flag on everything addressed to the user.
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "all notifications marked read"})
}
