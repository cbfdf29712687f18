package userController

import (
	"lms/database"
	"lms/middleware"
	"lms/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications lists the user's notifications newest first and marks all
// of them read in the same request. The response carries the unread count as
// it stood before the sweep so a client can show the badge one last time.
func GetNotifications(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var unreadCount int64
	db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Count(&unreadCount)

	var notifications []models.Notification
	if err := db.Where("user_id = ?", user.ID).
		Order("created_at DESC").Limit(50).
		Find(&notifications).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch notifications!", nil)
	}

	if unreadCount > 0 {
		db.Model(&models.Notification{}).
			Where("user_id = ? AND is_read = ?", user.ID, false).
			Update("is_read", true)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notifications fetched successfully!", fiber.Map{
		"notifications": notifications,
		"unread_count":  unreadCount,
	})
}

// MarkNotificationRead marks a single notification read. Only the owner's
// notifications are visible; anything else is a 404.
func MarkNotificationRead(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	notificationID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid notification ID!", nil)
	}

	var notification models.Notification
	if err := database.Database.Db.
		Where("id = ? AND user_id = ?", notificationID, user.ID).
		First(&notification).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Notification not found!", nil)
	}

	if !notification.IsRead {
		notification.IsRead = true
		if err := database.Database.Db.Save(&notification).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update notification!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification marked as read!", notification)
}
