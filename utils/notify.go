package utils

import (
	"encoding/json"
	"log"

	"lms/database"
	"lms/models"

	"gorm.io/datatypes"
)

// Notify creates an unread notification for a user. Failures are logged, not
// propagated: notifications never break the triggering request.
func Notify(userID uint, message string, data map[string]interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error encoding notification payload: %v", err)
		payload = []byte("{}")
	}

	notification := models.Notification{
		UserID:  userID,
		Message: message,
		Data:    datatypes.JSON(payload),
	}

	if err := database.Database.Db.Create(&notification).Error; err != nil {
		log.Printf("Error creating notification for user %d: %v", userID, err)
	}
}
