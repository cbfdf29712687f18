package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification is a one-directional unread -> read record. There is no
// transition back to unread.
type Notification struct {
	gorm.Model
	UserID  uint           `json:"user_id" gorm:"index;not null"`
	Message string         `json:"message" gorm:"type:text;not null"`
	Data    datatypes.JSON `json:"data"` // link payload, e.g. {"course_id": 12}
	IsRead  bool           `json:"is_read" gorm:"default:false"`
}
