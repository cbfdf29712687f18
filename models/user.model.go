package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a single principal type. Roles are independent boolean flags,
// not a hierarchy: a user may hold several flags or none.
type User struct {
	gorm.Model
	ProfileImage string `json:"profile_image" gorm:"default:''"`
	Name         string `json:"name" gorm:"default:''"`
	Email        string `json:"email" gorm:"unique;not null"`
	Password     string `json:"-" gorm:"not null"`
	Bio          string `json:"bio" gorm:"type:text;default:''"`
	IsSuperuser  bool   `json:"is_superuser" gorm:"default:false"`
	IsInstructor bool   `json:"is_instructor" gorm:"default:false"`
	IsStudent    bool   `json:"is_student" gorm:"default:false"`
	LastLogin    *time.Time
}

// IsStaff reports whether the user may see unpublished courses in listings.
func (u *User) IsStaff() bool {
	return u.IsSuperuser
}
