package course

import (
	"time"

	"lms/models"

	"gorm.io/gorm"
)

// Enrollment statuses
const (
	EnrollStatusEnrolled   = "ENROLLED"
	EnrollStatusInProgress = "IN_PROGRESS"
	EnrollStatusCompleted  = "COMPLETED"
)

// Enrollment tracks a student's registration in a course. The composite
// unique index makes duplicate enrollments impossible regardless of the
// application-level pre-check. Progress fields are a denormalized snapshot;
// the dashboard always recomputes from lessons and completions.
type Enrollment struct {
	gorm.Model
	UserID           uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_enroll_user_course"`
	CourseID         uint       `json:"course_id" gorm:"not null;uniqueIndex:idx_enroll_user_course"`
	Status           string     `json:"status" gorm:"default:'ENROLLED'"`
	Progress         float64    `json:"progress" gorm:"default:0"` // 0-100
	CompletedLessons int        `json:"completed_lessons" gorm:"default:0"`
	TotalLessons     int        `json:"total_lessons" gorm:"default:0"`
	CompletedAt      *time.Time `json:"completed_at"`

	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// Review is a student's rating of a course, at most one per (course, student).
type Review struct {
	gorm.Model
	CourseID uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_review_course_user"`
	UserID   uint   `json:"user_id" gorm:"not null;uniqueIndex:idx_review_course_user"`
	Rating   int    `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment  string `json:"comment" gorm:"type:text;default:''"`

	User *models.User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// LessonCompletion records that a user finished a lesson, one row per
// (user, lesson).
type LessonCompletion struct {
	gorm.Model
	UserID      uint `json:"user_id" gorm:"not null;uniqueIndex:idx_completion_user_lesson"`
	CourseID    uint `json:"course_id" gorm:"index;not null"`
	LessonID    uint `json:"lesson_id" gorm:"not null;uniqueIndex:idx_completion_user_lesson"`
	IsCompleted bool `json:"is_completed" gorm:"default:true"`
}
