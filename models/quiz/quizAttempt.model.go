package quiz

import "gorm.io/gorm"

// QuizAttempt records a student's score on a course quiz. Only completed
// attempts count toward the profile average.
type QuizAttempt struct {
	gorm.Model
	UserID      uint    `json:"user_id" gorm:"index;not null"`
	CourseID    uint    `json:"course_id" gorm:"index;not null"`
	Score       float64 `json:"score" gorm:"default:0"`
	IsCompleted bool    `json:"is_completed" gorm:"default:false"`
}
