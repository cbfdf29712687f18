package course

import (
	"lms/models"

	"gorm.io/gorm"
)

// Course represents a learning course owned by an instructor
type Course struct {
	gorm.Model
	Title        string  `json:"title" gorm:"not null"`
	Slug         string  `json:"slug" gorm:"uniqueIndex;not null"`
	Description  string  `json:"description" gorm:"type:text"`
	CategoryID   *uint   `json:"category_id" gorm:"index"` // nullable, survives category deletion
	InstructorID *uint   `json:"instructor_id" gorm:"index"`
	Price        float64 `json:"price" gorm:"default:0;check:price >= 0"`
	Thumbnail    string  `json:"thumbnail" gorm:"default:''"`
	IsPublished  bool    `json:"is_published" gorm:"default:false"`

	Category   *models.Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Instructor *models.User     `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`
}

// Module represents an ordered section within a course. OrderIndex is never
// caller-supplied; it is assigned max(existing)+1 inside the creating
// transaction, with (course_id, order_index) unique as the backstop.
type Module struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null;uniqueIndex:idx_module_course_order"`
	Title       string `json:"title" gorm:"not null"`
	Slug        string `json:"slug" gorm:"not null"`
	Description string `json:"description" gorm:"type:text;default:''"`
	OrderIndex  int    `json:"order_index" gorm:"not null;uniqueIndex:idx_module_course_order"`
}

// Lesson content types
const (
	ContentText     = "text"
	ContentVideoURL = "video_url"
	ContentVideo    = "video"
	ContentFile     = "file"
)

// Lesson is the smallest unit of course content, owned by a module.
type Lesson struct {
	gorm.Model
	ModuleID    uint   `json:"module_id" gorm:"index;not null;uniqueIndex:idx_lesson_module_order"`
	Title       string `json:"title" gorm:"not null"`
	Slug        string `json:"slug" gorm:"not null"`
	ContentType string `json:"content_type" gorm:"default:'text'"` // text, video_url, video, file
	TextContent string `json:"text_content" gorm:"type:text"`
	VideoURL    string `json:"video_url" gorm:"default:''"`
	VideoFile   string `json:"video_file" gorm:"default:''"`
	FileUpload  string `json:"file_upload" gorm:"default:''"`
	OrderIndex  int    `json:"order_index" gorm:"not null;uniqueIndex:idx_lesson_module_order"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`
}

// ValidContentType reports whether t is one of the supported lesson content types.
func ValidContentType(t string) bool {
	switch t {
	case ContentText, ContentVideoURL, ContentVideo, ContentFile:
		return true
	}
	return false
}
