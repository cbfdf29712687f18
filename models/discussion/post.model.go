package discussion

import (
	"lms/models"

	"gorm.io/gorm"
)

// Post is both a discussion topic and a reply. Top-level posts have a nil
// ParentID; replies reference a parent post of the same course. Single type,
// not two: the parent link is an association, not containment.
type Post struct {
	gorm.Model
	CourseID uint   `json:"course_id" gorm:"index;not null"`
	AuthorID uint   `json:"author_id" gorm:"index;not null"`
	ParentID *uint  `json:"parent_id" gorm:"index"`
	Title    string `json:"title" gorm:"default:''"` // empty on replies
	Content  string `json:"content" gorm:"type:text;not null"`

	Author  *models.User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Replies []Post       `json:"replies,omitempty" gorm:"foreignKey:ParentID"`
}

// IsReply reports whether the post is a reply to another post.
func (p *Post) IsReply() bool {
	return p.ParentID != nil
}
