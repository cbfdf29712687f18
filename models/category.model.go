package models

import "gorm.io/gorm"

// Category groups courses. Deleting a category detaches its courses
// (category_id set to NULL), it never deletes them.
type Category struct {
	gorm.Model
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text;default:''"`
}
