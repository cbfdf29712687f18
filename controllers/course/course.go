package controllers

import (
	"math"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetAllCourses lists the catalog. Anonymous and non-privileged users see
// published courses only; superusers see everything; instructors additionally
// see their own drafts.
func GetAllCourses(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c) // may be nil, route uses optional auth

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Course{})

	switch {
	case user != nil && user.IsSuperuser:
		// staff sees drafts too
	case user != nil && user.IsInstructor:
		db = db.Where("is_published = ? OR instructor_id = ?", true, user.ID)
	default:
		db = db.Where("is_published = ?", true)
	}

	if category := c.Query("category"); category != "" {
		db = db.Joins("JOIN categories ON categories.id = courses.category_id AND categories.deleted_at IS NULL").
			Where("categories.slug = ?", category)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		db = db.Where("courses.title LIKE ? OR courses.description LIKE ?", like, like)
	}

	var total int64
	db.Count(&total)

	var courses []courseModels.Course
	if err := db.Preload("Instructor", func(db *gorm.DB) *gorm.DB {
		return db.Select("id, name")
	}).Preload("Category").
		Offset(offset).Limit(limit).Order("courses.created_at desc").
		Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetCourseDetails returns a course by slug with its modules and lessons.
// Unpublished courses answer 404 to anyone but the owner or a superuser, so
// their existence is not revealed.
func GetCourseDetails(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c) // may be nil

	var course courseModels.Course
	if err := database.Database.Db.
		Preload("Instructor", func(db *gorm.DB) *gorm.DB { return db.Select("id, name, bio") }).
		Preload("Category").
		Where("slug = ?", c.Params("slug")).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !middleware.CanViewCourse(user, &course) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var modules []courseModels.Module
	database.Database.Db.Where("course_id = ?", course.ID).Order("order_index asc").Find(&modules)

	// Owners and superusers see draft lessons as well
	lessonQuery := database.Database.Db
	if !middleware.CanModifyCourse(user, &course) {
		lessonQuery = lessonQuery.Where("is_published = ?", true)
	}

	type ModuleWithLessons struct {
		courseModels.Module
		Lessons []courseModels.Lesson `json:"lessons"`
	}

	result := make([]ModuleWithLessons, len(modules))
	for i, mod := range modules {
		result[i] = ModuleWithLessons{Module: mod}
		lessonQuery.Session(&gorm.Session{}).
			Where("module_id = ?", mod.ID).Order("order_index asc").
			Find(&result[i].Lessons)
	}

	isEnrolled := false
	if user != nil {
		isEnrolled = middleware.IsEnrolled(user.ID, course.ID)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", fiber.Map{
		"course":         course,
		"modules":        result,
		"average_rating": averageRating(course.ID),
		"is_enrolled":    isEnrolled,
	})
}

// averageRating is 0 when the course has no reviews, rounded to one decimal.
func averageRating(courseID uint) float64 {
	var avg *float64
	database.Database.Db.Model(&courseModels.Review{}).
		Where("course_id = ?", courseID).
		Select("AVG(rating)").Scan(&avg)
	if avg == nil {
		return 0
	}
	return math.Round(*avg*10) / 10
}
