package controllers

import (
	"lms/config"
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	discussionModels "lms/models/discussion"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateCourse creates a draft course owned by the requesting instructor.
func CreateCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	if !middleware.CanCreateCourse(user) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Instructors only.", nil)
	}

	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		CategoryID  *uint   `json:"category_id"`
		Price       float64 `json:"price"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	instructorID := user.ID
	course := courseModels.Course{
		Title:        reqData.Title,
		Description:  reqData.Description,
		CategoryID:   reqData.CategoryID,
		InstructorID: &instructorID,
		Price:        reqData.Price,
		IsPublished:  false,
	}

	tx := database.Database.Db.Begin()
	course.Slug = utils.UniqueSlug(tx, "courses", utils.Slugify(reqData.Title))
	if err := tx.Create(&course).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// UpdateCourse updates a course owned by the requesting instructor.
func UpdateCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ?", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !middleware.CanModifyCourse(user, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to modify this course!", nil)
	}

	reqData, ok := c.Locals("validatedCourseUpdate").(*struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		CategoryID  *uint    `json:"category_id"`
		Price       *float64 `json:"price"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Update only provided fields; the slug stays stable once assigned
	if reqData.Title != "" {
		course.Title = reqData.Title
	}
	if reqData.Description != "" {
		course.Description = reqData.Description
	}
	if reqData.CategoryID != nil {
		course.CategoryID = reqData.CategoryID
	}
	if reqData.Price != nil {
		course.Price = *reqData.Price
	}

	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// DeleteCourse removes a course with all of its modules, lessons, reviews and
// posts. Instructors may only delete their own course while it has no
// enrollments; superusers may always delete.
func DeleteCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ?", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !middleware.CanModifyCourse(user, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to delete this course!", nil)
	}

	tx := database.Database.Db.Begin()

	// The enrollment count must see the course row locked, or an enrollment
	// committed between the check and the delete would be silently cascaded.
	var locked courseModels.Course
	if err := database.ForUpdate(tx).Where("id = ?", course.ID).First(&locked).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !middleware.CanDeleteCourse(tx, user, &locked) {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Course has enrolled students and cannot be deleted!", nil)
	}

	var moduleIDs []uint
	tx.Model(&courseModels.Module{}).Where("course_id = ?", course.ID).Pluck("id", &moduleIDs)

	if len(moduleIDs) > 0 {
		if err := tx.Unscoped().Where("module_id IN ?", moduleIDs).Delete(&courseModels.Lesson{}).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
		}
	}

	for _, model := range []interface{}{
		&courseModels.Module{},
		&courseModels.Review{},
		&courseModels.LessonCompletion{},
		&courseModels.Enrollment{},
		&discussionModels.Post{},
	} {
		if err := tx.Unscoped().Where("course_id = ?", course.ID).Delete(model).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
		}
	}

	if err := tx.Unscoped().Delete(&course).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// PublishCourse publishes or unpublishes a course
func PublishCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	reqData := new(struct {
		Publish bool `json:"publish"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ?", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !middleware.CanModifyCourse(user, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to modify this course!", nil)
	}

	course.IsPublished = reqData.Publish
	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	message := "Course unpublished successfully!"
	if reqData.Publish {
		message = "Course published successfully!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, course)
}

// UploadCourseThumbnail stores a thumbnail under a uuid-based path.
func UploadCourseThumbnail(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ?", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !middleware.CanModifyCourse(user, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to modify this course!", nil)
	}

	file, err := c.FormFile("thumbnail")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Thumbnail file is required!", nil)
	}

	relPath := utils.CourseThumbnailPath(course.Slug, file.Filename)
	if _, err := utils.SaveUploadedFile(file, config.AppConfig.UploadDir, relPath); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store thumbnail!", nil)
	}

	course.Thumbnail = utils.GetFileURL(relPath)
	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Thumbnail uploaded successfully!", course)
}

// GetInstructorCourses lists the requesting instructor's own courses,
// drafts included.
func GetInstructorCourses(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	if !user.IsInstructor && !user.IsSuperuser {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Instructors only.", nil)
	}

	var courses []courseModels.Course
	if err := database.Database.Db.Where("instructor_id = ?", user.ID).
		Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	type CourseWithStats struct {
		courseModels.Course
		EnrollmentCount int64   `json:"enrollment_count"`
		AverageRating   float64 `json:"average_rating"`
	}

	result := make([]CourseWithStats, len(courses))
	for i, crs := range courses {
		var enrollCount int64
		database.Database.Db.Model(&courseModels.Enrollment{}).Where("course_id = ?", crs.ID).Count(&enrollCount)
		result[i] = CourseWithStats{
			Course:          crs,
			EnrollmentCount: enrollCount,
			AverageRating:   averageRating(crs.ID),
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": result,
	})
}
