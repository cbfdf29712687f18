package controllers

import (
	"errors"

	"lms/config"
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateLesson appends a lesson to a module, with the same server-assigned
// ordering rule as modules. video_url content must point at a reachable URL.
func CreateLesson(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("course_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	moduleID, err := c.ParamsInt("module_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid module ID!", nil)
	}

	reqData, ok := c.Locals("validatedLesson").(*struct {
		Title       string `json:"title"`
		ContentType string `json:"content_type"`
		TextContent string `json:"text_content"`
		VideoURL    string `json:"video_url"`
		IsPublished bool   `json:"is_published"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := loadOwnedCourse(c, courseID)
	if course == nil {
		return nil
	}

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND course_id = ?", moduleID, course.ID).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	if reqData.ContentType == courseModels.ContentVideoURL {
		if err := utils.CheckURLReachable(reqData.VideoURL); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"video_url": "Video URL is not reachable!"})
		}
	}

	tx := database.Database.Db.Begin()

	var locked courseModels.Module
	if err := database.ForUpdate(tx).Where("id = ?", module.ID).First(&locked).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	var maxOrder int
	tx.Model(&courseModels.Lesson{}).Where("module_id = ?", module.ID).
		Select("COALESCE(MAX(order_index), 0)").Scan(&maxOrder)

	lesson := courseModels.Lesson{
		ModuleID:    module.ID,
		Title:       reqData.Title,
		Slug:        utils.Slugify(reqData.Title),
		ContentType: reqData.ContentType,
		TextContent: reqData.TextContent,
		VideoURL:    reqData.VideoURL,
		OrderIndex:  maxOrder + 1,
		IsPublished: reqData.IsPublished,
	}

	if err := tx.Create(&lesson).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.ValidationErrorResponse(c, map[string]string{"order_index": "Lesson order collided, please retry!"})
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// UpdateLesson updates lesson fields; ordering is not caller-driven.
func UpdateLesson(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("course_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	lessonID, err := c.ParamsInt("lesson_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
	}

	course := loadOwnedCourse(c, courseID)
	if course == nil {
		return nil
	}

	lesson, errResp := findCourseLesson(c, course.ID, uint(lessonID))
	if errResp != nil {
		return errResp()
	}

	reqData, ok := c.Locals("validatedLessonUpdate").(*struct {
		Title       string `json:"title"`
		ContentType string `json:"content_type"`
		TextContent string `json:"text_content"`
		VideoURL    string `json:"video_url"`
		IsPublished *bool  `json:"is_published"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		lesson.Title = reqData.Title
	}
	if reqData.ContentType != "" {
		lesson.ContentType = reqData.ContentType
	}
	if reqData.TextContent != "" {
		lesson.TextContent = reqData.TextContent
	}
	if reqData.VideoURL != "" {
		if err := utils.CheckURLReachable(reqData.VideoURL); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"video_url": "Video URL is not reachable!"})
		}
		lesson.VideoURL = reqData.VideoURL
	}
	if reqData.IsPublished != nil {
		lesson.IsPublished = *reqData.IsPublished
	}

	if err := database.Database.Db.Save(lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

// DeleteLesson removes a lesson and its completion records.
func DeleteLesson(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("course_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	lessonID, err := c.ParamsInt("lesson_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
	}

	course := loadOwnedCourse(c, courseID)
	if course == nil {
		return nil
	}

	lesson, errResp := findCourseLesson(c, course.ID, uint(lessonID))
	if errResp != nil {
		return errResp()
	}

	tx := database.Database.Db.Begin()
	if err := tx.Unscoped().Where("lesson_id = ?", lesson.ID).Delete(&courseModels.LessonCompletion{}).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
	}
	if err := tx.Unscoped().Delete(lesson).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}

// UploadLessonContent stores an uploaded video or attachment for a lesson of
// type video or file.
func UploadLessonContent(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("course_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	lessonID, err := c.ParamsInt("lesson_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
	}

	course := loadOwnedCourse(c, courseID)
	if course == nil {
		return nil
	}

	lesson, errResp := findCourseLesson(c, course.ID, uint(lessonID))
	if errResp != nil {
		return errResp()
	}

	if lesson.ContentType != courseModels.ContentVideo && lesson.ContentType != courseModels.ContentFile {
		return middleware.ValidationErrorResponse(c, map[string]string{
			"content_type": "Only video and file lessons accept uploads!",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Content file is required!", nil)
	}

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ?", lesson.ModuleID).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	relPath := utils.LessonContentPath(course.Slug, module.Slug, lesson.Slug, file.Filename)
	if _, err := utils.SaveUploadedFile(file, config.AppConfig.UploadDir, relPath); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store content!", nil)
	}

	if lesson.ContentType == courseModels.ContentVideo {
		lesson.VideoFile = utils.GetFileURL(relPath)
	} else {
		lesson.FileUpload = utils.GetFileURL(relPath)
	}

	if err := database.Database.Db.Save(lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content uploaded successfully!", lesson)
}

// findCourseLesson loads a lesson and verifies it belongs to the course via
// its module. The second return value, when non-nil, produces the error
// response.
func findCourseLesson(c *fiber.Ctx, courseID, lessonID uint) (*courseModels.Lesson, func() error) {
	var lesson courseModels.Lesson
	err := database.Database.Db.
		Joins("JOIN modules ON modules.id = lessons.module_id AND modules.deleted_at IS NULL").
		Where("lessons.id = ? AND modules.course_id = ?", lessonID, courseID).
		First(&lesson).Error
	if err != nil {
		return nil, func() error {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
		}
	}
	return &lesson, nil
}

// MarkLessonComplete records that the enrolled user finished a lesson and
// refreshes the enrollment's progress snapshot.
func MarkLessonComplete(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("course_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	lessonID, err := c.ParamsInt("lesson_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_published = ?", courseID, true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not published!", nil)
	}

	if !middleware.IsEnrolled(user.ID, course.ID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	}

	lesson, errResp := findCourseLesson(c, course.ID, uint(lessonID))
	if errResp != nil {
		return errResp()
	}

	// Draft lessons are invisible to students and cannot be completed
	if !lesson.IsPublished {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	var existing courseModels.LessonCompletion
	if err := database.Database.Db.Where("user_id = ? AND lesson_id = ?", user.ID, lesson.ID).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Lesson already marked as completed!", nil)
	}

	completion := courseModels.LessonCompletion{
		UserID:      user.ID,
		CourseID:    course.ID,
		LessonID:    lesson.ID,
		IsCompleted: true,
	}

	if err := database.Database.Db.Create(&completion).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Lesson already marked as completed!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson as completed!", nil)
	}

	RefreshEnrollmentProgress(user.ID, course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked as completed successfully!", completion)
}
