package controllers

import (
	"errors"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// loadOwnedCourse fetches the course and enforces the owner-or-superuser rule
// shared by all module and lesson mutations. A nil course means the response
// was already written.
func loadOwnedCourse(c *fiber.Ctx, courseID int) *courseModels.Course {
	user := middleware.CurrentUser(c)
	if user == nil {
		middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		return nil
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ?", courseID).First(&course).Error; err != nil {
		middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		return nil
	}

	if !middleware.CanModifyCourse(user, &course) {
		middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to manage this course!", nil)
		return nil
	}
	return &course
}

// CreateModule appends a module to a course. The order index is never taken
// from the caller: it is max(existing)+1, computed with the course row locked
// so concurrent creations cannot collide. The (course, order) unique index is
// the backstop.
func CreateModule(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	reqData, ok := c.Locals("validatedModule").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := loadOwnedCourse(c, courseID)
	if course == nil {
		return nil
	}

	tx := database.Database.Db.Begin()

	var locked courseModels.Course
	if err := database.ForUpdate(tx).Where("id = ?", course.ID).First(&locked).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var maxOrder int
	tx.Model(&courseModels.Module{}).Where("course_id = ?", course.ID).
		Select("COALESCE(MAX(order_index), 0)").Scan(&maxOrder)

	module := courseModels.Module{
		CourseID:    course.ID,
		Title:       reqData.Title,
		Slug:        utils.Slugify(reqData.Title),
		Description: reqData.Description,
		OrderIndex:  maxOrder + 1,
	}

	if err := tx.Create(&module).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.ValidationErrorResponse(c, map[string]string{"order_index": "Module order collided, please retry!"})
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

// UpdateModule updates a module's title and description.
func UpdateModule(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("course_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	moduleID, err := c.ParamsInt("module_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid module ID!", nil)
	}

	course := loadOwnedCourse(c, courseID)
	if course == nil {
		return nil
	}

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND course_id = ?", moduleID, course.ID).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	reqData, ok := c.Locals("validatedModuleUpdate").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		module.Title = reqData.Title
	}
	if reqData.Description != "" {
		module.Description = reqData.Description
	}

	if err := database.Database.Db.Save(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

// DeleteModule removes a module and its lessons.
func DeleteModule(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("course_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	moduleID, err := c.ParamsInt("module_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid module ID!", nil)
	}

	course := loadOwnedCourse(c, courseID)
	if course == nil {
		return nil
	}

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND course_id = ?", moduleID, course.ID).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	tx := database.Database.Db.Begin()

	var lessonIDs []uint
	tx.Model(&courseModels.Lesson{}).Where("module_id = ?", module.ID).Pluck("id", &lessonIDs)

	if len(lessonIDs) > 0 {
		if err := tx.Unscoped().Where("lesson_id IN ?", lessonIDs).Delete(&courseModels.LessonCompletion{}).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module lessons!", nil)
		}
		if err := tx.Unscoped().Where("module_id = ?", module.ID).Delete(&courseModels.Lesson{}).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module lessons!", nil)
		}
	}

	if err := tx.Unscoped().Delete(&module).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}

// ListModules lists a course's modules with lesson counts. Available to the
// course owner, superusers, and enrolled students; students only count
// published lessons.
func ListModules(c *fiber.Ctx) error {
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

	isOwner := middleware.CanModifyCourse(user, &course)
	if !isOwner {
		if !course.IsPublished {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		if !middleware.IsEnrolled(user.ID, course.ID) {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
		}
	}

	var modules []courseModels.Module
	if err := database.Database.Db.Where("course_id = ?", course.ID).
		Order("order_index asc").Find(&modules).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch modules!", nil)
	}

	type ModuleWithCount struct {
		courseModels.Module
		LessonCount int64 `json:"lesson_count"`
	}

	result := make([]ModuleWithCount, len(modules))
	for i, mod := range modules {
		lessonQuery := database.Database.Db.Model(&courseModels.Lesson{}).Where("module_id = ?", mod.ID)
		if !isOwner {
			lessonQuery = lessonQuery.Where("is_published = ?", true)
		}

		var count int64
		lessonQuery.Count(&count)
		result[i] = ModuleWithCount{Module: mod, LessonCount: count}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", fiber.Map{
		"modules": result,
	})
}
