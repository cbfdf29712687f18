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

// EnrollInCourse registers the requesting student in a published course. The
// (user, course) unique index guards against duplicate enrollments racing
// past the pre-check.
func EnrollInCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	if !user.IsStudent {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only students can enroll in courses!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_published = ?", courseID, true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not published!", nil)
	}

	if middleware.IsEnrolled(user.ID, course.ID) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You are already enrolled in this course!", nil)
	}

	enrollment := courseModels.Enrollment{
		UserID:   user.ID,
		CourseID: course.ID,
		Status:   courseModels.EnrollStatusEnrolled,
	}

	tx := database.Database.Db.Begin()

	// Lock the course row so enrolling serializes against a concurrent delete
	var locked courseModels.Course
	if err := database.ForUpdate(tx).Where("id = ? AND is_published = ?", course.ID, true).First(&locked).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not published!", nil)
	}

	if err := tx.Create(&enrollment).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "You are already enrolled in this course!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}
	tx.Commit()

	go utils.SendEnrollmentEmail(user.Email, user.Name, course.Title)
	if course.InstructorID != nil {
		utils.Notify(*course.InstructorID, user.Name+" enrolled in "+course.Title,
			map[string]interface{}{"course_id": course.ID, "student_id": user.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in course successfully!", enrollment)
}
