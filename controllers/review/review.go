package reviewController

import (
	"errors"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetCourseReviews returns a course's reviews with author names. Open to all.
func GetCourseReviews(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	db := database.Database.Db

	var total int64
	db.Model(&courseModels.Review{}).Where("course_id = ?", courseID).Count(&total)

	var reviews []courseModels.Review
	if err := db.Where("course_id = ?", courseID).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name")
		}).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch reviews!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reviews fetched!", fiber.Map{
		"reviews": reviews,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// CreateReview lets an enrolled student review a course once. The duplicate
// check runs before the insert; the (course, user) unique index catches any
// race and is reported the same way.
func CreateReview(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	if !user.IsStudent {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only students can review courses!", nil)
	}

	// Collection-level check: must be enrolled before the course is loaded
	if !middleware.IsEnrolled(user.ID, uint(courseID)) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You must be enrolled in this course to review it!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ?", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData, ok := c.Locals("validatedReview").(*struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var existing courseModels.Review
	if err := database.Database.Db.Where("course_id = ? AND user_id = ?", course.ID, user.ID).
		First(&existing).Error; err == nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"rating": "You have already reviewed this course!"})
	}

	review := courseModels.Review{
		CourseID: course.ID,
		UserID:   user.ID,
		Rating:   reqData.Rating,
		Comment:  reqData.Comment,
	}

	if err := database.Database.Db.Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.ValidationErrorResponse(c, map[string]string{"rating": "You have already reviewed this course!"})
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit review!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Review submitted successfully!", review)
}

// UpdateReview lets the author change their rating or comment.
func UpdateReview(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("course_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	reviewID, err := c.ParamsInt("review_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid review ID!", nil)
	}

	var review courseModels.Review
	if err := database.Database.Db.Where("id = ? AND course_id = ?", reviewID, courseID).
		First(&review).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Review not found!", nil)
	}

	if !middleware.CanModifyReview(user, &review) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only modify your own review!", nil)
	}

	reqData, ok := c.Locals("validatedReviewUpdate").(*struct {
		Rating  *int   `json:"rating"`
		Comment string `json:"comment"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Rating != nil {
		review.Rating = *reqData.Rating
	}
	if reqData.Comment != "" {
		review.Comment = reqData.Comment
	}

	if err := database.Database.Db.Save(&review).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update review!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review updated successfully!", review)
}

// DeleteReview lets the author remove their review.
func DeleteReview(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("course_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	reviewID, err := c.ParamsInt("review_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid review ID!", nil)
	}

	var review courseModels.Review
	if err := database.Database.Db.Where("id = ? AND course_id = ?", reviewID, courseID).
		First(&review).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Review not found!", nil)
	}

	if !middleware.CanModifyReview(user, &review) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only delete your own review!", nil)
	}

	if err := database.Database.Db.Unscoped().Delete(&review).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete review!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review deleted successfully!", nil)
}
