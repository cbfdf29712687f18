package middleware

import (
	"lms/database"
	"lms/models"
	courseModels "lms/models/course"
	discussionModels "lms/models/discussion"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Authorization rules are evaluated in two phases: collection-level checks
// (may this principal perform the action class at all) run before any object
// is loaded, object-level checks run against the loaded resource. Role flags
// are always re-read from the database, never trusted from token claims.

// CurrentUser loads the authenticated user for this request. Returns nil when
// the request carries no valid identity.
func CurrentUser(c *fiber.Ctx) *models.User {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil
	}

	var user models.User
	if err := database.Database.Db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil
	}
	return &user
}

// CanCreateCourse is the collection-level check for course creation.
func CanCreateCourse(user *models.User) bool {
	return user != nil && (user.IsSuperuser || user.IsInstructor)
}

// CanModifyCourse allows the owning instructor and superusers to update a
// course or manage its modules and lessons.
func CanModifyCourse(user *models.User, course *courseModels.Course) bool {
	if user == nil {
		return false
	}
	if user.IsSuperuser {
		return true
	}
	return course.InstructorID != nil && *course.InstructorID == user.ID
}

// CanDeleteCourse allows superusers unconditionally; the owning instructor may
// delete only while the course has no enrollments. The count runs on tx, which
// must hold a lock on the course row so an enrollment cannot slip in between
// the check and the delete.
func CanDeleteCourse(tx *gorm.DB, user *models.User, course *courseModels.Course) bool {
	if user == nil {
		return false
	}
	if user.IsSuperuser {
		return true
	}
	if course.InstructorID == nil || *course.InstructorID != user.ID {
		return false
	}

	var enrollCount int64
	tx.Model(&courseModels.Enrollment{}).
		Where("course_id = ?", course.ID).Count(&enrollCount)
	return enrollCount == 0
}

// CanViewCourse gates unpublished courses to their owner and superusers.
func CanViewCourse(user *models.User, course *courseModels.Course) bool {
	if course.IsPublished {
		return true
	}
	return CanModifyCourse(user, course)
}

// IsEnrolled reports whether the user has an enrollment in the course.
func IsEnrolled(userID, courseID uint) bool {
	var count int64
	database.Database.Db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).Count(&count)
	return count > 0
}

// CanPostInCourse is the collection-level check for reviews and discussion
// posts: enrollment in the course, superusers always.
func CanPostInCourse(user *models.User, courseID uint) bool {
	if user == nil {
		return false
	}
	if user.IsSuperuser {
		return true
	}
	return IsEnrolled(user.ID, courseID)
}

// CanModifyReview restricts review update/delete to the author.
func CanModifyReview(user *models.User, review *courseModels.Review) bool {
	return user != nil && review.UserID == user.ID
}

// CanModifyPost restricts post update/delete to the author; superusers may
// moderate any post.
func CanModifyPost(user *models.User, post *discussionModels.Post) bool {
	if user == nil {
		return false
	}
	if user.IsSuperuser {
		return true
	}
	return post.AuthorID == user.ID
}

// RequireSuperuser is a route middleware for admin-only endpoints.
func RequireSuperuser(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	if !user.IsSuperuser {
		return JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}
	return c.Next()
}
