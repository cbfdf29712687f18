package userController

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	quizModels "lms/models/quiz"

	"github.com/gofiber/fiber/v2"
)

// GetDashboard returns role-dependent stats. Instructors see their reach and
// rating; students see their enrollment count and quiz average. A user holding
// both flags gets both blocks. All averages coalesce to 0, never null.
func GetDashboard(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db
	stats := fiber.Map{}

	if user.IsInstructor {
		var courseCount int64
		db.Model(&courseModels.Course{}).Where("instructor_id = ?", user.ID).Count(&courseCount)

		var studentCount int64
		db.Raw(`
			SELECT COUNT(DISTINCT e.user_id)
			FROM enrollments e
			JOIN courses c ON c.id = e.course_id
			WHERE c.instructor_id = ? AND e.deleted_at IS NULL AND c.deleted_at IS NULL`,
			user.ID).Scan(&studentCount)

		var avgRating float64
		db.Raw(`
			SELECT COALESCE(AVG(r.rating), 0)
			FROM reviews r
			JOIN courses c ON c.id = r.course_id
			WHERE c.instructor_id = ? AND r.deleted_at IS NULL AND c.deleted_at IS NULL`,
			user.ID).Scan(&avgRating)

		stats["instructor"] = fiber.Map{
			"total_courses":  courseCount,
			"total_students": studentCount,
			"average_rating": avgRating,
		}
	}

	if user.IsStudent {
		var enrolled, completed int64
		db.Model(&courseModels.Enrollment{}).Where("user_id = ?", user.ID).Count(&enrolled)
		db.Model(&courseModels.Enrollment{}).
			Where("user_id = ? AND status = ?", user.ID, courseModels.EnrollStatusCompleted).
			Count(&completed)

		var avgScore float64
		db.Model(&quizModels.QuizAttempt{}).
			Where("user_id = ? AND is_completed = ?", user.ID, true).
			Select("COALESCE(AVG(score), 0)").Scan(&avgScore)

		stats["student"] = fiber.Map{
			"enrolled_courses":  enrolled,
			"completed_courses": completed,
			"average_score":     avgScore,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", stats)
}
