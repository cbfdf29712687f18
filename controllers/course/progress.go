package controllers

import (
	"math"
	"time"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

// EnrollmentProgress is one dashboard row: an enrollment with its recomputed
// lesson counts and percentage.
type EnrollmentProgress struct {
	courseModels.Enrollment
	TotalLessons     int     `json:"total_lessons"`
	CompletedLessons int     `json:"completed_lessons"`
	Progress         float64 `json:"progress"`
}

type progressRow struct {
	CourseID         uint
	TotalLessons     int
	CompletedLessons int
}

// progressPercent coalesces to 0 when a course has no lessons.
func progressPercent(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(completed) / float64(total) * 100)
}

// loadProgressRows computes total and completed lesson counts for every
// course the user is enrolled in, in one batched query: two grouped
// subqueries joined back to the enrollments by course id, both coalesced to
// zero. Never one query per course.
func loadProgressRows(userID uint) (map[uint]progressRow, error) {
	var rows []progressRow
	err := database.Database.Db.Raw(`
		SELECT e.course_id AS course_id,
		       COALESCE(t.total, 0) AS total_lessons,
		       COALESCE(cc.completed, 0) AS completed_lessons
		FROM enrollments e
		LEFT JOIN (
			SELECT m.course_id, COUNT(l.id) AS total
			FROM lessons l
			JOIN modules m ON m.id = l.module_id
			WHERE l.deleted_at IS NULL AND m.deleted_at IS NULL
			GROUP BY m.course_id
		) t ON t.course_id = e.course_id
		LEFT JOIN (
			SELECT lc.course_id, COUNT(lc.id) AS completed
			FROM lesson_completions lc
			WHERE lc.user_id = ? AND lc.is_completed = ? AND lc.deleted_at IS NULL
			GROUP BY lc.course_id
		) cc ON cc.course_id = e.course_id
		WHERE e.user_id = ? AND e.deleted_at IS NULL`,
		userID, true, userID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byCourse := make(map[uint]progressRow, len(rows))
	for _, r := range rows {
		byCourse[r.CourseID] = r
	}
	return byCourse, nil
}

// GetUserEnrollments is the student dashboard: every enrollment with course
// details and fresh progress counts.
func GetUserEnrollments(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	rows, err := loadProgressRows(user.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	var enrollments []courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ?", user.ID).
		Preload("Course").Order("created_at desc").
		Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	result := make([]EnrollmentProgress, len(enrollments))
	for i, e := range enrollments {
		row := rows[e.CourseID]
		result[i] = EnrollmentProgress{
			Enrollment:       e,
			TotalLessons:     row.TotalLessons,
			CompletedLessons: row.CompletedLessons,
			Progress:         progressPercent(row.CompletedLessons, row.TotalLessons),
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": result,
	})
}

// GetCourseProgress reports the requesting user's progress in one course,
// with the ids of completed lessons.
func GetCourseProgress(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("course_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ?", user.ID, courseID).
		Preload("Course").First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	}

	total, completed := countLessonProgress(user.ID, uint(courseID))

	var completedIDs []uint
	database.Database.Db.Model(&courseModels.LessonCompletion{}).
		Where("user_id = ? AND course_id = ? AND is_completed = ?", user.ID, courseID, true).
		Pluck("lesson_id", &completedIDs)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"enrollment":        enrollment,
		"total_lessons":     total,
		"completed_lessons": completed,
		"progress":          progressPercent(completed, total),
		"completed_ids":     completedIDs,
	})
}

// countLessonProgress counts a course's lessons and the user's completions.
func countLessonProgress(userID, courseID uint) (total, completed int) {
	var totalCount, completedCount int64

	database.Database.Db.Model(&courseModels.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id AND modules.deleted_at IS NULL").
		Where("modules.course_id = ?", courseID).
		Count(&totalCount)

	database.Database.Db.Model(&courseModels.LessonCompletion{}).
		Where("user_id = ? AND course_id = ? AND is_completed = ?", userID, courseID, true).
		Count(&completedCount)

	return int(totalCount), int(completedCount)
}

// RefreshEnrollmentProgress recomputes the denormalized snapshot on one
// enrollment after a completion changes.
func RefreshEnrollmentProgress(userID, courseID uint) {
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error; err != nil {
		return
	}

	total, completed := countLessonProgress(userID, courseID)

	enrollment.TotalLessons = total
	enrollment.CompletedLessons = completed
	enrollment.Progress = progressPercent(completed, total)

	if enrollment.Progress >= 100 && total > 0 {
		enrollment.Status = courseModels.EnrollStatusCompleted
		if enrollment.CompletedAt == nil {
			now := time.Now()
			enrollment.CompletedAt = &now
		}
	} else if enrollment.Progress > 0 {
		enrollment.Status = courseModels.EnrollStatusInProgress
	}

	database.Database.Db.Save(&enrollment)
}
