package utils

import (
	"log"
	"math"
	"time"

	"lms/database"
	courseModels "lms/models/course"

	"github.com/robfig/cron/v3"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[PROGRESS-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

type progressCount struct {
	UserID   uint
	CourseID uint
	Count    int
}

// syncEnrollmentProgress refreshes the denormalized progress snapshot on every
// enrollment from the lesson and completion tables, in one batched pass.
func syncEnrollmentProgress() {
	db := database.Database.Db

	var totals []progressCount
	if err := db.Raw(`
		SELECT m.course_id AS course_id, COUNT(l.id) AS count
		FROM lessons l
		JOIN modules m ON m.id = l.module_id
		WHERE l.deleted_at IS NULL AND m.deleted_at IS NULL
		GROUP BY m.course_id`).Scan(&totals).Error; err != nil {
		logScheduler("Error counting lessons: " + err.Error())
		return
	}
	totalByCourse := make(map[uint]int, len(totals))
	for _, t := range totals {
		totalByCourse[t.CourseID] = t.Count
	}

	var completions []progressCount
	if err := db.Raw(`
		SELECT lc.user_id AS user_id, lc.course_id AS course_id, COUNT(lc.id) AS count
		FROM lesson_completions lc
		WHERE lc.is_completed = ? AND lc.deleted_at IS NULL
		GROUP BY lc.user_id, lc.course_id`, true).Scan(&completions).Error; err != nil {
		logScheduler("Error counting completions: " + err.Error())
		return
	}
	type userCourse struct{ user, course uint }
	completedBy := make(map[userCourse]int, len(completions))
	for _, cc := range completions {
		completedBy[userCourse{cc.UserID, cc.CourseID}] = cc.Count
	}

	var enrollments []courseModels.Enrollment
	if err := db.Find(&enrollments).Error; err != nil {
		logScheduler("Error fetching enrollments: " + err.Error())
		return
	}

	updated := 0
	for _, e := range enrollments {
		total := totalByCourse[e.CourseID]
		completed := completedBy[userCourse{e.UserID, e.CourseID}]

		progress := 0.0
		if total > 0 {
			progress = math.Round(float64(completed) / float64(total) * 100)
		}

		if e.TotalLessons == total && e.CompletedLessons == completed && e.Progress == progress {
			continue
		}

		e.TotalLessons = total
		e.CompletedLessons = completed
		e.Progress = progress

		if progress >= 100 && total > 0 {
			e.Status = courseModels.EnrollStatusCompleted
			if e.CompletedAt == nil {
				now := time.Now()
				e.CompletedAt = &now
			}
		} else if progress > 0 {
			e.Status = courseModels.EnrollStatusInProgress
		}

		if err := db.Save(&e).Error; err != nil {
			logScheduler("Error saving enrollment: " + err.Error())
			continue
		}
		updated++
	}

	if updated > 0 {
		logScheduler("Progress snapshots refreshed")
	}
}

// InitializeProgressScheduler starts the hourly snapshot refresh job.
func InitializeProgressScheduler() *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc("@hourly", syncEnrollmentProgress); err != nil {
		log.Fatalf("Failed to schedule progress sync: %v", err)
	}

	c.Start()
	logScheduler("Scheduler started")
	return c
}
