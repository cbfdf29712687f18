package controllers_test

import (
	"testing"

	"lms/database"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeLesson(t *testing.T, app *fiber.App, token string, courseID, lessonID uint) {
	t.Helper()
	code, _ := request(t, app, fiber.MethodPost,
		"/course/"+itoa(courseID)+"/lesson/"+itoa(lessonID)+"/complete", token, nil)
	require.Equal(t, fiber.StatusOK, code)
}

func TestCourseProgressHalfway(t *testing.T) {
	app := newTestApp(t)
	instructor, _ := createUser(t, "Progress Instructor", false, true, false)
	student, token := createUser(t, "Progress Student", false, false, true)

	course := seedCourse(t, instructor.ID, "Progress Course", true)
	module := seedModule(t, course.ID, "Module One", 1)
	lessons := make([]*courseModels.Lesson, 4)
	for i := range lessons {
		lessons[i] = seedLesson(t, module.ID, "Lesson "+itoa(uint(i+1)), i+1, true)
	}
	seedEnrollment(t, student.ID, course.ID)

	completeLesson(t, app, token, course.ID, lessons[0].ID)
	completeLesson(t, app, token, course.ID, lessons[1].ID)

	code, payload := request(t, app, fiber.MethodGet,
		"/course/"+itoa(course.ID)+"/progress", token, nil)
	require.Equal(t, fiber.StatusOK, code)

	data := dataMap(t, payload)
	assert.Equal(t, float64(4), data["total_lessons"])
	assert.Equal(t, float64(2), data["completed_lessons"])
	assert.Equal(t, float64(50), data["progress"])

	// The enrollment snapshot moved to IN_PROGRESS
	var enrollment courseModels.Enrollment
	require.NoError(t, database.Database.Db.
		Where("user_id = ? AND course_id = ?", student.ID, course.ID).
		First(&enrollment).Error)
	assert.Equal(t, courseModels.EnrollStatusInProgress, enrollment.Status)
	assert.Equal(t, float64(50), enrollment.Progress)
}

func TestCourseProgressCompletion(t *testing.T) {
	app := newTestApp(t)
	instructor, _ := createUser(t, "Completion Instructor", false, true, false)
	student, token := createUser(t, "Completion Student", false, false, true)

	course := seedCourse(t, instructor.ID, "Completion Course", true)
	module := seedModule(t, course.ID, "Module One", 1)
	first := seedLesson(t, module.ID, "Lesson One", 1, true)
	second := seedLesson(t, module.ID, "Lesson Two", 2, true)
	seedEnrollment(t, student.ID, course.ID)

	completeLesson(t, app, token, course.ID, first.ID)
	completeLesson(t, app, token, course.ID, second.ID)

	var enrollment courseModels.Enrollment
	require.NoError(t, database.Database.Db.
		Where("user_id = ? AND course_id = ?", student.ID, course.ID).
		First(&enrollment).Error)
	assert.Equal(t, courseModels.EnrollStatusCompleted, enrollment.Status)
	assert.Equal(t, float64(100), enrollment.Progress)
	assert.NotNil(t, enrollment.CompletedAt)
}

func TestDashboardProgressZeroLessonCourse(t *testing.T) {
	app := newTestApp(t)
	instructor, _ := createUser(t, "Empty Course Instructor", false, true, false)
	student, token := createUser(t, "Empty Course Student", false, false, true)

	course := seedCourse(t, instructor.ID, "Empty Course", true)
	seedEnrollment(t, student.ID, course.ID)

	code, payload := request(t, app, fiber.MethodGet, "/user/enrollments", token, nil)
	require.Equal(t, fiber.StatusOK, code)

	enrollments := dataMap(t, payload)["enrollments"].([]interface{})
	require.Len(t, enrollments, 1)

	row := enrollments[0].(map[string]interface{})
	assert.Equal(t, float64(0), row["total_lessons"])
	assert.Equal(t, float64(0), row["completed_lessons"])
	assert.Equal(t, float64(0), row["progress"])
}

func TestDashboardProgressStaysInBounds(t *testing.T) {
	app := newTestApp(t)
	instructor, _ := createUser(t, "Bounds Instructor", false, true, false)
	student, token := createUser(t, "Bounds Student", false, false, true)

	course := seedCourse(t, instructor.ID, "Bounds Course", true)
	module := seedModule(t, course.ID, "Module One", 1)
	lesson := seedLesson(t, module.ID, "Lesson One", 1, true)
	seedEnrollment(t, student.ID, course.ID)
	completeLesson(t, app, token, course.ID, lesson.ID)

	code, payload := request(t, app, fiber.MethodGet, "/user/enrollments", token, nil)
	require.Equal(t, fiber.StatusOK, code)

	for _, item := range dataMap(t, payload)["enrollments"].([]interface{}) {
		progress := item.(map[string]interface{})["progress"].(float64)
		assert.GreaterOrEqual(t, progress, float64(0))
		assert.LessOrEqual(t, progress, float64(100))
	}
}

func TestMarkLessonCompleteRequiresEnrollment(t *testing.T) {
	app := newTestApp(t)
	instructor, _ := createUser(t, "Gate Instructor", false, true, false)
	student, token := createUser(t, "Gate Student", false, false, true)

	course := seedCourse(t, instructor.ID, "Gated Course", true)
	module := seedModule(t, course.ID, "Module One", 1)
	lesson := seedLesson(t, module.ID, "Lesson One", 1, true)

	code, _ := request(t, app, fiber.MethodPost,
		"/course/"+itoa(course.ID)+"/lesson/"+itoa(lesson.ID)+"/complete", token, nil)
	assert.Equal(t, fiber.StatusForbidden, code)

	var count int64
	database.Database.Db.Model(&courseModels.LessonCompletion{}).
		Where("user_id = ?", student.ID).Count(&count)
	assert.Zero(t, count)
}

func TestMarkDraftLessonCompleteNotFound(t *testing.T) {
	app := newTestApp(t)
	instructor, _ := createUser(t, "Draft Lesson Instructor", false, true, false)
	student, token := createUser(t, "Draft Lesson Student", false, false, true)

	course := seedCourse(t, instructor.ID, "Draft Lesson Course", true)
	module := seedModule(t, course.ID, "Module One", 1)
	draft := seedLesson(t, module.ID, "Unreleased Lesson", 1, false)
	seedEnrollment(t, student.ID, course.ID)

	code, _ := request(t, app, fiber.MethodPost,
		"/course/"+itoa(course.ID)+"/lesson/"+itoa(draft.ID)+"/complete", token, nil)
	assert.Equal(t, fiber.StatusNotFound, code)

	var count int64
	database.Database.Db.Model(&courseModels.LessonCompletion{}).
		Where("user_id = ?", student.ID).Count(&count)
	assert.Zero(t, count)
}

func TestMarkLessonCompleteTwiceConflicts(t *testing.T) {
	app := newTestApp(t)
	instructor, _ := createUser(t, "Twice Instructor", false, true, false)
	student, token := createUser(t, "Twice Student", false, false, true)

	course := seedCourse(t, instructor.ID, "Twice Course", true)
	module := seedModule(t, course.ID, "Module One", 1)
	lesson := seedLesson(t, module.ID, "Lesson One", 1, true)
	seedEnrollment(t, student.ID, course.ID)

	completeLesson(t, app, token, course.ID, lesson.ID)

	code, _ := request(t, app, fiber.MethodPost,
		"/course/"+itoa(course.ID)+"/lesson/"+itoa(lesson.ID)+"/complete", token, nil)
	assert.Equal(t, fiber.StatusConflict, code)

	var count int64
	database.Database.Db.Model(&courseModels.LessonCompletion{}).
		Where("user_id = ? AND lesson_id = ?", student.ID, lesson.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}
