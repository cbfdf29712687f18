package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	courseRoutes "lms/routers/courseRoutes"
	userRoutes "lms/routers/userRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// newTestApp wires the real routers against a fresh in-memory database.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	config.LoadConfig()
	db := database.ConnectTestDb()
	resetTables(t, db)

	app := fiber.New()
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupInstructorRoutes(app)
	courseRoutes.SetupAdminRoutes(app)
	userRoutes.SetupUserRoutes(app)
	return app
}

func resetTables(t *testing.T, db *gorm.DB) {
	t.Helper()
	tables := []string{
		"lesson_completions", "reviews", "enrollments", "posts",
		"notifications", "quiz_attempts", "lessons", "modules",
		"courses", "categories", "users",
	}
	for _, table := range tables {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}
}

func createUser(t *testing.T, name string, superuser, instructor, student bool) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Name:         name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Password:     string(hash),
		IsSuperuser:  superuser,
		IsInstructor: instructor,
		IsStudent:    student,
	}
	require.NoError(t, database.Database.Db.Create(&user).Error)

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Email, superuser, instructor, student)
	require.NoError(t, err)
	return &user, token
}

func seedCourse(t *testing.T, instructorID uint, title string, published bool) *courseModels.Course {
	t.Helper()
	course := courseModels.Course{
		Title:        title,
		Slug:         strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		InstructorID: &instructorID,
		IsPublished:  published,
	}
	require.NoError(t, database.Database.Db.Create(&course).Error)
	return &course
}

func seedModule(t *testing.T, courseID uint, title string, order int) *courseModels.Module {
	t.Helper()
	module := courseModels.Module{
		CourseID:   courseID,
		Title:      title,
		Slug:       strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		OrderIndex: order,
	}
	require.NoError(t, database.Database.Db.Create(&module).Error)
	return &module
}

func seedLesson(t *testing.T, moduleID uint, title string, order int, published bool) *courseModels.Lesson {
	t.Helper()
	lesson := courseModels.Lesson{
		ModuleID:    moduleID,
		Title:       title,
		Slug:        strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		ContentType: courseModels.ContentText,
		TextContent: "lorem ipsum",
		OrderIndex:  order,
		IsPublished: published,
	}
	require.NoError(t, database.Database.Db.Create(&lesson).Error)
	return &lesson
}

func seedEnrollment(t *testing.T, userID, courseID uint) *courseModels.Enrollment {
	t.Helper()
	enrollment := courseModels.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Status:   courseModels.EnrollStatusEnrolled,
	}
	require.NoError(t, database.Database.Db.Create(&enrollment).Error)
	return &enrollment
}

// request performs a JSON request against the app and decodes the response
// envelope.
func request(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	payload := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp.StatusCode, payload
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func dataMap(t *testing.T, payload map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := payload["data"].(map[string]interface{})
	require.True(t, ok, "response data is not an object: %v", payload)
	return data
}
