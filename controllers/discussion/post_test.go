package discussionController_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	discussionModels "lms/models/discussion"
	courseRoutes "lms/routers/courseRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	config.LoadConfig()
	db := database.ConnectTestDb()
	for _, table := range []string{"posts", "notifications", "enrollments", "courses", "users"} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}

	app := fiber.New()
	courseRoutes.SetupCourseRoutes(app)
	return app
}

func createUser(t *testing.T, email string, superuser bool) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{Name: "Poster", Email: email, Password: string(hash), IsSuperuser: superuser, IsStudent: !superuser}
	require.NoError(t, database.Database.Db.Create(&user).Error)

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Email, superuser, false, !superuser)
	require.NoError(t, err)
	return &user, token
}

func seedCourse(t *testing.T) *courseModels.Course {
	t.Helper()
	course := courseModels.Course{Title: "Discussed Course", Slug: "discussed-course", IsPublished: true}
	require.NoError(t, database.Database.Db.Create(&course).Error)
	return &course
}

func enroll(t *testing.T, userID, courseID uint) {
	t.Helper()
	require.NoError(t, database.Database.Db.Create(&courseModels.Enrollment{
		UserID: userID, CourseID: courseID, Status: courseModels.EnrollStatusEnrolled,
	}).Error)
}

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

func TestCreatePostUnauthenticatedGets401(t *testing.T) {
	app := newTestApp(t)
	course := seedCourse(t)

	// Missing content would fail validation, but anonymous requests are
	// rejected on identity first
	code, _ := request(t, app, fiber.MethodPost, "/course/"+itoa(course.ID)+"/posts", "",
		fiber.Map{"title": "No token"})
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = request(t, app, fiber.MethodPut, "/course/"+itoa(course.ID)+"/post/1", "",
		fiber.Map{"content": "still no token"})
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestCreatePostRequiresEnrollment(t *testing.T) {
	app := newTestApp(t)
	course := seedCourse(t)
	_, token := createUser(t, "lurker@example.com", false)

	code, _ := request(t, app, fiber.MethodPost, "/course/"+itoa(course.ID)+"/posts", token,
		fiber.Map{"title": "Question", "content": "How does this work?"})
	assert.Equal(t, fiber.StatusForbidden, code)
}

func TestSuperuserMayPostWithoutEnrollment(t *testing.T) {
	app := newTestApp(t)
	course := seedCourse(t)
	_, token := createUser(t, "moderator@example.com", true)

	code, _ := request(t, app, fiber.MethodPost, "/course/"+itoa(course.ID)+"/posts", token,
		fiber.Map{"title": "Announcement", "content": "Welcome everyone"})
	assert.Equal(t, fiber.StatusCreated, code)
}

func TestReplyNotifiesTopicAuthor(t *testing.T) {
	app := newTestApp(t)
	course := seedCourse(t)
	author, authorToken := createUser(t, "topic.author@example.com", false)
	replier, replierToken := createUser(t, "replier@example.com", false)
	enroll(t, author.ID, course.ID)
	enroll(t, replier.ID, course.ID)

	code, payload := request(t, app, fiber.MethodPost, "/course/"+itoa(course.ID)+"/posts", authorToken,
		fiber.Map{"title": "Question", "content": "How does this work?"})
	require.Equal(t, fiber.StatusCreated, code)
	topicID := uint(payload["data"].(map[string]interface{})["ID"].(float64))

	code, _ = request(t, app, fiber.MethodPost, "/course/"+itoa(course.ID)+"/posts", replierToken,
		fiber.Map{"content": "Like this.", "parent_id": topicID})
	require.Equal(t, fiber.StatusCreated, code)

	var notifications int64
	database.Database.Db.Model(&models.Notification{}).
		Where("user_id = ?", author.ID).Count(&notifications)
	assert.Equal(t, int64(1), notifications)

	// Replying to your own topic stays silent
	code, _ = request(t, app, fiber.MethodPost, "/course/"+itoa(course.ID)+"/posts", authorToken,
		fiber.Map{"content": "Answering myself.", "parent_id": topicID})
	require.Equal(t, fiber.StatusCreated, code)

	database.Database.Db.Model(&models.Notification{}).
		Where("user_id = ?", author.ID).Count(&notifications)
	assert.Equal(t, int64(1), notifications)
}

func TestReplyParentMustBelongToCourse(t *testing.T) {
	app := newTestApp(t)
	course := seedCourse(t)
	other := courseModels.Course{Title: "Other Course", Slug: "other-course", IsPublished: true}
	require.NoError(t, database.Database.Db.Create(&other).Error)

	user, token := createUser(t, "cross.poster@example.com", false)
	enroll(t, user.ID, course.ID)
	enroll(t, user.ID, other.ID)

	foreign := discussionModels.Post{CourseID: other.ID, AuthorID: user.ID, Title: "Elsewhere", Content: "hi"}
	require.NoError(t, database.Database.Db.Create(&foreign).Error)

	code, _ := request(t, app, fiber.MethodPost, "/course/"+itoa(course.ID)+"/posts", token,
		fiber.Map{"content": "Wrong thread.", "parent_id": foreign.ID})
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestDeleteTopicCascadesReplies(t *testing.T) {
	app := newTestApp(t)
	course := seedCourse(t)
	author, token := createUser(t, "cascade.author@example.com", false)
	replier, _ := createUser(t, "cascade.replier@example.com", false)
	enroll(t, author.ID, course.ID)
	enroll(t, replier.ID, course.ID)

	topic := discussionModels.Post{CourseID: course.ID, AuthorID: author.ID, Title: "Topic", Content: "body"}
	require.NoError(t, database.Database.Db.Create(&topic).Error)
	topicID := topic.ID
	reply := discussionModels.Post{CourseID: course.ID, AuthorID: replier.ID, ParentID: &topicID, Content: "reply"}
	require.NoError(t, database.Database.Db.Create(&reply).Error)

	code, _ := request(t, app, fiber.MethodDelete,
		"/course/"+itoa(course.ID)+"/post/"+itoa(topic.ID), token, nil)
	require.Equal(t, fiber.StatusOK, code)

	var count int64
	database.Database.Db.Model(&discussionModels.Post{}).Where("course_id = ?", course.ID).Count(&count)
	assert.Zero(t, count)
}

func TestPostModificationAuthorOrSuperuser(t *testing.T) {
	app := newTestApp(t)
	course := seedCourse(t)
	author, _ := createUser(t, "owned.author@example.com", false)
	_, otherToken := createUser(t, "intruder@example.com", false)
	_, superToken := createUser(t, "admin@example.com", true)
	enroll(t, author.ID, course.ID)

	topic := discussionModels.Post{CourseID: course.ID, AuthorID: author.ID, Title: "Mine", Content: "body"}
	require.NoError(t, database.Database.Db.Create(&topic).Error)

	path := "/course/" + itoa(course.ID) + "/post/" + itoa(topic.ID)

	code, _ := request(t, app, fiber.MethodPut, path, otherToken, fiber.Map{"content": "hijack"})
	assert.Equal(t, fiber.StatusForbidden, code)

	code, _ = request(t, app, fiber.MethodDelete, path, superToken, nil)
	assert.Equal(t, fiber.StatusOK, code)
}
