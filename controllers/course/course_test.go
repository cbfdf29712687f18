package controllers_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listedTitles(t *testing.T, payload map[string]interface{}) []string {
	t.Helper()
	raw, ok := dataMap(t, payload)["courses"].([]interface{})
	require.True(t, ok)

	titles := make([]string, 0, len(raw))
	for _, item := range raw {
		course := item.(map[string]interface{})
		titles = append(titles, course["title"].(string))
	}
	return titles
}

func TestCourseListingVisibility(t *testing.T) {
	app := newTestApp(t)
	instructor, ownerToken := createUser(t, "Visibility Instructor", false, true, false)
	_, superToken := createUser(t, "Visibility Admin", true, false, false)
	_, studentToken := createUser(t, "Visibility Student", false, false, true)

	seedCourse(t, instructor.ID, "Published Course", true)
	seedCourse(t, instructor.ID, "Draft Course", false)

	// Anonymous sees published only
	code, payload := request(t, app, fiber.MethodGet, "/course/list", "", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.ElementsMatch(t, []string{"Published Course"}, listedTitles(t, payload))

	// Students see published only
	code, payload = request(t, app, fiber.MethodGet, "/course/list", studentToken, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.ElementsMatch(t, []string{"Published Course"}, listedTitles(t, payload))

	// The owner sees their own draft
	code, payload = request(t, app, fiber.MethodGet, "/course/list", ownerToken, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.ElementsMatch(t, []string{"Published Course", "Draft Course"}, listedTitles(t, payload))

	// Superusers see everything
	code, payload = request(t, app, fiber.MethodGet, "/course/list", superToken, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.ElementsMatch(t, []string{"Published Course", "Draft Course"}, listedTitles(t, payload))
}

func TestDraftCourseDetailHiddenFromOutsiders(t *testing.T) {
	app := newTestApp(t)
	instructor, ownerToken := createUser(t, "Draft Instructor", false, true, false)
	_, otherToken := createUser(t, "Draft Outsider", false, true, false)
	course := seedCourse(t, instructor.ID, "Secret Draft", false)

	// Anonymous and non-owning instructors get a plain 404, not a 403
	code, _ := request(t, app, fiber.MethodGet, "/course/"+course.Slug, "", nil)
	assert.Equal(t, fiber.StatusNotFound, code)

	code, _ = request(t, app, fiber.MethodGet, "/course/"+course.Slug, otherToken, nil)
	assert.Equal(t, fiber.StatusNotFound, code)

	code, payload := request(t, app, fiber.MethodGet, "/course/"+course.Slug, ownerToken, nil)
	require.Equal(t, fiber.StatusOK, code)
	courseData := dataMap(t, payload)["course"].(map[string]interface{})
	assert.Equal(t, "Secret Draft", courseData["title"])
}

func TestCourseDetailHidesDraftLessons(t *testing.T) {
	app := newTestApp(t)
	instructor, ownerToken := createUser(t, "Lesson Visibility Instructor", false, true, false)
	course := seedCourse(t, instructor.ID, "Open Course", true)
	module := seedModule(t, course.ID, "Module One", 1)
	seedLesson(t, module.ID, "Published Lesson", 1, true)
	seedLesson(t, module.ID, "Draft Lesson", 2, false)

	lessonTitles := func(payload map[string]interface{}) []string {
		modules := dataMap(t, payload)["modules"].([]interface{})
		require.Len(t, modules, 1)
		lessons := modules[0].(map[string]interface{})["lessons"].([]interface{})
		titles := make([]string, 0, len(lessons))
		for _, l := range lessons {
			titles = append(titles, l.(map[string]interface{})["title"].(string))
		}
		return titles
	}

	code, payload := request(t, app, fiber.MethodGet, "/course/"+course.Slug, "", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.ElementsMatch(t, []string{"Published Lesson"}, lessonTitles(payload))

	code, payload = request(t, app, fiber.MethodGet, "/course/"+course.Slug, ownerToken, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.ElementsMatch(t, []string{"Published Lesson", "Draft Lesson"}, lessonTitles(payload))
}

func TestCreateCourseRequiresInstructorRole(t *testing.T) {
	app := newTestApp(t)
	_, studentToken := createUser(t, "Wannabe Instructor", false, false, true)

	code, _ := request(t, app, fiber.MethodPost, "/instructor/course", studentToken,
		fiber.Map{"title": "Not Allowed", "description": "should never exist"})
	assert.Equal(t, fiber.StatusForbidden, code)
}

func TestCreateCourseGeneratesUniqueSlug(t *testing.T) {
	app := newTestApp(t)
	_, token := createUser(t, "Slug Instructor", false, true, false)

	code, payload := request(t, app, fiber.MethodPost, "/instructor/course", token,
		fiber.Map{"title": "Go Basics", "description": "learn the language"})
	require.Equal(t, fiber.StatusCreated, code)
	assert.Equal(t, "go-basics", dataMap(t, payload)["slug"])

	code, payload = request(t, app, fiber.MethodPost, "/instructor/course", token,
		fiber.Map{"title": "Go Basics", "description": "learn the language again"})
	require.Equal(t, fiber.StatusCreated, code)
	assert.Equal(t, "go-basics-2", dataMap(t, payload)["slug"])
}
