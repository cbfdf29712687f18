package authController_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"lms/config"
	"lms/database"
	"lms/models"
	authRoutes "lms/routers/authRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	config.LoadConfig()
	db := database.ConnectTestDb()
	require.NoError(t, db.Exec("DELETE FROM users").Error)

	app := fiber.New()
	authRoutes.SetupAuthRoutes(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	buf, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")

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

func TestSignupAndLogin(t *testing.T) {
	app := newTestApp(t)

	code, payload := postJSON(t, app, "/auth/signup", fiber.Map{
		"name":       "New Student",
		"email":      "new.student@example.com",
		"password":   "password123",
		"is_student": true,
	})
	require.Equal(t, fiber.StatusCreated, code)

	data := payload["data"].(map[string]interface{})
	assert.Equal(t, "new.student@example.com", data["email"])
	assert.Equal(t, true, data["is_student"])
	assert.NotContains(t, data, "password", "password must never be serialized")

	// Password is stored hashed
	var user models.User
	require.NoError(t, database.Database.Db.
		Where("email = ?", "new.student@example.com").First(&user).Error)
	assert.NotEqual(t, "password123", user.Password)

	code, payload = postJSON(t, app, "/auth/login", fiber.Map{
		"email":    "new.student@example.com",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, code)
	loginData := payload["data"].(map[string]interface{})
	assert.NotEmpty(t, loginData["token"])
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	app := newTestApp(t)

	body := fiber.Map{
		"name":       "Dup User",
		"email":      "dup@example.com",
		"password":   "password123",
		"is_student": true,
	}
	code, _ := postJSON(t, app, "/auth/signup", body)
	require.Equal(t, fiber.StatusCreated, code)

	code, _ = postJSON(t, app, "/auth/signup", body)
	assert.Equal(t, fiber.StatusConflict, code)
}

func TestSignupValidation(t *testing.T) {
	app := newTestApp(t)

	// Bad email
	code, _ := postJSON(t, app, "/auth/signup", fiber.Map{
		"name": "Bad Email", "email": "not-an-email", "password": "password123",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)

	// Short password
	code, _ = postJSON(t, app, "/auth/signup", fiber.Map{
		"name": "Short Pass", "email": "short@example.com", "password": "short",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
}

func TestLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)

	code, _ := postJSON(t, app, "/auth/signup", fiber.Map{
		"name": "Login User", "email": "login@example.com", "password": "password123", "is_student": true,
	})
	require.Equal(t, fiber.StatusCreated, code)

	code, _ = postJSON(t, app, "/auth/login", fiber.Map{
		"email": "login@example.com", "password": "wrongpassword",
	})
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = postJSON(t, app, "/auth/login", fiber.Map{
		"email": "nobody@example.com", "password": "password123",
	})
	assert.Equal(t, fiber.StatusUnauthorized, code)
}
