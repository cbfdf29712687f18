package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes sets up category management, superuser only.
func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.RequireSuperuser)

	adminGroup.Post("/category", validators.CreateCategory(), controllers.CreateCategory)
	adminGroup.Put("/category/:id", validators.CreateCategory(), controllers.UpdateCategory)
	adminGroup.Delete("/category/:id", controllers.DeleteCategory)
}
