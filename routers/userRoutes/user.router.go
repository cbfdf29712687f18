package userRoutes

import (
	courseControllers "lms/controllers/course"
	userController "lms/controllers/user"
	"lms/middleware"
	userValidators "lms/validators/user"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user", middleware.JWTMiddleware)

	userGroup.Get("/profile", userController.GetProfile)
	userGroup.Put("/profile", userValidators.UpdateProfile(), userController.UpdateProfile)
	userGroup.Get("/dashboard", userController.GetDashboard)
	userGroup.Get("/enrollments", courseControllers.GetUserEnrollments)
	userGroup.Get("/notifications", userController.GetNotifications)
	userGroup.Post("/notification/:id/read", userController.MarkNotificationRead)
}
