package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupInstructorRoutes sets up course authoring. Every route requires a
// token; ownership is checked per object in the controllers.
func SetupInstructorRoutes(app *fiber.App) {
	instructorGroup := app.Group("/instructor/course", middleware.JWTMiddleware)

	instructorGroup.Get("/list", controllers.GetInstructorCourses)
	instructorGroup.Post("/", validators.CreateCourse(), controllers.CreateCourse)
	instructorGroup.Put("/:id", validators.UpdateCourse(), controllers.UpdateCourse)
	instructorGroup.Delete("/:id", controllers.DeleteCourse)
	instructorGroup.Post("/:id/publish", controllers.PublishCourse)
	instructorGroup.Post("/:id/thumbnail", controllers.UploadCourseThumbnail)

	// Modules
	instructorGroup.Post("/:id/module", validators.CreateModule(), controllers.CreateModule)
	instructorGroup.Put("/:course_id/module/:module_id", validators.UpdateModule(), controllers.UpdateModule)
	instructorGroup.Delete("/:course_id/module/:module_id", controllers.DeleteModule)

	// Lessons
	instructorGroup.Post("/:course_id/module/:module_id/lesson", validators.CreateLesson(), controllers.CreateLesson)
	instructorGroup.Put("/:course_id/lesson/:lesson_id", validators.UpdateLesson(), controllers.UpdateLesson)
	instructorGroup.Delete("/:course_id/lesson/:lesson_id", controllers.DeleteLesson)
	instructorGroup.Post("/:course_id/lesson/:lesson_id/upload", controllers.UploadLessonContent)
}
