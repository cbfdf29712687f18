package courseRoutes

import (
	controllers "lms/controllers/course"
	discussionController "lms/controllers/discussion"
	reviewController "lms/controllers/review"
	"lms/middleware"
	validators "lms/validators/course"
	discussionValidators "lms/validators/discussion"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the learner-facing course routes. Listing and
// detail take an optional token so staff and owners see their drafts.
func SetupCourseRoutes(app *fiber.App) {
	app.Get("/categories", controllers.GetAllCategories)

	courseGroup := app.Group("/course")

	// Catalog
	courseGroup.Get("/list", middleware.OptionalJWTMiddleware, controllers.GetAllCourses)
	courseGroup.Get("/:slug", middleware.OptionalJWTMiddleware, controllers.GetCourseDetails)

	// Enrollment and content
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, controllers.EnrollInCourse)
	courseGroup.Get("/:id/modules", middleware.JWTMiddleware, controllers.ListModules)
	courseGroup.Post("/:course_id/lesson/:lesson_id/complete", middleware.JWTMiddleware, controllers.MarkLessonComplete)
	courseGroup.Get("/:course_id/progress", middleware.JWTMiddleware, controllers.GetCourseProgress)

	// Reviews
	courseGroup.Get("/:id/reviews", reviewController.GetCourseReviews)
	courseGroup.Post("/:id/reviews", middleware.JWTMiddleware, validators.CreateReview(), reviewController.CreateReview)
	courseGroup.Put("/:course_id/review/:review_id", middleware.JWTMiddleware, validators.UpdateReview(), reviewController.UpdateReview)
	courseGroup.Delete("/:course_id/review/:review_id", middleware.JWTMiddleware, reviewController.DeleteReview)

	// Discussion
	courseGroup.Get("/:id/posts", discussionController.GetCoursePosts)
	courseGroup.Post("/:id/posts", middleware.JWTMiddleware, discussionValidators.CreatePost(), discussionController.CreatePost)
	courseGroup.Put("/:course_id/post/:post_id", middleware.JWTMiddleware, discussionValidators.UpdatePost(), discussionController.UpdatePost)
	courseGroup.Delete("/:course_id/post/:post_id", middleware.JWTMiddleware, discussionController.DeletePost)
}
