package discussionValidator

import (
	"strings"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

func CreatePost() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title    string `json:"title"`
			Content  string `json:"content"`
			ParentID *uint  `json:"parent_id"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Content) == "" {
			errors["content"] = "Content is required!"
		}

		// Topics need a title, replies don't
		if reqData.ParentID == nil && strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required for a new topic!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPost", reqData)
		return c.Next()
	}
}

func UpdatePost() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		c.Locals("validatedPostUpdate", reqData)
		return c.Next()
	}
}
