package userValidator

import (
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

func UpdateProfile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Name         string `json:"name"`
			Bio          string `json:"bio"`
			ProfileImage string `json:"profile_image"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		c.Locals("validatedProfile", reqData)
		return c.Next()
	}
}
