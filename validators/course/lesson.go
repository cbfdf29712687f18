package courseValidator

import (
	"strings"

	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title"`
			ContentType string `json:"content_type"`
			TextContent string `json:"text_content"`
			VideoURL    string `json:"video_url"`
			IsPublished bool   `json:"is_published"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}

		if reqData.ContentType == "" {
			reqData.ContentType = courseModels.ContentText
		} else if !courseModels.ValidContentType(reqData.ContentType) {
			errors["content_type"] = "Content type must be one of: text, video_url, video, file!"
		}

		if reqData.ContentType == courseModels.ContentVideoURL {
			if reqData.VideoURL == "" {
				errors["video_url"] = "Video URL is required for video_url content!"
			} else if err := validate.Var(reqData.VideoURL, "url"); err != nil {
				errors["video_url"] = "Video URL is not a valid URL!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

func UpdateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title"`
			ContentType string `json:"content_type"`
			TextContent string `json:"text_content"`
			VideoURL    string `json:"video_url"`
			IsPublished *bool  `json:"is_published"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.ContentType != "" && !courseModels.ValidContentType(reqData.ContentType) {
			errors["content_type"] = "Content type must be one of: text, video_url, video, file!"
		}
		if reqData.VideoURL != "" {
			if err := validate.Var(reqData.VideoURL, "url"); err != nil {
				errors["video_url"] = "Video URL is not a valid URL!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLessonUpdate", reqData)
		return c.Next()
	}
}
