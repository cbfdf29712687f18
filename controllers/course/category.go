package controllers

import (
	"errors"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetAllCategories lists every category, open to anyone.
func GetAllCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := database.Database.Db.Order("name asc").Find(&categories).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch categories!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Categories fetched successfully!", categories)
}

// CreateCategory creates a category. Superuser only (route middleware).
func CreateCategory(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCategory").(*struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	category := models.Category{
		Name:        reqData.Name,
		Slug:        utils.Slugify(reqData.Name),
		Description: reqData.Description,
	}

	if err := database.Database.Db.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.ValidationErrorResponse(c, map[string]string{"name": "Category already exists!"})
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create category!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Category created successfully!", category)
}

// UpdateCategory renames a category. The slug follows the new name.
func UpdateCategory(c *fiber.Ctx) error {
	categoryID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid category ID!", nil)
	}

	var category models.Category
	if err := database.Database.Db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Category not found!", nil)
	}

	reqData, ok := c.Locals("validatedCategory").(*struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	category.Name = reqData.Name
	category.Slug = utils.Slugify(reqData.Name)
	if reqData.Description != "" {
		category.Description = reqData.Description
	}

	if err := database.Database.Db.Save(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.ValidationErrorResponse(c, map[string]string{"name": "Category already exists!"})
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update category!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Category updated successfully!", category)
}

// DeleteCategory removes a category and detaches its courses. Courses are
// never deleted with their category.
func DeleteCategory(c *fiber.Ctx) error {
	categoryID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid category ID!", nil)
	}

	var category models.Category
	if err := database.Database.Db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Category not found!", nil)
	}

	tx := database.Database.Db.Begin()
	if err := tx.Model(&courseModels.Course{}).Where("category_id = ?", category.ID).
		Update("category_id", nil).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete category!", nil)
	}
	if err := tx.Unscoped().Delete(&category).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete category!", nil)
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Category deleted successfully!", nil)
}
