package discussionController

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	discussionModels "lms/models/discussion"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetCoursePosts lists a course's top-level topics with nested replies.
// Reading the discussion is open to anyone.
func GetCoursePosts(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	db := database.Database.Db

	var total int64
	db.Model(&discussionModels.Post{}).
		Where("course_id = ? AND parent_id IS NULL", courseID).Count(&total)

	var posts []discussionModels.Post
	if err := db.Where("course_id = ? AND parent_id IS NULL", courseID).
		Preload("Author", func(db *gorm.DB) *gorm.DB { return db.Select("id, name") }).
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Replies.Author", func(db *gorm.DB) *gorm.DB { return db.Select("id, name") }).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch posts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Posts fetched!", fiber.Map{
		"posts": posts,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// CreatePost opens a topic or replies to one. Posting requires enrollment in
// the course; superusers may always post. A reply's parent must be a post of
// the same course.
func CreatePost(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ?", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !middleware.CanPostInCourse(user, uint(courseID)) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You must be enrolled in this course to post!", nil)
	}

	reqData, ok := c.Locals("validatedPost").(*struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		ParentID *uint  `json:"parent_id"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var parent *discussionModels.Post
	if reqData.ParentID != nil {
		parent = &discussionModels.Post{}
		if err := database.Database.Db.Where("id = ? AND course_id = ?", *reqData.ParentID, courseID).
			First(parent).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Parent post not found!", nil)
		}
	}

	post := discussionModels.Post{
		CourseID: uint(courseID),
		AuthorID: user.ID,
		ParentID: reqData.ParentID,
		Title:    reqData.Title,
		Content:  reqData.Content,
	}

	if err := database.Database.Db.Create(&post).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create post!", nil)
	}

	// Tell the topic author someone replied
	if parent != nil && parent.AuthorID != user.ID {
		utils.Notify(parent.AuthorID, user.Name+" replied to your post",
			map[string]interface{}{"course_id": post.CourseID, "post_id": parent.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Post created successfully!", post)
}

// UpdatePost lets the author (or a superuser) edit a post.
func UpdatePost(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("course_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	postID, err := c.ParamsInt("post_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid post ID!", nil)
	}

	var post discussionModels.Post
	if err := database.Database.Db.Where("id = ? AND course_id = ?", postID, courseID).
		First(&post).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Post not found!", nil)
	}

	if !middleware.CanModifyPost(user, &post) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only edit your own posts!", nil)
	}

	reqData, ok := c.Locals("validatedPostUpdate").(*struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" && !post.IsReply() {
		post.Title = reqData.Title
	}
	if reqData.Content != "" {
		post.Content = reqData.Content
	}

	if err := database.Database.Db.Save(&post).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update post!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Post updated successfully!", post)
}

// DeletePost lets the author (or a superuser) delete a post. Deleting a topic
// removes its replies as well.
func DeletePost(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("course_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	postID, err := c.ParamsInt("post_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid post ID!", nil)
	}

	var post discussionModels.Post
	if err := database.Database.Db.Where("id = ? AND course_id = ?", postID, courseID).
		First(&post).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Post not found!", nil)
	}

	if !middleware.CanModifyPost(user, &post) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only delete your own posts!", nil)
	}

	tx := database.Database.Db.Begin()
	if err := tx.Unscoped().Where("parent_id = ?", post.ID).Delete(&discussionModels.Post{}).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete post!", nil)
	}
	if err := tx.Unscoped().Delete(&post).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete post!", nil)
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Post deleted successfully!", nil)
}
