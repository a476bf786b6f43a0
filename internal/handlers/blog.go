package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/velora/internal/middleware"
	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/utils"
)

// BlogHandler manages blog posts.
type BlogHandler struct {
	db *gorm.DB
}

// NewBlogHandler constructs BlogHandler.
func NewBlogHandler(db *gorm.DB) *BlogHandler {
	return &BlogHandler{db: db}
}

// List returns published posts, newest first.
func (h *BlogHandler) List(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.BlogPost{}).Where("is_published = ?", true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var posts []models.BlogPost
	if err := query.Preload("Author").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&posts).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    posts,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// Get returns one post by slug.
func (h *BlogHandler) Get(c *fiber.Ctx) error {
	var post models.BlogPost
	if err := h.db.Preload("Author").
		First(&post, "slug = ?", c.Params("slug")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "post not found")
		}
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": post})
}

type blogRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Content     string `json:"content"`
	CoverImage  string `json:"cover_image"`
	IsPublished *bool  `json:"is_published"`
}

// Create adds a post authored by the current staff user.
func (h *BlogHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req blogRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" || req.Content == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title and content are required")
	}

	post := models.BlogPost{
		Title:      req.Title,
		Slug:       req.Slug,
		Content:    req.Content,
		CoverImage: req.CoverImage,
		AuthorID:   userID,
	}
	if post.Slug == "" {
		post.Slug = slugify(req.Title)
	}
	if req.IsPublished != nil {
		post.IsPublished = *req.IsPublished
	}

	if err := h.db.Create(&post).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": post})
}

// Update edits a post.
func (h *BlogHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var post models.BlogPost
	if err := h.db.First(&post, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "post not found")
		}
		return err
	}

	var req blogRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Slug != "" {
		post.Slug = req.Slug
	}
	if req.Content != "" {
		post.Content = req.Content
	}
	if req.CoverImage != "" {
		post.CoverImage = req.CoverImage
	}
	if req.IsPublished != nil {
		post.IsPublished = *req.IsPublished
	}

	if err := h.db.Save(&post).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": post})
}

// Delete removes a post.
func (h *BlogHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Delete(&models.BlogPost{}, "id = ?", id).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
