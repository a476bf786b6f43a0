package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/velora/internal/models"
)

// CatalogHandler manages categories and banners.
type CatalogHandler struct {
	db *gorm.DB
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

// Categories

func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := h.db.Order("name asc").Find(&categories).Error; err != nil {
		return err
	}

	for i := range categories {
		var count int64
		if err := h.db.Model(&models.Product{}).
			Where("category_id = ? AND is_published = ?", categories[i].ID, true).
			Count(&count).Error; err != nil {
			return err
		}
		categories[i].ProductCount = int(count)
	}

	return c.JSON(fiber.Map{"success": true, "data": categories})
}

func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": category})
}

func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var category models.Category
	if err := c.BodyParser(&category); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if category.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	if category.Slug == "" {
		category.Slug = slugify(category.Name)
	}
	if err := h.db.Create(&category).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": category})
}

func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	var category models.Category
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return err
	}
	if err := c.BodyParser(&category); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	category.ID = id
	if err := h.db.Save(&category).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": category})
}

func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Delete(&models.Category{}, "id = ?", id).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Banners

func (h *CatalogHandler) ListBanners(c *fiber.Ctx) error {
	query := h.db.Model(&models.Banner{})
	if c.Query("all") != "true" {
		query = query.Where("is_active = ?", true)
	}
	var banners []models.Banner
	if err := query.Order("created_at desc").Find(&banners).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": banners})
}

func (h *CatalogHandler) CreateBanner(c *fiber.Ctx) error {
	var banner models.Banner
	if err := c.BodyParser(&banner); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.db.Create(&banner).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": banner})
}

func (h *CatalogHandler) UpdateBanner(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	var banner models.Banner
	if err := h.db.First(&banner, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "banner not found")
		}
		return err
	}
	if err := c.BodyParser(&banner); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	banner.ID = id
	if err := h.db.Save(&banner).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": banner})
}

func (h *CatalogHandler) DeleteBanner(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Delete(&models.Banner{}, "id = ?", id).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
