package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/services"
	"github.com/example/velora/internal/utils"
)

// ProductHandler manages the product catalog.
type ProductHandler struct {
	db    *gorm.DB
	cache *services.ProductCache
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB, cache *services.ProductCache) *ProductHandler {
	return &ProductHandler{db: db, cache: cache}
}

// List returns published products. Filtering is a closed predicate set:
// category equals, price range, name contains, discount only.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{}).Where("is_published = ?", true)

	if category := c.Query("category"); category != "" {
		if id, err := uuid.Parse(category); err == nil {
			query = query.Where("category_id = ?", id)
		} else {
			// Qualify columns: the join makes bare names ambiguous.
			query = query.Select("products.*").
				Joins("JOIN categories ON categories.id = products.category_id").
				Where("categories.slug = ?", category)
		}
	}
	if minPrice, err := strconv.ParseFloat(c.Query("min_price"), 64); err == nil {
		query = query.Where("products.price >= ?", minPrice)
	}
	if maxPrice, err := strconv.ParseFloat(c.Query("max_price"), 64); err == nil {
		query = query.Where("products.price <= ?", maxPrice)
	}
	if q := c.Query("q"); q != "" {
		query = query.Where("LOWER(products.name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if c.Query("discounted") == "true" {
		query = query.Where("products.discount_percent > 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	switch c.Query("sort") {
	case "price_asc":
		query = query.Order("products.price asc")
	case "price_desc":
		query = query.Order("products.price desc")
	case "rating":
		query = query.Order("products.rating_average desc")
	default:
		query = query.Order("products.created_at desc")
	}

	var products []models.Product
	if err := query.Preload("Category").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// Get returns one product by id or slug, consulting the cache first.
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	param := c.Params("id")

	if id, err := uuid.Parse(param); err == nil {
		if cached := h.cache.Get(c.Context(), id); cached != nil {
			return c.JSON(fiber.Map{"success": true, "data": cached})
		}
	}

	var product models.Product
	query := h.db.Preload("Category").Preload("Reviews").Preload("Reviews.User")
	var err error
	if id, parseErr := uuid.Parse(param); parseErr == nil {
		err = query.First(&product, "id = ?", id).Error
	} else {
		err = query.First(&product, "slug = ?", param).Error
	}
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	h.cache.Set(c.Context(), &product)
	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productRequest struct {
	Name            string   `json:"name"`
	Slug            string   `json:"slug"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	OldPrice        float64  `json:"old_price"`
	DiscountPercent int      `json:"discount_percent"`
	CountInStock    *int     `json:"count_in_stock"`
	IsPublished     *bool    `json:"is_published"`
	Images          []string `json:"images"`
	Sizes           []string `json:"sizes"`
	CategoryID      string   `json:"category_id"`
}

// Create adds a product (staff only).
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Price <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "name and positive price are required")
	}
	if req.CountInStock != nil && *req.CountInStock < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "stock must be non-negative")
	}

	product := models.Product{
		Name:            req.Name,
		Slug:            req.Slug,
		Description:     req.Description,
		Price:           req.Price,
		OldPrice:        req.OldPrice,
		DiscountPercent: req.DiscountPercent,
		Images:          pq.StringArray(req.Images),
		Sizes:           pq.StringArray(req.Sizes),
	}
	if product.Slug == "" {
		product.Slug = slugify(req.Name)
	}
	if req.CountInStock != nil {
		product.CountInStock = *req.CountInStock
	}
	if req.IsPublished != nil {
		product.IsPublished = *req.IsPublished
	}
	if req.CategoryID != "" {
		id, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid category id")
		}
		product.CategoryID = &id
	}

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// Update edits a product and drops its cache entry (staff only).
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Slug != "" {
		product.Slug = req.Slug
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Price > 0 {
		product.Price = req.Price
	}
	if req.OldPrice > 0 {
		product.OldPrice = req.OldPrice
	}
	if req.DiscountPercent > 0 {
		product.DiscountPercent = req.DiscountPercent
	}
	if req.CountInStock != nil {
		if *req.CountInStock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "stock must be non-negative")
		}
		product.CountInStock = *req.CountInStock
	}
	if req.IsPublished != nil {
		product.IsPublished = *req.IsPublished
	}
	if len(req.Images) > 0 {
		product.Images = pq.StringArray(req.Images)
	}
	if len(req.Sizes) > 0 {
		product.Sizes = pq.StringArray(req.Sizes)
	}
	if req.CategoryID != "" {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid category id")
		}
		product.CategoryID = &categoryID
	}

	if err := h.db.Save(&product).Error; err != nil {
		return err
	}
	h.cache.Invalidate(c.Context(), product.ID)

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// Delete removes a product and drops its cache entry (staff only).
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
		return err
	}
	h.cache.Invalidate(c.Context(), id)
	return c.SendStatus(fiber.StatusNoContent)
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' {
			return r
		}
		return -1
	}, slug)
}
