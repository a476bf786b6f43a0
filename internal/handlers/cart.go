package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/velora/internal/middleware"
	"github.com/example/velora/internal/models"
)

// CartHandler manages the authenticated user's live cart.
type CartHandler struct {
	db *gorm.DB
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

// List returns all cart lines with products resolved.
func (h *CartHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var items []models.CartItem
	if err := h.db.Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return err
	}

	var totalQuantity int
	var subtotal float64
	for _, item := range items {
		totalQuantity += item.Quantity
		subtotal += item.Price * float64(item.Quantity)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    items,
		"summary": fiber.Map{
			"total_quantity": totalQuantity,
			"subtotal":       subtotal,
		},
	})
}

type addCartRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// Add puts a product line into the cart, capturing display fields from the
// product. Adding an existing (product, size) pair bumps its quantity.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addCartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}
	if !product.IsPublished {
		return fiber.NewError(fiber.StatusBadRequest, "product is not available")
	}

	var existing models.CartItem
	err = h.db.Where("user_id = ? AND product_id = ? AND size = ?", userID, productID, req.Size).
		First(&existing).Error
	switch err {
	case nil:
		existing.Quantity += req.Quantity
		if err := h.db.Save(&existing).Error; err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": existing})
	case gorm.ErrRecordNotFound:
		item := models.CartItem{
			UserID:    userID,
			ProductID: productID,
			Size:      req.Size,
			Quantity:  req.Quantity,
			Name:      product.Name,
			Price:     product.Price,
			OldPrice:  product.OldPrice,
			Images:    product.Images,
		}
		if err := h.db.Create(&item).Error; err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
	default:
		return err
	}
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity changes the quantity of one cart line.
func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateCartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Quantity <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity must be positive")
	}

	var item models.CartItem
	if err := h.db.First(&item, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "cart item not found")
		}
		return err
	}

	item.Quantity = req.Quantity
	if err := h.db.Save(&item).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

// Remove deletes one cart line.
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.CartItem{}, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
