package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/velora/internal/middleware"
	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/services"
	"github.com/example/velora/internal/utils"
)

// ReviewHandler manages product reviews.
type ReviewHandler struct {
	db       *gorm.DB
	notifier *services.Notifier
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(db *gorm.DB, notifier *services.Notifier) *ReviewHandler {
	return &ReviewHandler{db: db, notifier: notifier}
}

type createReviewRequest struct {
	ProductID string `json:"product_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// Create posts a review and folds it into the product rating aggregate.
// One review per user per product.
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return fiber.NewError(fiber.StatusBadRequest, "rating must be between 1 and 5")
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

	var existing models.Review
	if err := h.db.Where("user_id = ? AND product_id = ?", userID, productID).
		First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "product already reviewed")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	review := models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		// Running aggregate: avoids re-scanning all reviews per post.
		newCount := product.RatingCount + 1
		newAverage := (product.RatingAverage*float64(product.RatingCount) + float64(req.Rating)) / float64(newCount)
		return tx.Model(&models.Product{}).Where("id = ?", productID).
			Updates(map[string]interface{}{
				"rating_count":   newCount,
				"rating_average": newAverage,
			}).Error
	})
	if err != nil {
		return err
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err == nil {
		go h.notifier.ReviewPosted(&user, &product, &review)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": review})
}

// ListByProduct returns reviews for one product, newest first.
func (h *ReviewHandler) ListByProduct(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Review{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var reviews []models.Review
	if err := query.Preload("User").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&reviews).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    reviews,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// Delete removes a review (owner or staff) and rolls its rating back out
// of the aggregate.
func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var review models.Review
	if err := h.db.First(&review, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "review not found")
		}
		return err
	}

	if review.UserID != userID {
		var user models.User
		if err := h.db.First(&user, "id = ?", userID).Error; err != nil || !user.IsStaff() {
			return fiber.NewError(fiber.StatusForbidden, "review belongs to another user")
		}
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Review{}, "id = ?", id).Error; err != nil {
			return err
		}

		var product models.Product
		if err := tx.First(&product, "id = ?", review.ProductID).Error; err != nil {
			return err
		}
		newCount := product.RatingCount - 1
		newAverage := 0.0
		if newCount > 0 {
			newAverage = (product.RatingAverage*float64(product.RatingCount) - float64(review.Rating)) / float64(newCount)
		}
		return tx.Model(&models.Product{}).Where("id = ?", review.ProductID).
			Updates(map[string]interface{}{
				"rating_count":   newCount,
				"rating_average": newAverage,
			}).Error
	})
	if err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
