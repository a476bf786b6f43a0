package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/velora/internal/middleware"
	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/services"
)

// CheckoutHandler manages checkout intents: short-lived snapshots of the
// selected cart lines, held in redis until order creation consumes them.
type CheckoutHandler struct {
	db       *gorm.DB
	store    *services.CheckoutStore
	vouchers *VoucherHandler
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(db *gorm.DB, store *services.CheckoutStore) *CheckoutHandler {
	return &CheckoutHandler{db: db, store: store, vouchers: NewVoucherHandler(db)}
}

type createCheckoutRequest struct {
	CartItemIDs []string `json:"cart_item_ids"`
	VoucherCode string   `json:"voucher_code"`
}

// Create snapshots the selected cart lines into a new checkout intent and
// returns its token id. The intent expires on its own after the configured
// TTL.
func (h *CheckoutHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.CartItemIDs) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no cart lines selected")
	}

	ids := make([]uuid.UUID, 0, len(req.CartItemIDs))
	for _, raw := range req.CartItemIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid cart item id")
		}
		ids = append(ids, id)
	}

	var items []models.CartItem
	if err := h.db.Where("user_id = ? AND id IN ?", userID, ids).Find(&items).Error; err != nil {
		return err
	}
	if len(items) != len(ids) {
		return fiber.NewError(fiber.StatusBadRequest, "selection contains unknown cart lines")
	}

	intent := models.CheckoutIntent{UserID: userID}
	for _, item := range items {
		if item.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "cart line has invalid quantity")
		}
		intent.Lines = append(intent.Lines, models.CheckoutLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Size:      item.Size,
			Quantity:  item.Quantity,
			Price:     item.Price,
			OldPrice:  item.OldPrice,
			Images:    item.Images,
		})
		intent.TotalQuantity += item.Quantity
		intent.Subtotal += item.Price * float64(item.Quantity)
	}
	intent.FinalPrice = intent.Subtotal

	if req.VoucherCode != "" {
		voucher, err := h.vouchers.lookup(req.VoucherCode)
		if err != nil {
			return err
		}
		if err := ValidateVoucher(voucher, intent.Subtotal, time.Now()); err != nil {
			return err
		}
		intent.VoucherCode = voucher.Code
		intent.VoucherType = voucher.Type
		intent.VoucherValue = voucher.Value
		intent.Discount = voucher.Discount(intent.Subtotal)
		intent.FinalPrice = intent.Subtotal - intent.Discount
	}

	if err := h.store.Create(c.Context(), &intent); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"token_id":     intent.ID,
			"redirect_url": "/checkout/" + intent.ID.String(),
		},
	})
}

// Get returns an intent for its owner, with referenced products resolved
// for display. Expired intents are already gone and come back 404.
func (h *CheckoutHandler) Get(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	tokenID, err := uuid.Parse(c.Params("tokenId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid token id")
	}

	intent, err := h.store.Get(c.Context(), tokenID)
	if err == services.ErrIntentNotFound {
		return fiber.NewError(fiber.StatusNotFound, "checkout session not found or expired")
	}
	if err != nil {
		return err
	}
	if intent.UserID != userID {
		return fiber.NewError(fiber.StatusForbidden, "checkout session belongs to another user")
	}

	productIDs := make([]uuid.UUID, 0, len(intent.Lines))
	for _, line := range intent.Lines {
		productIDs = append(productIDs, line.ProductID)
	}

	var products []models.Product
	if err := h.db.Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"intent":   intent,
			"products": products,
		},
	})
}
