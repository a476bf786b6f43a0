package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/velora/internal/config"
	"github.com/example/velora/internal/middleware"
	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/services"
	"github.com/example/velora/internal/utils"
)

// OrderHandler manages order creation and the order status lifecycle.
type OrderHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	store    *services.CheckoutStore
	cache    *services.ProductCache
	notifier *services.Notifier
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, cfg *config.Config, store *services.CheckoutStore, cache *services.ProductCache, notifier *services.Notifier) *OrderHandler {
	return &OrderHandler{db: db, cfg: cfg, store: store, cache: cache, notifier: notifier}
}

type createOrderRequest struct {
	TokenID       string `json:"token_id"`
	PaymentMethod string `json:"payment_method"`
	Note          string `json:"note"`
}

// Create consumes a checkout intent and turns it into an order. Stock
// decrements, voucher redemption, order persistence, and cart pruning run
// in one transaction, so a failure at any step leaves nothing mutated.
// Notifications and email go out only after the transaction commits.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	switch req.PaymentMethod {
	case models.PaymentCOD, models.PaymentPayme, models.PaymentClick:
	default:
		return fiber.NewError(fiber.StatusBadRequest, "unknown payment method")
	}

	tokenID, err := uuid.Parse(req.TokenID)
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

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}
	if user.StreetLine == "" {
		return fiber.NewError(fiber.StatusBadRequest, "shipping address is required before checkout")
	}

	paymentStatus := models.PaymentPaid
	if req.PaymentMethod == models.PaymentCOD {
		paymentStatus = models.PaymentUnpaid
	}

	order := models.Order{
		UserID:        userID,
		OrderNumber:   generateOrderNumber(),
		Status:        models.OrderPending,
		StreetLine:    user.StreetLine,
		Apartment:     user.Apartment,
		City:          user.City,
		District:      user.District,
		PostalCode:    user.PostalCode,
		TotalQuantity: intent.TotalQuantity,
		Subtotal:      intent.Subtotal,
		Discount:      intent.Discount,
		ShippingFee:   h.cfg.ShippingFee,
		FinalPrice:    intent.FinalPrice + h.cfg.ShippingFee,
		VoucherCode:   intent.VoucherCode,
		VoucherType:   intent.VoucherType,
		VoucherValue:  intent.VoucherValue,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: paymentStatus,
		Note:          req.Note,
	}
	if paymentStatus == models.PaymentPaid {
		now := time.Now()
		order.PaidAt = &now
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		for _, line := range intent.Lines {
			if err := decrementStock(tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
			order.Items = append(order.Items, models.OrderItem{
				ProductID: line.ProductID,
				Name:      line.Name,
				Size:      line.Size,
				Quantity:  line.Quantity,
				Price:     line.Price,
				OldPrice:  line.OldPrice,
				Images:    line.Images,
			})
		}

		// The voucher is re-validated live, not from the snapshot: time
		// has passed since it was attached to the intent.
		if intent.VoucherCode != "" {
			if err := redeemVoucher(tx, intent.VoucherCode); err != nil {
				return err
			}
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		// Prune only the (product, size) pairs the intent consumed; other
		// cart lines survive.
		for _, line := range intent.Lines {
			if err := tx.Where("user_id = ? AND product_id = ? AND size = ?",
				userID, line.ProductID, line.Size).
				Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	// The intent is consumed; a repeated submit now 404s. Stock changed,
	// so cached product reads are stale too.
	if err := h.store.Delete(c.Context(), intent.ID); err != nil {
		log.Printf("[Order] failed to delete consumed intent %s: %v", intent.ID, err)
	}
	productIDs := make([]uuid.UUID, 0, len(intent.Lines))
	for _, line := range intent.Lines {
		productIDs = append(productIDs, line.ProductID)
	}
	h.cache.Invalidate(c.Context(), productIDs...)

	order.User = &user
	go h.notifier.OrderPlaced(&user, &order)

	itemIDs := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		itemIDs = append(itemIDs, item.ID)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":          true,
		"data":             order,
		"ordered_item_ids": itemIDs,
	})
}

// decrementStock takes quantity units off the product inside tx. The
// WHERE guard makes check-and-decrement a single statement, so two
// concurrent orders can never drive stock negative.
func decrementStock(tx *gorm.DB, productID uuid.UUID, quantity int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND count_in_stock >= ?", productID, quantity).
		UpdateColumn("count_in_stock", gorm.Expr("count_in_stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fiber.NewError(fiber.StatusNotFound, "product no longer exists")
		}
		return fiber.NewError(fiber.StatusBadRequest, "insufficient stock")
	}
	return nil
}

// redeemVoucher re-validates the live voucher and consumes one redemption.
// The quantity guard prevents two concurrent orders from both taking the
// last redemption.
func redeemVoucher(tx *gorm.DB, code string) error {
	var voucher models.Voucher
	if err := tx.Where("code = ?", code).First(&voucher).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusBadRequest, "voucher no longer exists")
		}
		return err
	}
	if time.Now().After(voucher.ExpiresAt) {
		return fiber.NewError(fiber.StatusBadRequest, "voucher expired")
	}
	if !voucher.IsActive || voucher.Quantity <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "voucher inactive")
	}

	res := tx.Model(&models.Voucher{}).
		Where("id = ? AND quantity > 0", voucher.ID).
		UpdateColumn("quantity", gorm.Expr("quantity - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "voucher inactive")
	}

	// Taking the last redemption retires the voucher; earlier redemptions
	// leave it live for the remaining quota.
	return tx.Model(&models.Voucher{}).
		Where("id = ? AND quantity <= 0", voucher.ID).
		Updates(map[string]interface{}{
			"is_active": false,
			"is_used":   true,
		}).Error
}

// List returns the authenticated user's orders.
func (h *OrderHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Where("user_id = ?", userID).Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// Get returns a single order for the authenticated user.
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").
		First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type cancelOrderRequest struct {
	OrderID string `json:"order_id"`
}

// Cancel lets the owning user cancel an order that is still pending.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req cancelOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	id, err := uuid.Parse(req.OrderID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	var order models.Order
	if err := h.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}
	if order.UserID != userID {
		return fiber.NewError(fiber.StatusForbidden, "order belongs to another user")
	}
	if order.Status != models.OrderPending {
		return fiber.NewError(fiber.StatusBadRequest, "only pending orders can be cancelled")
	}

	order.Status = models.OrderCancelled
	if err := h.db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", models.OrderCancelled).Error; err != nil {
		return err
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err == nil {
		go h.notifier.OrderCancelled(&user, &order)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type updateStatusRequest struct {
	NewStatus string `json:"new_status"`
}

// UpdateStatus lets staff advance an order through its lifecycle. Orders
// in a configured terminal status accept no further transitions.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if !models.ValidStatus(req.NewStatus) {
		return fiber.NewError(fiber.StatusBadRequest, "unknown order status")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}
	if h.cfg.IsTerminalStatus(order.Status) {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("order is %s and can no longer change", order.Status))
	}

	updates := map[string]interface{}{"status": req.NewStatus}
	if req.NewStatus == models.OrderDelivered {
		now := time.Now()
		updates["delivered_at"] = now
		// Cash on delivery settles when the courier hands the package over.
		if order.PaymentMethod == models.PaymentCOD && order.PaymentStatus == models.PaymentUnpaid {
			updates["payment_status"] = models.PaymentPaid
			updates["paid_at"] = now
		}
	}

	if err := h.db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
		return err
	}
	order.Status = req.NewStatus

	var user models.User
	if err := h.db.First(&user, "id = ?", order.UserID).Error; err == nil {
		go h.notifier.OrderStatusChanged(&user, &order)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

func generateOrderNumber() string {
	return fmt.Sprintf("#%d", time.Now().UnixNano()%1000000000)
}
