package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/utils"
)

// VoucherHandler manages discount codes: a public preview endpoint and
// staff CRUD.
type VoucherHandler struct {
	db *gorm.DB
}

// NewVoucherHandler constructs VoucherHandler.
func NewVoucherHandler(db *gorm.DB) *VoucherHandler {
	return &VoucherHandler{db: db}
}

type applyVoucherRequest struct {
	Code       string  `json:"code"`
	TotalPrice float64 `json:"total_price"`
}

// Apply previews the discount a voucher would grant on the given total.
// It never mutates the voucher; redemption happens only inside order
// creation.
func (h *VoucherHandler) Apply(c *fiber.Ctx) error {
	var req applyVoucherRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	voucher, err := h.lookup(req.Code)
	if err != nil {
		return err
	}
	if err := ValidateVoucher(voucher, req.TotalPrice, time.Now()); err != nil {
		return err
	}

	discount := voucher.Discount(req.TotalPrice)
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"code":        voucher.Code,
			"type":        voucher.Type,
			"value":       voucher.Value,
			"discount":    discount,
			"final_price": req.TotalPrice - discount,
		},
	})
}

// ValidateVoucher applies the redemption eligibility rules. The returned
// errors carry the specific violated rule.
func ValidateVoucher(voucher *models.Voucher, totalPrice float64, now time.Time) error {
	if !voucher.IsActive || voucher.Quantity <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "voucher inactive")
	}
	if voucher.IsUsed {
		return fiber.NewError(fiber.StatusBadRequest, "voucher already used")
	}
	if now.After(voucher.ExpiresAt) {
		return fiber.NewError(fiber.StatusBadRequest, "voucher expired")
	}
	if totalPrice < voucher.MinOrderValue {
		return fiber.NewError(fiber.StatusBadRequest, "order total below voucher minimum")
	}
	return nil
}

type voucherRequest struct {
	Code          string    `json:"code"`
	Type          string    `json:"type"`
	Value         float64   `json:"value"`
	MinOrderValue float64   `json:"min_order_value"`
	ExpiresAt     time.Time `json:"expires_at"`
	IsActive      *bool     `json:"is_active"`
	Quantity      *int      `json:"quantity"`
}

// Create adds a new voucher (staff only).
func (h *VoucherHandler) Create(c *fiber.Ctx) error {
	var req voucherRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	code := normalizeCode(req.Code)
	if code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "code is required")
	}
	if req.Type != models.VoucherPercent && req.Type != models.VoucherFixed {
		return fiber.NewError(fiber.StatusBadRequest, "type must be percent or fixed")
	}
	if req.Value <= 0 || (req.Type == models.VoucherPercent && req.Value > 100) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid discount value")
	}
	quantity := 0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity must be non-negative")
	}

	voucher := models.Voucher{
		Code:          code,
		Type:          req.Type,
		Value:         req.Value,
		MinOrderValue: req.MinOrderValue,
		ExpiresAt:     req.ExpiresAt,
		IsActive:      quantity > 0,
		Quantity:      quantity,
	}
	if req.IsActive != nil {
		voucher.IsActive = *req.IsActive && quantity > 0
	}

	if err := h.db.Create(&voucher).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": voucher})
}

// List returns vouchers with pagination (staff only).
func (h *VoucherHandler) List(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	var total int64
	if err := h.db.Model(&models.Voucher{}).Count(&total).Error; err != nil {
		return err
	}

	var vouchers []models.Voucher
	if err := h.db.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&vouchers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    vouchers,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// Update edits a voucher (staff only).
func (h *VoucherHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var voucher models.Voucher
	if err := h.db.First(&voucher, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "voucher not found")
		}
		return err
	}

	var req voucherRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Code != "" {
		voucher.Code = normalizeCode(req.Code)
	}
	if req.Type != "" {
		if req.Type != models.VoucherPercent && req.Type != models.VoucherFixed {
			return fiber.NewError(fiber.StatusBadRequest, "type must be percent or fixed")
		}
		voucher.Type = req.Type
	}
	if req.Value > 0 {
		voucher.Value = req.Value
	}
	if req.MinOrderValue > 0 {
		voucher.MinOrderValue = req.MinOrderValue
	}
	if !req.ExpiresAt.IsZero() {
		voucher.ExpiresAt = req.ExpiresAt
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity must be non-negative")
		}
		voucher.Quantity = *req.Quantity
		// A refill revives an exhausted voucher.
		if voucher.Quantity > 0 {
			voucher.IsActive = true
			voucher.IsUsed = false
		}
	}
	if req.IsActive != nil {
		voucher.IsActive = *req.IsActive
	}
	// A voucher with no redemptions left can never be active.
	if voucher.Quantity <= 0 {
		voucher.IsActive = false
	}

	if err := h.db.Save(&voucher).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": voucher})
}

// Delete removes a voucher (staff only).
func (h *VoucherHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Delete(&models.Voucher{}, "id = ?", id).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *VoucherHandler) lookup(code string) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := h.db.Where("code = ?", normalizeCode(code)).First(&voucher).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "voucher not found")
		}
		return nil, err
	}
	return &voucher, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
