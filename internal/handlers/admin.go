package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/utils"
)

// AdminHandler manages staff-only reporting endpoints.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalUsers int64
	if err := h.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return err
	}

	var totalOrders int64
	if err := h.db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return err
	}

	var totalProducts int64
	if err := h.db.Model(&models.Product{}).Count(&totalProducts).Error; err != nil {
		return err
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var statusCounts []statusCount
	if err := h.db.Model(&models.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	ordersByStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		ordersByStatus[sc.Status] = sc.Count
	}

	var totalRevenue float64
	if err := h.db.Model(&models.Order{}).
		Where("status != ?", models.OrderCancelled).
		Select("COALESCE(SUM(final_price), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	startOfDay := time.Now().Truncate(24 * time.Hour)
	var todayRevenue float64
	if err := h.db.Model(&models.Order{}).
		Where("status != ? AND created_at >= ?", models.OrderCancelled, startOfDay).
		Select("COALESCE(SUM(final_price), 0)").
		Scan(&todayRevenue).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_users":      totalUsers,
			"total_orders":     totalOrders,
			"total_products":   totalProducts,
			"total_revenue":    totalRevenue,
			"today_revenue":    todayRevenue,
			"orders_by_status": ordersByStatus,
		},
	})
}

// ListAllOrders returns every order with pagination and a closed set of
// filter predicates: status equals, payment method equals, placed date
// range, order number contains.
func (h *AdminHandler) ListAllOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		if !models.ValidStatus(status) {
			return fiber.NewError(fiber.StatusBadRequest, "unknown order status")
		}
		query = query.Where("status = ?", status)
	}
	if method := c.Query("payment_method"); method != "" {
		query = query.Where("payment_method = ?", method)
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid from date")
		}
		query = query.Where("created_at >= ?", t)
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid to date")
		}
		query = query.Where("created_at < ?", t.Add(24*time.Hour))
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("order_number LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("User").
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

// ListUsers returns accounts for the admin user screen.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.User{})

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var users []models.User
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&users).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    users,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}
