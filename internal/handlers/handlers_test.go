package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/velora/internal/config"
	"github.com/example/velora/internal/database"
	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/realtime"
	"github.com/example/velora/internal/routes"
	"github.com/example/velora/internal/utils"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	rdb *miniredis.Miniredis
	cfg *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// In-memory sqlite gives every pool connection its own database, so
	// pin the pool to one connection.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		TokenExpires:     time.Hour,
		CheckoutTTL:      2 * time.Hour,
		CacheTTL:         10 * time.Minute,
		TerminalStatuses: []string{models.OrderCancelled},
	}

	app := fiber.New(fiber.Config{AppName: "velora-test"})
	routes.Register(app, db, rdb, realtime.NewHub(), cfg)

	return &testEnv{app: app, db: db, rdb: mr, cfg: cfg}
}

func (e *testEnv) createUser(t *testing.T, email, role, streetLine string) (models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword("Passw0rd!")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		StreetLine:   streetLine,
		City:         "Tashkent",
	}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	token, err := utils.GenerateToken(e.cfg.JWTSecret, user.ID, e.cfg.TokenExpires)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return user, token
}

func (e *testEnv) createProduct(t *testing.T, name string, price float64, stock int) models.Product {
	t.Helper()

	slug := strings.ReplaceAll(strings.ToLower(name), " ", "-")
	product := models.Product{
		Name:         name,
		Slug:         slug + "-" + uuid.NewString()[:8],
		Price:        price,
		CountInStock: stock,
		IsPublished:  true,
		Sizes:        []string{"S", "M", "L"},
	}
	if err := e.db.Create(&product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func (e *testEnv) addCartItem(t *testing.T, user models.User, product models.Product, size string, qty int) models.CartItem {
	t.Helper()

	item := models.CartItem{
		UserID:    user.ID,
		ProductID: product.ID,
		Size:      size,
		Quantity:  qty,
		Name:      product.Name,
		Price:     product.Price,
		OldPrice:  product.OldPrice,
		Images:    product.Images,
	}
	if err := e.db.Create(&item).Error; err != nil {
		t.Fatalf("create cart item: %v", err)
	}
	return item
}

func (e *testEnv) createVoucher(t *testing.T, code, vtype string, value, minOrder float64, qty int) models.Voucher {
	t.Helper()

	voucher := models.Voucher{
		Code:          code,
		Type:          vtype,
		Value:         value,
		MinOrderValue: minOrder,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
		IsActive:      qty > 0,
		Quantity:      qty,
	}
	if err := e.db.Create(&voucher).Error; err != nil {
		t.Fatalf("create voucher: %v", err)
	}
	return voucher
}

// checkoutToken runs POST /api/checkout for the given cart lines and
// returns the intent token id.
func (e *testEnv) checkoutToken(t *testing.T, token string, items []models.CartItem, voucherCode string) string {
	t.Helper()

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID.String()
	}
	status, body := e.request(t, "POST", "/api/checkout", token, fiber.Map{
		"cart_item_ids": ids,
		"voucher_code":  voucherCode,
	})
	if status != http.StatusCreated {
		t.Fatalf("checkout create: want 201, got %d: %s", status, body)
	}

	var resp struct {
		Data struct {
			TokenID string `json:"token_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode checkout response: %v", err)
	}
	return resp.Data.TokenID
}

// request performs a JSON request against the test app and returns the
// status code and raw body.
func (e *testEnv) request(t *testing.T, method, path, token string, payload interface{}) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, raw
}
