package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/example/velora/internal/models"
)

func TestProductListFilters(t *testing.T) {
	env := newTestEnv(t)

	cheap := env.createProduct(t, "Basic Tee", 20, 10)
	mid := env.createProduct(t, "Linen Shirt", 100, 10)
	env.db.Model(&mid).Update("discount_percent", 15)
	pricey := env.createProduct(t, "Wool Coat", 400, 10)
	hidden := env.createProduct(t, "Unreleased Drop", 50, 10)
	env.db.Model(&hidden).Update("is_published", false)

	listIDs := func(path string) []string {
		t.Helper()
		status, body := env.request(t, "GET", path, "", nil)
		if status != http.StatusOK {
			t.Fatalf("GET %s: want 200, got %d: %s", path, status, body)
		}
		var resp struct {
			Data []models.Product `json:"data"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		ids := make([]string, len(resp.Data))
		for i, p := range resp.Data {
			ids[i] = p.ID.String()
		}
		return ids
	}

	contains := func(ids []string, want string) bool {
		for _, id := range ids {
			if id == want {
				return true
			}
		}
		return false
	}

	all := listIDs("/api/products")
	if len(all) != 3 {
		t.Errorf("published products = %d, want 3", len(all))
	}
	if contains(all, hidden.ID.String()) {
		t.Errorf("unpublished product leaked into listing")
	}

	ranged := listIDs("/api/products?min_price=50&max_price=200")
	if len(ranged) != 1 || !contains(ranged, mid.ID.String()) {
		t.Errorf("price range filter = %v, want only the mid product", ranged)
	}

	discounted := listIDs("/api/products?discounted=true")
	if len(discounted) != 1 || !contains(discounted, mid.ID.String()) {
		t.Errorf("discounted filter = %v, want only the discounted product", discounted)
	}

	// Name matching ignores case.
	named := listIDs("/api/products?q=LINEN")
	if len(named) != 1 || !contains(named, mid.ID.String()) {
		t.Errorf("name filter = %v, want only the shirt", named)
	}

	sorted := listIDs("/api/products?sort=price_asc")
	if len(sorted) != 3 || sorted[0] != cheap.ID.String() || sorted[2] != pricey.ID.String() {
		t.Errorf("price_asc order = %v, want cheapest first", sorted)
	}
}

func TestProductListByCategorySlug(t *testing.T) {
	env := newTestEnv(t)

	category := models.Category{Name: "Outerwear", Slug: "outerwear"}
	if err := env.db.Create(&category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	coat := env.createProduct(t, "Wool Coat", 400, 10)
	env.db.Model(&coat).Update("category_id", category.ID)
	env.createProduct(t, "Basic Tee", 20, 10)

	for _, path := range []string{
		"/api/products?category=outerwear",
		"/api/products?category=outerwear&sort=price_asc",
	} {
		status, body := env.request(t, "GET", path, "", nil)
		if status != http.StatusOK {
			t.Fatalf("GET %s: want 200, got %d: %s", path, status, body)
		}
		var resp struct {
			Data []models.Product `json:"data"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(resp.Data) != 1 || resp.Data[0].ID != coat.ID {
			t.Errorf("GET %s returned %d products, want just the coat", path, len(resp.Data))
		}
	}
}

func TestProductGetBySlugAndCache(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Linen Shirt", 100, 10)

	status, body := env.request(t, "GET", "/api/products/"+product.Slug, "", nil)
	if status != http.StatusOK {
		t.Fatalf("get by slug: want 200, got %d: %s", status, body)
	}

	// The read populated the cache; an id read now serves the cached copy
	// even after the row changes underneath.
	status, _ = env.request(t, "GET", "/api/products/"+product.ID.String(), "", nil)
	if status != http.StatusOK {
		t.Fatalf("get by id: want 200, got %d", status)
	}
	env.db.Model(&product).Update("price", 999)

	status, body = env.request(t, "GET", "/api/products/"+product.ID.String(), "", nil)
	if status != http.StatusOK {
		t.Fatalf("cached get: want 200, got %d", status)
	}
	var resp struct {
		Data models.Product `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Price != 100 {
		t.Errorf("price = %v, want cached 100", resp.Data.Price)
	}

	status, _ = env.request(t, "GET", "/api/products/no-such-slug", "", nil)
	if status != http.StatusNotFound {
		t.Errorf("unknown slug: want 404, got %d", status)
	}
}

func TestProductCRUDInvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	_, staffToken := env.createUser(t, "staff@example.com", models.RoleStaff, "1 Office")

	status, body := env.request(t, "POST", "/api/products", staffToken, fiber.Map{
		"name":           "Denim Jacket",
		"price":          180,
		"count_in_stock": 7,
		"is_published":   true,
		"sizes":          []string{"M", "L"},
	})
	if status != http.StatusCreated {
		t.Fatalf("create: want 201, got %d: %s", status, body)
	}
	var created struct {
		Data models.Product `json:"data"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Data.Slug != "denim-jacket" {
		t.Errorf("slug = %q, want generated denim-jacket", created.Data.Slug)
	}

	id := created.Data.ID.String()

	// Warm the cache, then update; the next read must see the new price.
	env.request(t, "GET", "/api/products/"+id, "", nil)
	status, _ = env.request(t, "PUT", "/api/products/"+id, staffToken, fiber.Map{
		"price": 150,
	})
	if status != http.StatusOK {
		t.Fatalf("update: want 200, got %d", status)
	}
	status, body = env.request(t, "GET", "/api/products/"+id, "", nil)
	if status != http.StatusOK {
		t.Fatalf("get after update: want 200, got %d", status)
	}
	var got struct {
		Data models.Product `json:"data"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Data.Price != 150 {
		t.Errorf("price after update = %v, want 150", got.Data.Price)
	}

	status, _ = env.request(t, "DELETE", "/api/products/"+id, staffToken, nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete: want 204, got %d", status)
	}
	status, _ = env.request(t, "GET", "/api/products/"+id, "", nil)
	if status != http.StatusNotFound {
		t.Errorf("get deleted: want 404, got %d", status)
	}
}

func TestProductCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	_, staffToken := env.createUser(t, "staff@example.com", models.RoleStaff, "1 Office")

	status, _ := env.request(t, "POST", "/api/products", staffToken, fiber.Map{
		"name": "Freebie", "price": 0,
	})
	if status != http.StatusBadRequest {
		t.Errorf("zero price: want 400, got %d", status)
	}

	negative := -1
	status, _ = env.request(t, "POST", "/api/products", staffToken, fiber.Map{
		"name": "Ghost Stock", "price": 10, "count_in_stock": negative,
	})
	if status != http.StatusBadRequest {
		t.Errorf("negative stock: want 400, got %d", status)
	}
}
