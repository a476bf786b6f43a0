package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/example/velora/internal/models"
)

func TestCreateReviewUpdatesAggregate(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.createUser(t, "alice@example.com", models.RoleCustomer, "12 Amir Temur")
	_, bobToken := env.createUser(t, "bob@example.com", models.RoleCustomer, "7 Navoi")
	product := env.createProduct(t, "Linen Shirt", 100, 10)

	status, body := env.request(t, "POST", "/api/reviews", aliceToken, fiber.Map{
		"product_id": product.ID.String(),
		"rating":     5,
		"comment":    "Fits perfectly",
	})
	if status != http.StatusCreated {
		t.Fatalf("first review: want 201, got %d: %s", status, body)
	}
	status, _ = env.request(t, "POST", "/api/reviews", bobToken, fiber.Map{
		"product_id": product.ID.String(),
		"rating":     2,
	})
	if status != http.StatusCreated {
		t.Fatalf("second review: want 201, got %d", status)
	}

	var got models.Product
	env.db.First(&got, "id = ?", product.ID)
	if got.RatingCount != 2 {
		t.Errorf("rating count = %d, want 2", got.RatingCount)
	}
	if got.RatingAverage != 3.5 {
		t.Errorf("rating average = %v, want 3.5", got.RatingAverage)
	}

	// One review per user per product.
	status, _ = env.request(t, "POST", "/api/reviews", aliceToken, fiber.Map{
		"product_id": product.ID.String(),
		"rating":     1,
	})
	if status != http.StatusConflict {
		t.Errorf("duplicate review: want 409, got %d", status)
	}
}

func TestCreateReviewValidation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice@example.com", models.RoleCustomer, "12 Amir Temur")
	product := env.createProduct(t, "Linen Shirt", 100, 10)

	for _, rating := range []int{0, 6} {
		status, _ := env.request(t, "POST", "/api/reviews", token, fiber.Map{
			"product_id": product.ID.String(),
			"rating":     rating,
		})
		if status != http.StatusBadRequest {
			t.Errorf("rating %d: want 400, got %d", rating, status)
		}
	}
}

func TestDeleteReviewRollsBackAggregate(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceToken := env.createUser(t, "alice@example.com", models.RoleCustomer, "12 Amir Temur")
	_, bobToken := env.createUser(t, "bob@example.com", models.RoleCustomer, "7 Navoi")
	_, staffToken := env.createUser(t, "staff@example.com", models.RoleStaff, "1 Office")
	product := env.createProduct(t, "Linen Shirt", 100, 10)

	env.request(t, "POST", "/api/reviews", aliceToken, fiber.Map{
		"product_id": product.ID.String(), "rating": 5,
	})
	env.request(t, "POST", "/api/reviews", bobToken, fiber.Map{
		"product_id": product.ID.String(), "rating": 2,
	})

	var review models.Review
	if err := env.db.First(&review, "user_id = ?", alice.ID).Error; err != nil {
		t.Fatalf("load review: %v", err)
	}

	// Only the author or staff may delete.
	status, _ := env.request(t, "DELETE", "/api/reviews/"+review.ID.String(), bobToken, nil)
	if status != http.StatusForbidden {
		t.Errorf("foreign delete: want 403, got %d", status)
	}

	status, _ = env.request(t, "DELETE", "/api/reviews/"+review.ID.String(), staffToken, nil)
	if status != http.StatusNoContent {
		t.Fatalf("staff delete: want 204, got %d", status)
	}

	var got models.Product
	env.db.First(&got, "id = ?", product.ID)
	if got.RatingCount != 1 || got.RatingAverage != 2 {
		t.Errorf("aggregate after delete = %d/%v, want 1/2", got.RatingCount, got.RatingAverage)
	}
}

func TestListReviewsByProduct(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice@example.com", models.RoleCustomer, "12 Amir Temur")
	product := env.createProduct(t, "Linen Shirt", 100, 10)
	other := env.createProduct(t, "Wool Coat", 400, 10)

	env.request(t, "POST", "/api/reviews", token, fiber.Map{
		"product_id": product.ID.String(), "rating": 4, "comment": "Nice fabric",
	})

	status, body := env.request(t, "GET", "/api/products/"+other.ID.String()+"/reviews", "", nil)
	if status != http.StatusOK {
		t.Fatalf("list: want 200, got %d", status)
	}
	var resp struct {
		Data []models.Review `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 0 {
		t.Errorf("reviews for other product = %d, want 0", len(resp.Data))
	}

	status, body = env.request(t, "GET", "/api/products/"+product.ID.String()+"/reviews", "", nil)
	if status != http.StatusOK {
		t.Fatalf("list: want 200, got %d", status)
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Rating != 4 {
		t.Errorf("reviews = %+v, want the single 4-star review", resp.Data)
	}
}
