package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/example/velora/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.request(t, "POST", "/api/auth/register", "", fiber.Map{
		"first_name": "Aziza",
		"last_name":  "Karimova",
		"email":      "Aziza@Example.com",
		"password":   "Passw0rd!",
	})
	if status != http.StatusCreated {
		t.Fatalf("register: want 201, got %d: %s", status, body)
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" {
		t.Errorf("register returned no token")
	}
	if resp.User.Email != "aziza@example.com" {
		t.Errorf("email = %q, want lower-cased", resp.User.Email)
	}
	if resp.User.Role != models.RoleCustomer {
		t.Errorf("role = %q, want customer", resp.User.Role)
	}

	// Duplicate registration conflicts regardless of email casing.
	status, _ = env.request(t, "POST", "/api/auth/register", "", fiber.Map{
		"first_name": "Aziza",
		"email":      "aziza@example.com",
		"password":   "Passw0rd!",
	})
	if status != http.StatusConflict {
		t.Errorf("duplicate register: want 409, got %d", status)
	}

	status, body = env.request(t, "POST", "/api/auth/login", "", fiber.Map{
		"email":    "aziza@example.com",
		"password": "Passw0rd!",
	})
	if status != http.StatusOK {
		t.Fatalf("login: want 200, got %d: %s", status, body)
	}

	status, _ = env.request(t, "POST", "/api/auth/login", "", fiber.Map{
		"email":    "aziza@example.com",
		"password": "wrong-password",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("bad password: want 401, got %d", status)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.request(t, "POST", "/api/auth/register", "", fiber.Map{
		"first_name": "Aziza",
		"email":      "aziza@example.com",
		"password":   "short",
	})
	if status != http.StatusBadRequest {
		t.Errorf("short password: want 400, got %d", status)
	}

	status, _ = env.request(t, "POST", "/api/auth/register", "", fiber.Map{
		"email":    "aziza@example.com",
		"password": "Passw0rd!",
	})
	if status != http.StatusBadRequest {
		t.Errorf("missing first name: want 400, got %d", status)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.request(t, "GET", "/api/cart", "", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("no token: want 401, got %d", status)
	}

	status, _ = env.request(t, "GET", "/api/cart", "not-a-jwt", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("garbage token: want 401, got %d", status)
	}
}
