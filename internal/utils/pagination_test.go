package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func paginate(t *testing.T, query string) Pagination {
	t.Helper()

	app := fiber.New()
	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = ParsePagination(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/"+query, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	return got
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"", 1, 20, 0},
		{"?page=3&limit=10", 3, 10, 20},
		{"?page=0&limit=-5", 1, 20, 0},
		{"?page=abc&limit=xyz", 1, 20, 0},
		{"?limit=500", 1, 20, 0},
		{"?page=2&limit=100", 2, 100, 100},
	}
	for _, tc := range cases {
		got := paginate(t, tc.query)
		if got.Page != tc.wantPage || got.Limit != tc.wantLimit || got.Offset != tc.wantOffset {
			t.Errorf("ParsePagination(%q) = %+v, want page %d limit %d offset %d",
				tc.query, got, tc.wantPage, tc.wantLimit, tc.wantOffset)
		}
	}
}
