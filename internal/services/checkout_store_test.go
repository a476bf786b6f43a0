package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/example/velora/internal/models"
)

func newTestStore(t *testing.T, ttl time.Duration) (*CheckoutStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCheckoutStore(rdb, ttl), mr
}

func TestCheckoutStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, 2*time.Hour)
	ctx := context.Background()

	intent := models.CheckoutIntent{
		UserID: uuid.New(),
		Lines: []models.CheckoutLine{
			{ProductID: uuid.New(), Name: "Linen Shirt", Size: "M", Quantity: 2, Price: 100},
		},
		TotalQuantity: 2,
		Subtotal:      200,
		FinalPrice:    200,
	}
	if err := store.Create(ctx, &intent); err != nil {
		t.Fatalf("create: %v", err)
	}
	if intent.ID == uuid.Nil {
		t.Fatalf("create did not assign an id")
	}

	got, err := store.Get(ctx, intent.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != intent.UserID || got.Subtotal != 200 || len(got.Lines) != 1 {
		t.Errorf("got = %+v, want the stored intent", got)
	}
	if got.Lines[0].Name != "Linen Shirt" || got.Lines[0].Quantity != 2 {
		t.Errorf("line = %+v, want the stored line", got.Lines[0])
	}
}

func TestCheckoutStoreExpiry(t *testing.T) {
	store, mr := newTestStore(t, 2*time.Hour)
	ctx := context.Background()

	intent := models.CheckoutIntent{UserID: uuid.New()}
	if err := store.Create(ctx, &intent); err != nil {
		t.Fatalf("create: %v", err)
	}

	mr.FastForward(2*time.Hour - time.Minute)
	if _, err := store.Get(ctx, intent.ID); err != nil {
		t.Fatalf("get before expiry: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, intent.ID); err != ErrIntentNotFound {
		t.Errorf("get after expiry: err = %v, want ErrIntentNotFound", err)
	}
}

func TestCheckoutStoreDelete(t *testing.T) {
	store, _ := newTestStore(t, 2*time.Hour)
	ctx := context.Background()

	intent := models.CheckoutIntent{UserID: uuid.New()}
	if err := store.Create(ctx, &intent); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Delete(ctx, intent.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, intent.ID); err != ErrIntentNotFound {
		t.Errorf("get after delete: err = %v, want ErrIntentNotFound", err)
	}

	// Deleting a missing intent is a no-op.
	if err := store.Delete(ctx, uuid.New()); err != nil {
		t.Errorf("delete missing: %v", err)
	}
}

func TestCheckoutStoreGetUnknown(t *testing.T) {
	store, _ := newTestStore(t, 2*time.Hour)
	if _, err := store.Get(context.Background(), uuid.New()); err != ErrIntentNotFound {
		t.Errorf("err = %v, want ErrIntentNotFound", err)
	}
}
