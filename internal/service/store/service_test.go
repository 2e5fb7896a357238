package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repository/localstate"

	"github.com/shopspring/decimal"
)

type failingRepo struct {
	err error
}

func (f *failingRepo) Get(_ context.Context, _, _ string) ([]byte, error) { return nil, f.err }

func (f *failingRepo) Put(_ context.Context, _, _ string, _ []byte) error { return f.err }

func (f *failingRepo) Delete(_ context.Context, _, _ string) error { return f.err }

func product(id string, price int64) domain.Product {
	return domain.Product{ID: id, Name: "Item " + id, Price: decimal.NewFromInt(price), Stock: 10}
}

func TestAddToCart_IncrementsExistingEntry(t *testing.T) {
	ctx := context.Background()
	svc := New(localstate.NewMemory(), nil)

	if _, err := svc.AddToCart(ctx, "u1", product("p1", 100)); err != nil {
		t.Fatalf("add: %v", err)
	}
	items, err := svc.AddToCart(ctx, "u1", product("p1", 100))
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("expected one entry with quantity 2, got %+v", items)
	}

	items, err = svc.AddToCart(ctx, "u1", product("p2", 50))
	if err != nil {
		t.Fatalf("add second product: %v", err)
	}
	if len(items) != 2 || items[1].ID != "p2" || items[1].Quantity != 1 {
		t.Fatalf("expected appended entry with quantity 1, got %+v", items)
	}
}

func TestRemoveOne_DropsLastUnit(t *testing.T) {
	ctx := context.Background()
	svc := New(localstate.NewMemory(), nil)
	if _, err := svc.AddToCart(ctx, "u1", product("p1", 100)); err != nil {
		t.Fatalf("add: %v", err)
	}

	items, err := svc.RemoveOne(ctx, "u1", "p1")
	if err != nil {
		t.Fatalf("remove one: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v", items)
	}
}

func TestRemoveFromCart_UnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	svc := New(localstate.NewMemory(), nil)
	if _, err := svc.AddToCart(ctx, "u1", product("p1", 100)); err != nil {
		t.Fatalf("add: %v", err)
	}
	items, err := svc.RemoveFromCart(ctx, "u1", "missing")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected cart unchanged, got %+v", items)
	}
	items, err = svc.RemoveFromCart(ctx, "u1", "p1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected entry removed, got %+v", items)
	}
}

func TestUpdateQuantity_ClampsAtOne(t *testing.T) {
	ctx := context.Background()
	svc := New(localstate.NewMemory(), nil)
	if _, err := svc.AddToCart(ctx, "u1", product("p1", 100)); err != nil {
		t.Fatalf("add: %v", err)
	}
	items, err := svc.UpdateQuantity(ctx, "u1", "p1", 3)
	if err != nil {
		t.Fatalf("increase: %v", err)
	}
	if items[0].Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", items[0].Quantity)
	}
	items, err = svc.UpdateQuantity(ctx, "u1", "p1", -10)
	if err != nil {
		t.Fatalf("decrease: %v", err)
	}
	if items[0].Quantity != 1 {
		t.Fatalf("expected quantity clamped to 1, got %d", items[0].Quantity)
	}
}

func TestGetCart_MissingOrCorruptIsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := localstate.NewMemory()
	svc := New(repo, nil)

	items, err := svc.GetCart(ctx, "u1")
	if err != nil || items == nil || len(items) != 0 {
		t.Fatalf("expected empty cart for missing entry, got %+v err=%v", items, err)
	}

	for _, raw := range []string{`{not json`, `{"_id":"p1"}`, `null`} {
		if err := repo.Put(ctx, "u1", "cart", []byte(raw)); err != nil {
			t.Fatalf("put: %v", err)
		}
		items, err = svc.GetCart(ctx, "u1")
		if err != nil || len(items) != 0 {
			t.Fatalf("expected empty cart for %q, got %+v err=%v", raw, items, err)
		}
	}
}

func TestGetCart_PropagatesBackendFailure(t *testing.T) {
	svc := New(&failingRepo{err: errors.New("connection refused")}, nil)
	if _, err := svc.GetCart(context.Background(), "u1"); err == nil {
		t.Fatalf("expected error from failing repository")
	}
}

func TestSetCart_DropsNonPositiveQuantities(t *testing.T) {
	ctx := context.Background()
	svc := New(localstate.NewMemory(), nil)
	err := svc.SetCart(ctx, "u1", []domain.CartItem{
		{Product: product("p1", 10), Quantity: 2},
		{Product: product("p2", 10), Quantity: 0},
		{Product: product("p3", 10), Quantity: -1},
	})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	items, _ := svc.GetCart(ctx, "u1")
	if len(items) != 1 || items[0].ID != "p1" {
		t.Fatalf("expected only p1, got %+v", items)
	}
}

func TestClear_EmptiesOnlyThatCollection(t *testing.T) {
	ctx := context.Background()
	svc := New(localstate.NewMemory(), nil)
	if _, err := svc.AddToCart(ctx, "u1", product("p1", 10)); err != nil {
		t.Fatalf("add cart: %v", err)
	}
	if _, err := svc.AddToWishlist(ctx, "u1", product("p2", 10)); err != nil {
		t.Fatalf("add wishlist: %v", err)
	}
	if err := svc.Clear(ctx, "u1", CollectionCart); err != nil {
		t.Fatalf("clear: %v", err)
	}
	cart, _ := svc.GetCart(ctx, "u1")
	wishlist, _ := svc.GetWishlist(ctx, "u1")
	if len(cart) != 0 || len(wishlist) != 1 {
		t.Fatalf("expected empty cart and one wishlist entry, got cart=%d wishlist=%d", len(cart), len(wishlist))
	}
	var verr *domain.ValidationError
	if err := svc.Clear(ctx, "u1", Collection("orders")); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for unknown collection, got %v", err)
	}
}

func TestWishlist_DedupesByID(t *testing.T) {
	ctx := context.Background()
	svc := New(localstate.NewMemory(), nil)
	for i := 0; i < 2; i++ {
		if _, err := svc.AddToWishlist(ctx, "u1", product("p1", 10)); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	items, err := svc.AddToWishlist(ctx, "u1", product("p2", 10))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 unique entries, got %+v", items)
	}
	items, err = svc.RemoveFromWishlist(ctx, "u1", "p1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(items) != 1 || items[0].ID != "p2" {
		t.Fatalf("expected only p2, got %+v", items)
	}
}

func TestStore_TwoInstancesShareState(t *testing.T) {
	ctx := context.Background()
	repo := localstate.NewMemory()
	writer := New(repo, nil)
	reader := New(repo, nil)

	if _, err := writer.AddToCart(ctx, "u1", product("p1", 10)); err != nil {
		t.Fatalf("add: %v", err)
	}
	items, err := reader.GetCart(ctx, "u1")
	if err != nil || len(items) != 1 {
		t.Fatalf("expected reader to observe writer's cart, got %+v err=%v", items, err)
	}
}

func TestSessionLocks_ReleasedAfterUse(t *testing.T) {
	ctx := context.Background()
	svc := New(localstate.NewMemory(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session := fmt.Sprintf("u%d", i%4)
			if _, err := svc.AddToCart(ctx, session, product("p1", 100)); err != nil {
				t.Errorf("add: %v", err)
			}
			if _, err := svc.AddToWishlist(ctx, session, product("p2", 50)); err != nil {
				t.Errorf("wishlist: %v", err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		items, err := svc.GetCart(ctx, fmt.Sprintf("u%d", i))
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(items) != 1 || items[0].Quantity != 5 {
			t.Fatalf("expected five serialized increments, got %+v", items)
		}
	}
	svc.mu.Lock()
	remaining := len(svc.locks)
	svc.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("expected idle session locks to be pruned, %d left", remaining)
	}
}
