package postgres

import (
	"context"
	"testing"

	"github.com/YBushi/bar-ordering-app/internal/domain"
	"github.com/YBushi/bar-ordering-app/internal/testutil"
)

func TestCatalogRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewCatalogRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("SeedItems is idempotent", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		if err := repo.SeedItems(ctx, domain.DefaultCatalog()); err != nil {
			t.Fatalf("first seed: %v", err)
		}
		if err := repo.SeedItems(ctx, domain.DefaultCatalog()); err != nil {
			t.Fatalf("second seed: %v", err)
		}

		var count int
		if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
			t.Fatalf("count items: %v", err)
		}
		if count != len(domain.DefaultCatalog()) {
			t.Fatalf("expected %d items, got %d", len(domain.DefaultCatalog()), count)
		}

		price, err := repo.PriceOf(ctx, "small_beer")
		if err != nil {
			t.Fatalf("price of small_beer: %v", err)
		}
		if price.StringFixed(2) != "2.70" {
			t.Fatalf("expected price 2.70 unchanged, got %s", price.StringFixed(2))
		}
	})

	t.Run("PriceOf unknown item returns ErrItemNotFound", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		testutil.SeedCatalog(t, ctx, pool)

		_, err := repo.PriceOf(ctx, "absinthe")
		if err != domain.ErrItemNotFound {
			t.Fatalf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("GetItems returns only matching ids", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		testutil.SeedCatalog(t, ctx, pool)

		found, err := repo.GetItems(ctx, []string{"wine", "small_beer", "absinthe"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(found) != 2 {
			t.Fatalf("expected 2 items, got %d", len(found))
		}
		wine, ok := found["wine"]
		if !ok || wine.Name != "Wine" || wine.UnitPrice.StringFixed(2) != "4.00" {
			t.Fatalf("unexpected wine item: %+v", wine)
		}
		if _, ok := found["absinthe"]; ok {
			t.Fatalf("expected absinthe absent")
		}
	})

	t.Run("ListItems orders by name", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		testutil.SeedCatalog(t, ctx, pool)

		items, err := repo.ListItems(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != len(domain.DefaultCatalog()) {
			t.Fatalf("expected %d items, got %d", len(domain.DefaultCatalog()), len(items))
		}
		for i := 1; i < len(items); i++ {
			if items[i-1].Name > items[i].Name {
				t.Fatalf("expected name order, got %s before %s", items[i-1].Name, items[i].Name)
			}
		}
	})
}
