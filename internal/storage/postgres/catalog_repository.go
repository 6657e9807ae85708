package postgres

import (
	"context"
	"fmt"

	"github.com/YBushi/bar-ordering-app/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CatalogRepository reads the items reference data. Prices travel as text so
// NUMERIC values parse losslessly into decimals.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// SeedItems inserts the fixed item list, skipping ids that already exist.
// Safe to run on every startup.
func (r *CatalogRepository) SeedItems(ctx context.Context, items []domain.Item) error {
	const stmt = `
INSERT INTO items (id, name, price)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO NOTHING`

	for _, item := range items {
		if _, err := r.pool.Exec(ctx, stmt, item.ID, item.Name, item.UnitPrice.StringFixed(2)); err != nil {
			return fmt.Errorf("seed item %s: %w", item.ID, err)
		}
	}
	return nil
}

func (r *CatalogRepository) PriceOf(ctx context.Context, itemID string) (decimal.Decimal, error) {
	const query = `SELECT price::text FROM items WHERE id = $1`

	var raw string
	err := r.pool.QueryRow(ctx, query, itemID).Scan(&raw)
	if err != nil {
		if err == pgx.ErrNoRows {
			return decimal.Decimal{}, domain.ErrItemNotFound
		}
		return decimal.Decimal{}, fmt.Errorf("price of %s: %w", itemID, err)
	}
	return parsePrice(raw)
}

// GetItems returns the catalog entries for the given ids. Ids without a
// matching row are simply absent from the result; the caller decides whether
// that is an error.
func (r *CatalogRepository) GetItems(ctx context.Context, itemIDs []string) (map[string]domain.Item, error) {
	const query = `SELECT id, name, price::text FROM items WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	defer rows.Close()

	found := make(map[string]domain.Item, len(itemIDs))
	for rows.Next() {
		var item domain.Item
		var raw string
		if err := rows.Scan(&item.ID, &item.Name, &raw); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if item.UnitPrice, err = parsePrice(raw); err != nil {
			return nil, err
		}
		found[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	return found, nil
}

func (r *CatalogRepository) ListItems(ctx context.Context) ([]domain.Item, error) {
	const query = `SELECT id, name, price::text FROM items ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		var raw string
		if err := rows.Scan(&item.ID, &item.Name, &raw); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if item.UnitPrice, err = parsePrice(raw); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse price %q: %w", raw, err)
	}
	return d, nil
}
