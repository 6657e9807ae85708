package domain

import "github.com/shopspring/decimal"

// Item is a catalog entry: immutable reference data, seeded once at startup.
type Item struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
}

// DefaultCatalog is the fixed drink list seeded at startup. Seeding is
// insert-if-absent, so restarting never duplicates rows or changes prices.
func DefaultCatalog() []Item {
	return []Item{
		{ID: "small_beer", Name: "Small Beer", UnitPrice: decimal.RequireFromString("2.70")},
		{ID: "large_beer", Name: "Large Beer", UnitPrice: decimal.RequireFromString("3.20")},
		{ID: "whiskey", Name: "Whiskey", UnitPrice: decimal.RequireFromString("3.00")},
		{ID: "wine", Name: "Wine", UnitPrice: decimal.RequireFromString("4.00")},
		{ID: "vodka", Name: "Vodka", UnitPrice: decimal.RequireFromString("2.50")},
		{ID: "borovicka", Name: "Borovicka", UnitPrice: decimal.RequireFromString("2.00")},
	}
}
