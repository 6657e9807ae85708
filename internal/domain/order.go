package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
)

// OwnerRef is the opaque identity an order is attributed to (user, device or
// tab, whichever scheme the surrounding auth layer provides). The core never
// interprets it.
type OwnerRef string

// Order is a submitted drink order with its lines. It is created once with at
// least one line and mutated only by the pending -> completed transition;
// completed is terminal.
type Order struct {
	ID        string
	Owner     OwnerRef
	Status    OrderStatus
	CreatedAt time.Time
	Lines     []OrderLine
	Total     decimal.Decimal
}

// OrderLine is one item of an order with the unit price captured at order
// time. The captured price is never re-read from the catalog, so historical
// orders keep historical pricing.
type OrderLine struct {
	OrderID   string
	ItemID    string
	ItemName  string
	Quantity  int
	UnitPrice decimal.Decimal
}

// LineTotal returns quantity times the captured unit price.
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// SumLines accumulates line totals, rounding the running total to two decimal
// places after every addition. Rounding per accumulation step is the service's
// numeric policy and can differ from rounding the exact sum once at the end.
func SumLines(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal()).Round(2)
	}
	return total
}
