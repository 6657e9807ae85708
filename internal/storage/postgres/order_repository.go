package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/YBushi/bar-ordering-app/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepository owns the orders and order_items rows. Every operation is a
// single scoped transaction; nothing is held across external I/O.
type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// CreateOrder inserts the order row and all line rows. Run inside WithTx so a
// failing line insert rolls back the whole aggregate.
func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	const orderStmt = `
INSERT INTO orders (id, owner_ref, created_at, status)
VALUES ($1, $2, $3, $4)`

	const lineStmt = `
INSERT INTO order_items (order_id, item_id, qty, price)
VALUES ($1, $2, $3, $4)`

	if _, err := r.exec(ctx, orderStmt, order.ID, string(order.Owner), order.CreatedAt, string(order.Status)); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create order: duplicate id %s: %w", order.ID, err)
		}
		return fmt.Errorf("create order: %w", err)
	}
	for _, line := range order.Lines {
		_, err := r.exec(ctx, lineStmt, order.ID, line.ItemID, line.Quantity, line.UnitPrice.StringFixed(2))
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrItemNotFound
			}
			return fmt.Errorf("create order line %s: %w", line.ItemID, err)
		}
	}
	return nil
}

// ListPending returns pending orders newest-first, lines joined and totals
// computed. One query fetches the matching headers, a second batched query
// fetches every line for those ids in a single round trip.
func (r *OrderRepository) ListPending(ctx context.Context, owner domain.OwnerRef) ([]domain.Order, error) {
	const headAll = `
SELECT id, owner_ref, created_at, status
FROM orders
WHERE status = 'pending'
ORDER BY created_at DESC, id DESC`

	const headByOwner = `
SELECT id, owner_ref, created_at, status
FROM orders
WHERE status = 'pending' AND owner_ref = $1
ORDER BY created_at DESC, id DESC`

	var rows pgx.Rows
	var err error
	if owner == "" {
		rows, err = r.query(ctx, headAll)
	} else {
		rows, err = r.query(ctx, headByOwner, string(owner))
	}
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	byID := map[string]*domain.Order{}
	var orderIDs []string
	for rows.Next() {
		var o domain.Order
		var ownerRef, status string
		if err := rows.Scan(&o.ID, &ownerRef, &o.CreatedAt, &status); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Owner = domain.OwnerRef(ownerRef)
		o.Status = domain.OrderStatus(status)
		orders = append(orders, o)
		orderIDs = append(orderIDs, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	rows.Close()

	if len(orders) == 0 {
		return []domain.Order{}, nil
	}
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}

	const lineQuery = `
SELECT oi.order_id, oi.item_id, i.name, oi.qty, oi.price::text
FROM order_items oi
JOIN items i ON i.id = oi.item_id
WHERE oi.order_id = ANY($1)
ORDER BY oi.order_id, i.name`

	lineRows, err := r.query(ctx, lineQuery, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var line domain.OrderLine
		var raw string
		if err := lineRows.Scan(&line.OrderID, &line.ItemID, &line.ItemName, &line.Quantity, &raw); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if line.UnitPrice, err = parsePrice(raw); err != nil {
			return nil, err
		}
		o, ok := byID[line.OrderID]
		if !ok {
			return nil, fmt.Errorf("line for unknown order %s", line.OrderID)
		}
		o.Lines = append(o.Lines, line)
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}

	for i := range orders {
		// An order is created with at least one line and lines only go
		// away with the order, so a bare header means corrupt storage.
		if len(orders[i].Lines) == 0 {
			return nil, fmt.Errorf("order %s has no lines", orders[i].ID)
		}
		orders[i].Total = domain.SumLines(orders[i].Lines)
	}
	return orders, nil
}

// MarkCompleted transitions the order to completed. It reports whether the
// row actually changed: marking an already-completed order again is a no-op
// success with changed=false.
func (r *OrderRepository) MarkCompleted(ctx context.Context, orderID string) (bool, error) {
	const stmt = `UPDATE orders SET status = 'completed' WHERE id = $1 AND status <> 'completed'`

	tag, err := r.exec(ctx, stmt, orderID)
	if err != nil {
		return false, fmt.Errorf("mark completed: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// No row changed: distinguish an already-completed order from a
	// missing one.
	const query = `SELECT 1 FROM orders WHERE id = $1`
	var one int
	err = r.queryRow(ctx, query, orderID).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, domain.ErrOrderNotFound
	}
	if err != nil {
		return false, fmt.Errorf("mark completed: %w", err)
	}
	return false, nil
}

// PurgeCompletedBefore deletes completed orders created before the cutoff.
// Line rows go with them via the FK cascade; pending orders are untouched.
func (r *OrderRepository) PurgeCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const stmt = `DELETE FROM orders WHERE status = 'completed' AND created_at < $1`

	tag, err := r.exec(ctx, stmt, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge completed: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *OrderRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
