package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/YBushi/bar-ordering-app/internal/clock"
	"github.com/YBushi/bar-ordering-app/internal/domain"
	"github.com/YBushi/bar-ordering-app/internal/hub"
	"go.uber.org/zap"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateOrder(ctx context.Context, order domain.Order) error
	ListPending(ctx context.Context, owner domain.OwnerRef) ([]domain.Order, error)
	MarkCompleted(ctx context.Context, orderID string) (changed bool, err error)
	PurgeCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Catalog interface {
	GetItems(ctx context.Context, itemIDs []string) (map[string]domain.Item, error)
}

// StatusPublisher fans a status-change event out to live subscribers.
// Delivery is best-effort; failures stay inside the publisher.
type StatusPublisher interface {
	Broadcast(ev hub.Event)
}

type OrderService struct {
	repo      OrderRepository
	catalog   Catalog
	publisher StatusPublisher
	clock     clock.Clock
	logger    *zap.Logger
}

func NewOrderService(repo OrderRepository, catalog Catalog, publisher StatusPublisher, clk clock.Clock, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		clock:     clk,
		logger:    logger,
	}
}

type SubmitOrderInput struct {
	Owner domain.OwnerRef
	Items map[string]int
}

// SubmitOrder validates the submission, captures current catalog prices into
// order lines and commits the order atomically. Validation failures name the
// offending item ids and never touch storage.
func (s *OrderService) SubmitOrder(ctx context.Context, in SubmitOrderInput) (domain.Order, error) {
	if len(in.Items) == 0 {
		return domain.Order{}, domain.ErrEmptyOrder
	}

	itemIDs := make([]string, 0, len(in.Items))
	var badQty []string
	for id, qty := range in.Items {
		itemIDs = append(itemIDs, id)
		if qty <= 0 {
			badQty = append(badQty, id)
		}
	}
	sort.Strings(itemIDs)
	if len(badQty) > 0 {
		sort.Strings(badQty)
		return domain.Order{}, &domain.InvalidQuantityError{ItemIDs: badQty}
	}

	items, err := s.catalog.GetItems(ctx, itemIDs)
	if err != nil {
		return domain.Order{}, fmt.Errorf("resolve prices: %w", err)
	}
	var missing []string
	for _, id := range itemIDs {
		if _, ok := items[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return domain.Order{}, &domain.UnknownItemsError{ItemIDs: missing}
	}

	now := s.clock.Now()
	order := domain.Order{
		ID:        newOrderID(now),
		Owner:     in.Owner,
		Status:    domain.OrderStatusPending,
		CreatedAt: now,
	}
	for _, id := range itemIDs {
		item := items[id]
		order.Lines = append(order.Lines, domain.OrderLine{
			OrderID:   order.ID,
			ItemID:    item.ID,
			ItemName:  item.Name,
			Quantity:  in.Items[id],
			UnitPrice: item.UnitPrice,
		})
	}
	order.Total = domain.SumLines(order.Lines)

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.CreateOrder(txCtx, order)
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.Info("order submitted",
		zap.String("order_id", order.ID),
		zap.Int("lines", len(order.Lines)),
		zap.String("total", order.Total.StringFixed(2)))
	return order, nil
}

// ListPending returns pending orders newest-first with lines and totals. An
// empty owner lists every pending order.
func (s *OrderService) ListPending(ctx context.Context, owner domain.OwnerRef) ([]domain.Order, error) {
	return s.repo.ListPending(ctx, owner)
}

type CompleteOrderResult struct {
	OrderID string
	Status  domain.OrderStatus
	// Changed is false when the order was already completed; the repeat
	// completion is a no-op success.
	Changed bool
}

// CompleteOrder transitions the order to completed and, only after the commit
// succeeds and only on a real transition, broadcasts the status change.
// Broadcast problems never fail or roll back the completion.
func (s *OrderService) CompleteOrder(ctx context.Context, orderID string) (CompleteOrderResult, error) {
	var changed bool
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		changed, err = s.repo.MarkCompleted(txCtx, orderID)
		return err
	})
	if err != nil {
		return CompleteOrderResult{}, err
	}

	if changed {
		s.publisher.Broadcast(hub.OrderStatus(orderID, string(domain.OrderStatusCompleted)))
		s.logger.Info("order completed", zap.String("order_id", orderID))
	}

	return CompleteOrderResult{
		OrderID: orderID,
		Status:  domain.OrderStatusCompleted,
		Changed: changed,
	}, nil
}

// PurgeCompleted deletes completed orders older than the given age. Pending
// orders are never touched.
func (s *OrderService) PurgeCompleted(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.clock.Now().Add(-olderThan)
	n, err := s.repo.PurgeCompletedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("purged completed orders",
			zap.Int64("count", n),
			zap.Time("cutoff", cutoff))
	}
	return n, nil
}
