package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/YBushi/bar-ordering-app/internal/app"
	"github.com/YBushi/bar-ordering-app/internal/domain"
	"go.uber.org/zap"
)

// OrderService is the surface the order endpoints need.
type OrderService interface {
	SubmitOrder(ctx context.Context, in app.SubmitOrderInput) (domain.Order, error)
	ListPending(ctx context.Context, owner domain.OwnerRef) ([]domain.Order, error)
}

// HandleOrders serves POST /orders (submit) and GET /orders (pending list).
func HandleOrders(svc OrderService, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handleSubmitOrder(w, r, svc, logger)
		case http.MethodGet:
			handleListOrders(w, r, svc, logger)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func handleSubmitOrder(w http.ResponseWriter, r *http.Request, svc OrderService, logger *zap.Logger) {
	var req submitOrderRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	order, err := svc.SubmitOrder(r.Context(), app.SubmitOrderInput{
		Owner: domain.OwnerRef(req.Owner),
		Items: req.Items,
	})
	if err != nil {
		if !domain.IsValidation(err) {
			logger.Error("submit order", zap.Error(err))
		}
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toOrderResponse(order))
}

func handleListOrders(w http.ResponseWriter, r *http.Request, svc OrderService, logger *zap.Logger) {
	owner := domain.OwnerRef(r.URL.Query().Get("owner"))

	orders, err := svc.ListPending(r.Context(), owner)
	if err != nil {
		logger.Error("list pending orders", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

type submitOrderRequest struct {
	Owner string         `json:"owner"`
	Items map[string]int `json:"items"`
}

type orderResponse struct {
	ID         string              `json:"id"`
	Owner      string              `json:"owner"`
	Timestamp  time.Time           `json:"timestamp"`
	Status     string              `json:"status"`
	Items      []orderItemResponse `json:"items"`
	TotalPrice float64             `json:"totalPrice"`
}

type orderItemResponse struct {
	ItemID    string  `json:"itemId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	LineTotal float64 `json:"lineTotal"`
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, orderItemResponse{
			ItemID:    l.ItemID,
			Name:      l.ItemName,
			Quantity:  l.Quantity,
			Price:     l.UnitPrice.InexactFloat64(),
			LineTotal: l.LineTotal().InexactFloat64(),
		})
	}
	return orderResponse{
		ID:         o.ID,
		Owner:      string(o.Owner),
		Timestamp:  o.CreatedAt,
		Status:     string(o.Status),
		Items:      items,
		TotalPrice: o.Total.InexactFloat64(),
	}
}
