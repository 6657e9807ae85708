package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/YBushi/bar-ordering-app/internal/app"
	"github.com/YBushi/bar-ordering-app/internal/domain"
	"go.uber.org/zap"
)

// OrderCompleter is the minimal interface needed to complete an order.
type OrderCompleter interface {
	CompleteOrder(ctx context.Context, orderID string) (app.CompleteOrderResult, error)
}

// HandleCompleteOrder serves PATCH /orders/{id}.
func HandleCompleteOrder(svc OrderCompleter, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		orderID, ok := parseCompleteOrderPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		res, err := svc.CompleteOrder(r.Context(), orderID)
		if err != nil {
			if !errors.Is(err, domain.ErrOrderNotFound) {
				logger.Error("complete order", zap.String("order_id", orderID), zap.Error(err))
			}
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(completeOrderResponse{
			OK:     true,
			ID:     res.OrderID,
			Status: string(res.Status),
		})
	}
}

func parseCompleteOrderPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 {
		return "", false
	}
	if parts[0] != "orders" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type completeOrderResponse struct {
	OK     bool   `json:"ok"`
	ID     string `json:"id"`
	Status string `json:"status"`
}
