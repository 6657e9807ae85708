package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/YBushi/bar-ordering-app/internal/domain"
	"go.uber.org/zap"
)

// ItemLister is the minimal interface needed to serve the menu.
type ItemLister interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
}

// HandleListItems serves GET /items.
func HandleListItems(catalog ItemLister, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		items, err := catalog.ListItems(r.Context())
		if err != nil {
			logger.Error("list items", zap.Error(err))
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		resp := make([]itemResponse, 0, len(items))
		for _, item := range items {
			resp = append(resp, itemResponse{
				ID:    item.ID,
				Name:  item.Name,
				Price: item.UnitPrice.InexactFloat64(),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type itemResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}
