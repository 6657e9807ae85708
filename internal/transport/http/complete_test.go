package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/YBushi/bar-ordering-app/internal/app"
	"github.com/YBushi/bar-ordering-app/internal/domain"
)

type fakeCompleter struct {
	err     error
	result  app.CompleteOrderResult
	orderID string
}

func (f *fakeCompleter) CompleteOrder(ctx context.Context, orderID string) (app.CompleteOrderResult, error) {
	f.orderID = orderID
	if f.err != nil {
		return app.CompleteOrderResult{}, f.err
	}
	return f.result, nil
}

func TestHandleCompleteOrder(t *testing.T) {
	t.Parallel()

	t.Run("acknowledges completion", func(t *testing.T) {
		svc := &fakeCompleter{result: app.CompleteOrderResult{
			OrderID: "order-1",
			Status:  domain.OrderStatusCompleted,
			Changed: true,
		}}
		handler := HandleCompleteOrder(svc, nil)

		req := httptest.NewRequest(http.MethodPatch, "/orders/order-1", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if svc.orderID != "order-1" {
			t.Fatalf("expected order id forwarded, got %q", svc.orderID)
		}

		var resp completeOrderResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if !resp.OK || resp.Status != "completed" {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})

	t.Run("unknown order is 404", func(t *testing.T) {
		svc := &fakeCompleter{err: domain.ErrOrderNotFound}
		handler := HandleCompleteOrder(svc, nil)

		req := httptest.NewRequest(http.MethodPatch, "/orders/missing", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
		var resp errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode error response: %v", err)
		}
		if resp.Code != codeOrderNotFound {
			t.Fatalf("expected code %s, got %s", codeOrderNotFound, resp.Code)
		}
	})

	t.Run("malformed path is 404", func(t *testing.T) {
		handler := HandleCompleteOrder(&fakeCompleter{}, nil)

		req := httptest.NewRequest(http.MethodPatch, "/orders/a/b", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		handler := HandleCompleteOrder(&fakeCompleter{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/orders/order-1", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})
}
