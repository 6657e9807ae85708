package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/YBushi/bar-ordering-app/internal/domain"
)

type fakeItemLister struct {
	err   error
	items []domain.Item
}

func (f *fakeItemLister) ListItems(ctx context.Context) ([]domain.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func TestHandleListItems(t *testing.T) {
	t.Parallel()

	t.Run("returns the menu", func(t *testing.T) {
		handler := HandleListItems(&fakeItemLister{items: domain.DefaultCatalog()}, nil)

		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var resp []itemResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp) != len(domain.DefaultCatalog()) {
			t.Fatalf("expected %d items, got %d", len(domain.DefaultCatalog()), len(resp))
		}
		if resp[0].ID != "small_beer" || resp[0].Price != 2.70 {
			t.Fatalf("unexpected first item: %+v", resp[0])
		}
	})

	t.Run("storage failure is a generic 500", func(t *testing.T) {
		handler := HandleListItems(&fakeItemLister{err: errors.New("pq: down")}, nil)

		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		handler := HandleListItems(&fakeItemLister{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/items", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})
}
