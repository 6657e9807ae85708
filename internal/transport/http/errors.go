package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/YBushi/bar-ordering-app/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeEmptyOrder         = "empty_order"
	codeInvalidQuantity    = "invalid_quantity"
	codeUnknownItems       = "unknown_items"
	codeOrderNotFound      = "order_not_found"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeServiceError maps the service error taxonomy onto status codes.
// Validation and not-found errors carry their descriptive message (offending
// ids included); anything else is a generic 500 with detail kept server-side.
func writeServiceError(w http.ResponseWriter, err error) {
	var unknown *domain.UnknownItemsError
	var qty *domain.InvalidQuantityError
	switch {
	case errors.Is(err, domain.ErrEmptyOrder):
		writeError(w, http.StatusBadRequest, codeEmptyOrder, err.Error())
	case errors.As(err, &qty):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.As(err, &unknown):
		writeError(w, http.StatusBadRequest, codeUnknownItems, err.Error())
	case errors.Is(err, domain.ErrItemNotFound):
		writeError(w, http.StatusBadRequest, codeUnknownItems, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
