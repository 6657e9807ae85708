package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrItemNotFound  = errors.New("item not found")
	ErrEmptyOrder    = errors.New("order has no items")
)

// UnknownItemsError reports submitted item ids missing from the catalog.
type UnknownItemsError struct {
	ItemIDs []string
}

func (e *UnknownItemsError) Error() string {
	return fmt.Sprintf("unknown item ids: %s", strings.Join(e.ItemIDs, ", "))
}

// InvalidQuantityError reports items submitted with a non-positive quantity.
type InvalidQuantityError struct {
	ItemIDs []string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity for items: %s", strings.Join(e.ItemIDs, ", "))
}

// IsValidation reports whether err is caller-caused bad input rather than a
// lookup or storage failure.
func IsValidation(err error) bool {
	var unknown *UnknownItemsError
	var qty *InvalidQuantityError
	return errors.Is(err, ErrEmptyOrder) || errors.As(err, &unknown) || errors.As(err, &qty)
}
