package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCartNotFound means the buyer has no cart yet. Only operations that
	// refuse to create one lazily (the stock sweep) return it.
	ErrCartNotFound = errors.New("cart not found")

	ErrItemNotFound  = errors.New("cart item not found")
	ErrOrderNotFound = errors.New("order not found")
)

// StockExceededError rejects a cart mutation whose resulting quantity would
// exceed the variant's current stock. The cart row is left untouched.
type StockExceededError struct {
	Product   string `json:"product"`
	Variant   string `json:"variant"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("stock exceeded for %s (%s): requested %d, available %d",
		e.Product, e.Variant, e.Requested, e.Available)
}

type OutOfStockItem struct {
	Product   string `json:"product"`
	Variant   string `json:"variant"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// OutOfStockError aborts checkout, naming every deficient line. Checkout is
// all-or-nothing: one short line means no payment session at all.
type OutOfStockError struct {
	Items []OutOfStockItem `json:"items"`
}

func (e *OutOfStockError) Error() string {
	names := make([]string, len(e.Items))
	for i, item := range e.Items {
		names[i] = item.Product
	}
	return "items are out of stock: " + strings.Join(names, ", ")
}
