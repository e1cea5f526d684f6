package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutItem is a cart line item enriched with the product record it
// refers to. It is a UI projection: quantity always mirrors the cart and
// is never the source of truth.
type CheckoutItem struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Currency  string          `json:"currency"`
	Stock     int             `json:"stock"`
	ImageURL  string          `json:"imageUrl"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// CheckoutSnapshot is the frozen cart state that drives the checkout page,
// independent of how that page was reached.
type CheckoutSnapshot struct {
	Items      []CheckoutItem    `json:"items"`
	Totals     Totals            `json:"totals"`
	Currency   string            `json:"currency"`
	ItemCount  int               `json:"itemCount"`
	CapturedAt time.Time         `json:"capturedAt"`
	Extra      map[string]string `json:"extra,omitempty"`
}
