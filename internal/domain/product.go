package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Currency    string          `json:"currency"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"imageUrl"`
}
