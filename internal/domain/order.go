package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) String() string {
	return string(s)
}

// Order is server-owned; the client only reads it back after placement.
type Order struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Status    OrderStatus    `json:"status"`
	Items     []CheckoutItem `json:"items"`
	Totals    Totals         `json:"totals"`
	Currency  string         `json:"currency"`
	CreatedAt time.Time      `json:"createdAt"`
}
