package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/digitalhat/storefront/internal/domain"
)

// OrderRequest is the checkout snapshot as submitted for placement. The
// idempotency key lets the server deduplicate a retried submission.
type OrderRequest struct {
	Items          []domain.CheckoutItem `json:"items"`
	Totals         domain.Totals         `json:"totals"`
	Currency       string                `json:"currency"`
	IdempotencyKey string                `json:"idempotencyKey"`
}

func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*domain.Order, error) {
	var order domain.Order
	if err := c.request(ctx, http.MethodPost, "/api/orders", nil, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	if err := c.request(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(orderID), nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// MyOrders lists the authenticated user's orders, newest first.
func (c *Client) MyOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.request(ctx, http.MethodGet, "/api/orders/me", nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
