package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/digitalhat/storefront/internal/domain"
)

type cartItemRequest struct {
	ProductID string `json:"productId,omitempty"`
	Quantity  int    `json:"quantity"`
}

func (c *Client) GetCart(ctx context.Context) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.request(ctx, http.MethodGet, "/api/cart", nil, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddCartItem adds quantity units of a product; the server increments
// the existing row when the product is already in the cart.
func (c *Client) AddCartItem(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	var cart domain.Cart
	body := cartItemRequest{ProductID: productID, Quantity: quantity}
	if err := c.request(ctx, http.MethodPost, "/api/cart/items", nil, body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateCartItem sets a line item's quantity to an absolute value.
func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	var cart domain.Cart
	body := cartItemRequest{Quantity: quantity}
	path := "/api/cart/items/" + url.PathEscape(productID)
	if err := c.request(ctx, http.MethodPatch, path, nil, body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, productID string) (*domain.Cart, error) {
	var cart domain.Cart
	path := "/api/cart/items/" + url.PathEscape(productID)
	if err := c.request(ctx, http.MethodDelete, path, nil, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}
