package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/digitalhat/storefront/internal/domain"
)

// SearchParams narrows a product listing. Zero values are omitted from
// the query string.
type SearchParams struct {
	Query    string
	Page     int
	Limit    int
	Category string
}

// HasFilter reports whether any parameter is set, which decides between
// the search endpoint and the plain listing endpoint.
func (p SearchParams) HasFilter() bool {
	return p.Query != "" || p.Page > 0 || p.Limit > 0 || p.Category != ""
}

type ProductList struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
}

func (c *Client) ListProducts(ctx context.Context) (*ProductList, error) {
	var list ProductList
	if err := c.request(ctx, http.MethodGet, "/api/products", nil, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) SearchProducts(ctx context.Context, params SearchParams) (*ProductList, error) {
	query := url.Values{}
	if params.Query != "" {
		query.Set("q", params.Query)
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Category != "" {
		query.Set("category", params.Category)
	}

	var list ProductList
	if err := c.request(ctx, http.MethodGet, "/api/products/search", query, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	var product domain.Product
	if err := c.request(ctx, http.MethodGet, "/api/products/"+url.PathEscape(productID), nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}
