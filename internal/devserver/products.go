package devserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/digitalhat/storefront/internal/domain"
)

const defaultPageSize = 20

type productListDTO struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	products := make([]domain.Product, len(s.products))
	copy(products, s.products)
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, productListDTO{
		Products: products,
		Total:    len(products),
		Page:     1,
	})
}

func (s *Server) searchProducts(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("q"))
	category := r.URL.Query().Get("category")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = defaultPageSize
	}

	s.mu.Lock()
	matched := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if category != "" && p.Category != category {
			continue
		}
		if query != "" && !anyFieldContains(p, query) {
			continue
		}
		matched = append(matched, p)
	}
	s.mu.Unlock()

	total := len(matched)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	respondJSON(w, http.StatusOK, productListDTO{
		Products: matched[start:end],
		Total:    total,
		Page:     page,
	})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	s.mu.Lock()
	product, ok := s.findProduct(productID)
	s.mu.Unlock()

	if !ok {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// caller must hold s.mu
func (s *Server) findProduct(productID string) (domain.Product, bool) {
	for _, p := range s.products {
		if p.ID == productID {
			return p, true
		}
	}
	return domain.Product{}, false
}

func anyFieldContains(p domain.Product, needle string) bool {
	for _, field := range []string{p.Title, p.Description, p.Category, p.Brand} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
