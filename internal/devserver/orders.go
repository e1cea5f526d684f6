package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/digitalhat/storefront/internal/domain"
)

type orderRequestDTO struct {
	Items          []domain.CheckoutItem `json:"items"`
	Totals         domain.Totals         `json:"totals"`
	Currency       string                `json:"currency"`
	IdempotencyKey string                `json:"idempotencyKey"`
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req orderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "order has no items")
		return
	}

	s.mu.Lock()
	if req.IdempotencyKey != "" {
		if orderID, seen := s.orderByKey[req.IdempotencyKey]; seen {
			for _, order := range s.orders[user.Email] {
				if order.ID == orderID {
					s.mu.Unlock()
					respondJSON(w, http.StatusOK, order)
					return
				}
			}
		}
	}

	s.nextOrderSeq++
	order := domain.Order{
		ID:        fmt.Sprintf("ord-%05d", s.nextOrderSeq),
		UserID:    user.ID,
		Status:    domain.OrderStatusPending,
		Items:     req.Items,
		Totals:    req.Totals,
		Currency:  req.Currency,
		CreatedAt: time.Now(),
	}
	s.orders[user.Email] = append(s.orders[user.Email], order)
	if req.IdempotencyKey != "" {
		s.orderByKey[req.IdempotencyKey] = order.ID
	}
	// Placing an order consumes the cart.
	s.carts[user.Email] = &domain.Cart{Items: []domain.CartItem{}}
	s.mu.Unlock()

	respondJSON(w, http.StatusCreated, order)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	orderID := chi.URLParam(r, "orderID")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.orders[user.Email] {
		if order.ID == orderID {
			respondJSON(w, http.StatusOK, order)
			return
		}
	}
	respondError(w, http.StatusNotFound, "order not found")
}

func (s *Server) myOrders(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	s.mu.Lock()
	orders := make([]domain.Order, len(s.orders[user.Email]))
	copy(orders, s.orders[user.Email])
	s.mu.Unlock()

	// Newest first.
	for i, j := 0, len(orders)-1; i < j; i, j = i+1, j-1 {
		orders[i], orders[j] = orders[j], orders[i]
	}
	respondJSON(w, http.StatusOK, orders)
}
